package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type RatingStore struct {
	pool *pgxpool.Pool
}

func NewRatingStore(pool *pgxpool.Pool) *RatingStore {
	return &RatingStore{pool: pool}
}

func (s *RatingStore) Create(ctx context.Context, r *models.Rating) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO ratings (product_id, user_id, stars, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		r.ProductID, r.UserID, r.Stars, r.Comment,
	)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return services.ErrDuplicate
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// ListByProduct returns ratings with the rater's name, newest first, and the
// product average.
func (s *RatingStore) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Rating, float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.product_id, r.user_id, u.name, r.stars, r.comment, r.created_at
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]*models.Rating, 0)
	total := 0
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Stars, &r.Comment, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &r)
		total += r.Stars
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	average := 0.0
	if len(ratings) > 0 {
		average = float64(total) / float64(len(ratings))
	}
	return ratings, average, nil
}
