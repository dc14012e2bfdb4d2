package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type HireStore struct {
	pool *pgxpool.Pool
}

func NewHireStore(pool *pgxpool.Pool) *HireStore {
	return &HireStore{pool: pool}
}

const hireColumns = `id, customer_id, designer_id, brief, budget, status, decision_note, created_at, updated_at`

func (s *HireStore) Create(ctx context.Context, h *models.HireRequest) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO hire_requests (customer_id, designer_id, brief, budget, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		h.CustomerID, h.DesignerID, h.Brief, h.Budget, string(h.Status),
	)
	if err := row.Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create hire request: %w", err)
	}
	return nil
}

func (s *HireStore) GetByID(ctx context.Context, id uuid.UUID) (*models.HireRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+hireColumns+` FROM hire_requests WHERE id = $1`, id)
	return scanHire(row)
}

func (s *HireStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.HireStatus, note string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE hire_requests SET status = $2, decision_note = $3, updated_at = now()
		WHERE id = $1`, id, string(status), note)
	if err != nil {
		return fmt.Errorf("failed to update hire request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

// ListForUser returns hire requests the user is a party to, on either side.
func (s *HireStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.HireRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+hireColumns+` FROM hire_requests
		WHERE customer_id = $1 OR designer_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hire requests: %w", err)
	}
	defer rows.Close()

	hires := make([]*models.HireRequest, 0)
	for rows.Next() {
		h, err := scanHire(rows)
		if err != nil {
			return nil, err
		}
		hires = append(hires, h)
	}
	return hires, rows.Err()
}

func scanHire(row pgx.Row) (*models.HireRequest, error) {
	var (
		h      models.HireRequest
		status string
	)
	err := row.Scan(&h.ID, &h.CustomerID, &h.DesignerID, &h.Brief, &h.Budget, &status, &h.DecisionNote, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan hire request: %w", err)
	}
	h.Status = models.HireStatus(status)
	return &h, nil
}
