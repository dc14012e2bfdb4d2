package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/craftline/craftline/internal/models"
)

var ErrNotPurchased = errors.New("product was not purchased by this user")

// RatingStorage is the storage dependency of the rating service.
type RatingStorage interface {
	Create(ctx context.Context, r *models.Rating) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Rating, float64, error)
}

// PurchaseChecker reports whether a user has a fulfilled purchase of a
// product.
type PurchaseChecker interface {
	HasFulfilledPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// RatingService records verified-purchase reviews.
type RatingService struct {
	ratings   RatingStorage
	purchases PurchaseChecker
}

func NewRatingService(ratings RatingStorage, purchases PurchaseChecker) *RatingService {
	return &RatingService{ratings: ratings, purchases: purchases}
}

// Rate stores a review. Only buyers with a fulfilled purchase may review,
// once per product.
func (s *RatingService) Rate(ctx context.Context, userID, productID uuid.UUID, stars int, comment string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", ErrStateConflict)
	}

	purchased, err := s.purchases.HasFulfilledPurchase(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	rating := &models.Rating{
		ProductID: productID,
		UserID:    userID,
		Stars:     stars,
		Comment:   comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// ListForProduct returns the reviews plus their average.
func (s *RatingService) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*models.Rating, float64, error) {
	return s.ratings.ListByProduct(ctx, productID)
}
