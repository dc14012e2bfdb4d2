package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

type fakeRatingStorage struct {
	ratings []*models.Rating
}

func (s *fakeRatingStorage) Create(_ context.Context, r *models.Rating) error {
	for _, existing := range s.ratings {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return services.ErrDuplicate
		}
	}
	r.ID = uuid.New()
	s.ratings = append(s.ratings, r)
	return nil
}

func (s *fakeRatingStorage) ListByProduct(_ context.Context, productID uuid.UUID) ([]*models.Rating, float64, error) {
	var out []*models.Rating
	sum := 0
	for _, r := range s.ratings {
		if r.ProductID == productID {
			out = append(out, r)
			sum += r.Stars
		}
	}
	if len(out) == 0 {
		return nil, 0, nil
	}
	return out, float64(sum) / float64(len(out)), nil
}

type fakePurchases struct {
	fulfilled map[uuid.UUID]bool // keyed by product
}

func (p *fakePurchases) HasFulfilledPurchase(_ context.Context, _, productID uuid.UUID) (bool, error) {
	return p.fulfilled[productID], nil
}

func TestRate(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	newService := func(bought bool) (*services.RatingService, *fakeRatingStorage) {
		storage := &fakeRatingStorage{}
		purchases := &fakePurchases{fulfilled: map[uuid.UUID]bool{productID: bought}}
		return services.NewRatingService(storage, purchases), storage
	}

	t.Run("requires a fulfilled purchase", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(false)

		_, err := svc.Rate(context.Background(), uuid.New(), productID, 5, "great")
		if !errors.Is(err, services.ErrNotPurchased) {
			t.Errorf("got %v, want ErrNotPurchased", err)
		}
	})

	t.Run("rejects out-of-range stars", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(true)

		for _, stars := range []int{0, 6, -1} {
			if _, err := svc.Rate(context.Background(), uuid.New(), productID, stars, ""); !errors.Is(err, services.ErrStateConflict) {
				t.Errorf("stars=%d: got %v, want ErrStateConflict", stars, err)
			}
		}
	})

	t.Run("one rating per user per product", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(true)
		userID := uuid.New()

		if _, err := svc.Rate(context.Background(), userID, productID, 4, "solid"); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Rate(context.Background(), userID, productID, 5, "changed my mind"); !errors.Is(err, services.ErrDuplicate) {
			t.Errorf("got %v, want ErrDuplicate", err)
		}
	})

	t.Run("averages across buyers", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(true)

		if _, err := svc.Rate(context.Background(), uuid.New(), productID, 2, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Rate(context.Background(), uuid.New(), productID, 5, ""); err != nil {
			t.Fatal(err)
		}
		ratings, avg, err := svc.ListForProduct(context.Background(), productID)
		if err != nil {
			t.Fatal(err)
		}
		if len(ratings) != 2 {
			t.Fatalf("ratings = %d, want 2", len(ratings))
		}
		if avg != 3.5 {
			t.Errorf("average = %v, want 3.5", avg)
		}
	})
}
