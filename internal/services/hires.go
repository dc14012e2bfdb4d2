package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/models"
)

// HireStorage is the storage dependency of the hire service.
type HireStorage interface {
	Create(ctx context.Context, h *models.HireRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HireRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.HireStatus, note string) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.HireRequest, error)
}

// HireService handles commissions between customers and designers.
type HireService struct {
	hires HireStorage
	users UserStore
}

func NewHireService(hires HireStorage, users UserStore) *HireService {
	return &HireService{hires: hires, users: users}
}

type HireInput struct {
	DesignerID uuid.UUID
	Brief      string
	Budget     decimal.Decimal
}

// Request opens a commission. The target must actually be a designer.
func (s *HireService) Request(ctx context.Context, customerID uuid.UUID, input HireInput) (*models.HireRequest, error) {
	designer, err := s.users.GetByID(ctx, input.DesignerID)
	if err != nil {
		return nil, err
	}
	if designer.Role != models.RoleDesigner {
		return nil, fmt.Errorf("%w: user %s is not a designer", ErrStateConflict, designer.ID)
	}

	hire := &models.HireRequest{
		CustomerID: customerID,
		DesignerID: input.DesignerID,
		Brief:      input.Brief,
		Budget:     input.Budget,
		Status:     models.HireStatusPending,
	}
	if err := s.hires.Create(ctx, hire); err != nil {
		return nil, err
	}
	return hire, nil
}

// Decide records the designer's accept/decline on a pending commission.
func (s *HireService) Decide(ctx context.Context, hireID, designerID uuid.UUID, accept bool, note string) (*models.HireRequest, error) {
	hire, err := s.hires.GetByID(ctx, hireID)
	if err != nil {
		return nil, err
	}
	if hire.DesignerID != designerID {
		return nil, ErrForbidden
	}
	if hire.Status != models.HireStatusPending {
		return nil, fmt.Errorf("%w: commission is %s", ErrStateConflict, hire.Status)
	}

	status := models.HireStatusDeclined
	if accept {
		status = models.HireStatusAccepted
	}
	if err := s.hires.UpdateStatus(ctx, hireID, status, note); err != nil {
		return nil, err
	}
	hire.Status = status
	hire.DecisionNote = note
	return hire, nil
}

// Complete closes an accepted commission.
func (s *HireService) Complete(ctx context.Context, hireID, designerID uuid.UUID) (*models.HireRequest, error) {
	hire, err := s.hires.GetByID(ctx, hireID)
	if err != nil {
		return nil, err
	}
	if hire.DesignerID != designerID {
		return nil, ErrForbidden
	}
	if hire.Status != models.HireStatusAccepted {
		return nil, fmt.Errorf("%w: commission is %s", ErrStateConflict, hire.Status)
	}

	if err := s.hires.UpdateStatus(ctx, hireID, models.HireStatusCompleted, hire.DecisionNote); err != nil {
		return nil, err
	}
	hire.Status = models.HireStatusCompleted
	return hire, nil
}

// ListForUser returns commissions where the user is either party.
func (s *HireService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.HireRequest, error) {
	return s.hires.ListForUser(ctx, userID)
}
