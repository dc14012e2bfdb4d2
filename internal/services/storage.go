package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/models"
)

// Storage-level sentinels. Store implementations translate their driver
// errors into these so services and handlers can dispatch with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ReturnTx is the transactional capability set the return workflow runs
// against. Everything invoked inside one InTx call commits atomically.
type ReturnTx interface {
	GetReturnForUpdate(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	GetOrderItemForUpdate(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	CreateReturn(ctx context.Context, r *models.ReturnRequest) error
	UpdateReturn(ctx context.Context, r *models.ReturnRequest) error
	UpdateOrderItem(ctx context.Context, item *models.OrderItem) error
	IncrementCredit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

// ReturnStore is the storage dependency of the return service.
type ReturnStore interface {
	InTx(ctx context.Context, fn func(tx ReturnTx) error) error
	GetUserContact(ctx context.Context, id uuid.UUID) (name, email string, err error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.ReturnView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ReturnView, error)
}
