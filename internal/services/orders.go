package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/logging"
	"github.com/craftline/craftline/internal/models"
)

var ErrEmptyOrder = errors.New("order has no items")

// OrderStorage is the storage dependency of the order service.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListItemsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.OrderItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	UpdateItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error
}

// ProductCatalog resolves the products an order references.
type ProductCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ContactDirectory resolves users for shipment notifications.
type ContactDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// OrderEmailSender delivers shipment notifications. Best-effort.
type OrderEmailSender interface {
	SendOrderShipped(ctx context.Context, to, name, productName string) error
}

// OrderService places orders and walks line items through fulfillment.
type OrderService struct {
	orders   OrderStorage
	catalog  ProductCatalog
	contacts ContactDirectory
	emails   OrderEmailSender
	logger   *slog.Logger
}

func NewOrderService(orders OrderStorage, catalog ProductCatalog, contacts ContactDirectory, emails OrderEmailSender, logger *slog.Logger) *OrderService {
	if emails == nil {
		emails = noopOrderEmailSender{}
	}
	return &OrderService{
		orders:   orders,
		catalog:  catalog,
		contacts: contacts,
		emails:   emails,
		logger:   logger,
	}
}

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// Place prices the lines against the current catalog and creates the order
// with every item pending. Prices are read server-side; client-supplied
// amounts are never trusted.
func (s *OrderService) Place(ctx context.Context, userID uuid.UUID, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &models.Order{
		UserID: userID,
		Status: "placed",
		Total:  decimal.Zero,
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrStateConflict)
		}
		product, err := s.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product %s is no longer available", ErrStateConflict, product.ID)
		}

		amount := product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items = append(order.Items, &models.OrderItem{
			ProductID:    product.ID,
			SellerID:     product.SellerID,
			ProductName:  product.Name,
			Quantity:     line.Quantity,
			TotalAmount:  amount,
			Status:       models.ItemStatusPending,
			ReturnStatus: models.ReturnStatusNone,
		})
		order.Total = order.Total.Add(amount)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]*models.OrderItem, error) {
	return s.orders.ListItemsBySeller(ctx, sellerID)
}

// UpdateItemStatus moves a line item forward through fulfillment. Only the
// selling seller may do it, and only along allowed transitions. Shipping an
// item emails the buyer.
func (s *OrderService) UpdateItemStatus(ctx context.Context, itemID, sellerID uuid.UUID, next models.ItemStatus) (*models.OrderItem, error) {
	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID != sellerID {
		return nil, ErrForbidden
	}
	if !item.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move item from %s to %s", ErrStateConflict, item.Status, next)
	}

	if err := s.orders.UpdateItemStatus(ctx, itemID, next); err != nil {
		return nil, err
	}
	item.Status = next

	if next == models.ItemStatusShipped {
		s.notifyShipped(ctx, item)
	}
	return item, nil
}

func (s *OrderService) notifyShipped(ctx context.Context, item *models.OrderItem) {
	logger := logging.FromContext(ctx, s.logger)

	buyer, err := s.contacts.GetByID(ctx, item.UserID)
	if err != nil {
		logger.Warn("failed to resolve shipment email recipient", "order_item_id", item.ID, "error", err)
		return
	}
	if err := s.emails.SendOrderShipped(ctx, buyer.Email, buyer.Name, item.ProductName); err != nil {
		logger.Warn("failed to send shipment email", "order_item_id", item.ID, "error", err)
	}
}

type noopOrderEmailSender struct{}

func (noopOrderEmailSender) SendOrderShipped(context.Context, string, string, string) error {
	return nil
}
