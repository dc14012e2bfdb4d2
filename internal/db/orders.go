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

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderItemColumns = `id, order_id, user_id, product_id, seller_id, product_name, quantity, total_amount,
	status, return_status, return_requested_at, return_resolved_at, created_at`

// Create inserts the order and all of its line items in one transaction.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		order.UserID, order.Status, order.Total,
	)
	if err := row.Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		item.UserID = order.UserID
		row := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, user_id, product_id, seller_id, product_name, quantity, total_amount, status, return_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at`,
			item.OrderID, item.UserID, item.ProductID, item.SellerID, item.ProductName,
			item.Quantity, item.TotalAmount, string(item.Status), string(item.ReturnStatus),
		)
		if err := row.Scan(&item.ID, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, status, total, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	byID := make(map[uuid.UUID]*models.Order)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Items = make([]*models.OrderItem, 0)
		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.pool.Query(ctx, `
		SELECT `+orderItemColumns+`
		FROM order_items
		WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, err
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (s *OrderStore) ListItemsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderItemColumns+`
		FROM order_items WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *OrderStore) GetItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+orderItemColumns+` FROM order_items WHERE id = $1`, id)
	return scanOrderItem(row)
}

func (s *OrderStore) UpdateItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE order_items SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

// HasFulfilledPurchase reports whether the user has a fulfilled (or returned)
// line item for the product. Gate for ratings.
func (s *OrderStore) HasFulfilledPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items i
			JOIN orders o ON o.id = i.order_id
			WHERE o.user_id = $1 AND i.product_id = $2 AND i.status IN ('fulfilled', 'returned')
		)`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}

func scanOrderItem(row pgx.Row) (*models.OrderItem, error) {
	var (
		item         models.OrderItem
		status       string
		returnStatus string
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.UserID, &item.ProductID, &item.SellerID, &item.ProductName,
		&item.Quantity, &item.TotalAmount, &status, &returnStatus,
		&item.ReturnRequestedAt, &item.ReturnResolvedAt, &item.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order item: %w", err)
	}
	item.Status = models.ItemStatus(status)
	item.ReturnStatus = models.ReturnStatus(returnStatus)
	return &item, nil
}
