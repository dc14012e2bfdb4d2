package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/services"
)

// ReturnStore is the Postgres implementation of services.ReturnStore. All
// multi-statement mutations go through InTx so that approval flags, refund
// status, item transitions and credit increments commit together or not at
// all.
type ReturnStore struct {
	pool *pgxpool.Pool
}

func NewReturnStore(pool *pgxpool.Pool) *ReturnStore {
	return &ReturnStore{pool: pool}
}

const returnColumns = `id, order_item_id, user_id, seller_id, reason, status,
	seller_approval_status, admin_approval_status, refund_status, refund_method,
	refund_amount, bank_account, decision_note, decided_by,
	seller_approved_at, admin_approved_at, created_at, updated_at`

func (s *ReturnStore) InTx(ctx context.Context, fn func(tx services.ReturnTx) error) error {
	pgxTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer pgxTx.Rollback(ctx) //nolint:errcheck

	if err := fn(&returnTx{tx: pgxTx}); err != nil {
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetUserContact resolves the name and email used for post-commit
// notification emails.
func (s *ReturnStore) GetUserContact(ctx context.Context, id uuid.UUID) (string, string, error) {
	var name, email string
	err := s.pool.QueryRow(ctx, `SELECT name, email FROM users WHERE id = $1`, id).Scan(&name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", services.ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve user contact: %w", err)
	}
	return name, email, nil
}

func (s *ReturnStore) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.ReturnView, error) {
	// Counterpart of a seller view is the requesting customer.
	return s.listViews(ctx, `
		SELECT `+prefixedReturnColumns("r")+`, `+prefixedItemColumns("i")+`, u.name, u.email
		FROM return_requests r
		JOIN order_items i ON i.id = r.order_item_id
		JOIN users u ON u.id = r.user_id
		WHERE r.seller_id = $1
		ORDER BY r.created_at DESC`, sellerID)
}

func (s *ReturnStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ReturnView, error) {
	// Counterpart of a customer view is the seller.
	return s.listViews(ctx, `
		SELECT `+prefixedReturnColumns("r")+`, `+prefixedItemColumns("i")+`, u.name, u.email
		FROM return_requests r
		JOIN order_items i ON i.id = r.order_item_id
		JOIN users u ON u.id = r.seller_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`, userID)
}

func (s *ReturnStore) listViews(ctx context.Context, query string, ownerID uuid.UUID) ([]*models.ReturnView, error) {
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	defer rows.Close()

	views := make([]*models.ReturnView, 0)
	for rows.Next() {
		view, err := scanReturnView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// returnTx is the transactional view handed to the return service.
type returnTx struct {
	tx pgx.Tx
}

func (t *returnTx) GetReturnForUpdate(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+returnColumns+` FROM return_requests WHERE id = $1 FOR UPDATE`, id)
	return scanReturn(row)
}

func (t *returnTx) GetOrderItemForUpdate(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+orderItemColumns+` FROM order_items WHERE id = $1 FOR UPDATE`, id)
	return scanOrderItem(row)
}

// CreateReturn inserts the request. A row left behind by a cancelled return
// is taken over in place; any other existing row for the item is a duplicate.
func (t *returnTx) CreateReturn(ctx context.Context, r *models.ReturnRequest) error {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO return_requests
			(order_item_id, user_id, seller_id, reason, status,
			 seller_approval_status, admin_approval_status, refund_status,
			 refund_method, refund_amount, bank_account)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_item_id) DO UPDATE
		SET user_id = EXCLUDED.user_id, seller_id = EXCLUDED.seller_id,
			reason = EXCLUDED.reason, status = EXCLUDED.status,
			seller_approval_status = EXCLUDED.seller_approval_status,
			admin_approval_status = EXCLUDED.admin_approval_status,
			refund_status = EXCLUDED.refund_status,
			refund_method = EXCLUDED.refund_method,
			refund_amount = EXCLUDED.refund_amount,
			bank_account = EXCLUDED.bank_account,
			decision_note = '', decided_by = '',
			seller_approved_at = NULL, admin_approved_at = NULL,
			updated_at = now()
		WHERE return_requests.status = 'CANCELLED'
		RETURNING id, created_at, updated_at`,
		r.OrderItemID, r.UserID, r.SellerID, r.Reason, string(r.Status),
		string(r.SellerApprovalStatus), string(r.AdminApprovalStatus), string(r.RefundStatus),
		string(r.RefundMethod), r.RefundAmount, r.BankAccount,
	)
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return services.ErrDuplicate
		}
		return fmt.Errorf("failed to create return request: %w", err)
	}
	return nil
}

func (t *returnTx) UpdateReturn(ctx context.Context, r *models.ReturnRequest) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE return_requests
		SET status = $2, seller_approval_status = $3, admin_approval_status = $4,
			refund_status = $5, refund_amount = $6, decision_note = $7, decided_by = $8,
			seller_approved_at = $9, admin_approved_at = $10, updated_at = now()
		WHERE id = $1`,
		r.ID, string(r.Status), string(r.SellerApprovalStatus), string(r.AdminApprovalStatus),
		string(r.RefundStatus), r.RefundAmount, r.DecisionNote, r.DecidedBy,
		r.SellerApprovedAt, r.AdminApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update return request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (t *returnTx) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE order_items
		SET status = $2, return_status = $3, return_requested_at = $4, return_resolved_at = $5
		WHERE id = $1`,
		item.ID, string(item.Status), string(item.ReturnStatus),
		item.ReturnRequestedAt, item.ReturnResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (t *returnTx) IncrementCredit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE users SET credit = credit + $2, updated_at = now() WHERE id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("failed to increment credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func scanReturn(row pgx.Row) (*models.ReturnRequest, error) {
	var (
		r                          models.ReturnRequest
		status                     string
		sellerStatus, adminStatus  string
		refundStatus, refundMethod string
	)
	err := row.Scan(
		&r.ID, &r.OrderItemID, &r.UserID, &r.SellerID, &r.Reason, &status,
		&sellerStatus, &adminStatus, &refundStatus, &refundMethod,
		&r.RefundAmount, &r.BankAccount, &r.DecisionNote, &r.DecidedBy,
		&r.SellerApprovedAt, &r.AdminApprovedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan return request: %w", err)
	}
	r.Status = models.ReturnState(status)
	r.SellerApprovalStatus = models.ApprovalStatus(sellerStatus)
	r.AdminApprovalStatus = models.ApprovalStatus(adminStatus)
	r.RefundStatus = models.RefundStatus(refundStatus)
	r.RefundMethod = models.RefundMethod(refundMethod)
	return &r, nil
}

func scanReturnView(row pgx.Row) (*models.ReturnView, error) {
	var (
		view                       models.ReturnView
		item                       models.OrderItem
		status                     string
		sellerStatus, adminStatus  string
		refundStatus, refundMethod string
		itemStatus, itemReturn     string
	)
	err := row.Scan(
		&view.ID, &view.OrderItemID, &view.UserID, &view.SellerID, &view.Reason, &status,
		&sellerStatus, &adminStatus, &refundStatus, &refundMethod,
		&view.RefundAmount, &view.BankAccount, &view.DecisionNote, &view.DecidedBy,
		&view.SellerApprovedAt, &view.AdminApprovedAt, &view.CreatedAt, &view.UpdatedAt,
		&item.ID, &item.OrderID, &item.UserID, &item.ProductID, &item.SellerID, &item.ProductName,
		&item.Quantity, &item.TotalAmount, &itemStatus, &itemReturn,
		&item.ReturnRequestedAt, &item.ReturnResolvedAt, &item.CreatedAt,
		&view.CounterpartName, &view.CounterpartEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan return view: %w", err)
	}
	view.Status = models.ReturnState(status)
	view.SellerApprovalStatus = models.ApprovalStatus(sellerStatus)
	view.AdminApprovalStatus = models.ApprovalStatus(adminStatus)
	view.RefundStatus = models.RefundStatus(refundStatus)
	view.RefundMethod = models.RefundMethod(refundMethod)
	item.Status = models.ItemStatus(itemStatus)
	item.ReturnStatus = models.ReturnStatus(itemReturn)
	view.Item = &item
	return &view, nil
}

func prefixedReturnColumns(alias string) string {
	return prefixColumns(alias, returnColumns)
}

func prefixedItemColumns(alias string) string {
	return prefixColumns(alias, orderItemColumns)
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
