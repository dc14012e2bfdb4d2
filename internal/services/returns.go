package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/craftline/internal/crypto"
	"github.com/craftline/craftline/internal/logging"
	"github.com/craftline/craftline/internal/models"
	"github.com/craftline/craftline/internal/observability"
)

var (
	// ErrForbidden means the caller is not a party to the request.
	ErrForbidden = errors.New("forbidden")
	// ErrStateConflict means the request is not in a lifecycle stage that
	// allows the operation.
	ErrStateConflict = errors.New("state conflict")
	// ErrItemNotReturnable means the order item is not in a returnable state.
	ErrItemNotReturnable = errors.New("order item is not returnable")
	// ErrSellerNotApproved means admin approval was attempted before the
	// seller approved.
	ErrSellerNotApproved = errors.New("seller approval is required first")
)

// ReturnEmailSender delivers refund notifications. Sends happen after the
// transaction commits and are best-effort: failures are logged, never
// surfaced, and never roll back the mutation.
type ReturnEmailSender interface {
	SendRefundProcessed(ctx context.Context, to, name string, input RefundProcessedEmailInput) error
}

type RefundProcessedEmailInput struct {
	ProductName string
	Amount      decimal.Decimal
	Method      models.RefundMethod
	Completed   bool
}

// ReturnService sequences the return/refund workflow: customer initiation,
// seller decision, admin decision, refund side effects.
type ReturnService struct {
	store     ReturnStore
	encryptor crypto.Encryptor
	emails    ReturnEmailSender
	logger    *slog.Logger
}

func NewReturnService(store ReturnStore, encryptor crypto.Encryptor, emails ReturnEmailSender, logger *slog.Logger) *ReturnService {
	if emails == nil {
		emails = noopReturnEmailSender{}
	}
	return &ReturnService{
		store:     store,
		encryptor: encryptor,
		emails:    emails,
		logger:    logger,
	}
}

func (s *ReturnService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type InitiateReturnInput struct {
	OrderItemID  uuid.UUID
	Reason       string
	RefundMethod models.RefundMethod
	RefundAmount *decimal.Decimal
	BankAccount  string
}

// Initiate opens a return case against a fulfilled order item. The unique
// constraint on order_item_id enforces at most one request per item.
func (s *ReturnService) Initiate(ctx context.Context, userID uuid.UUID, input InitiateReturnInput) (*models.ReturnRequest, error) {
	if !models.ValidRefundMethod(input.RefundMethod) {
		return nil, fmt.Errorf("%w: unknown refund method %q", ErrStateConflict, input.RefundMethod)
	}

	bankAccount := ""
	if input.RefundMethod == models.RefundMethodBank && input.BankAccount != "" {
		encrypted, err := s.encryptor.Encrypt(input.BankAccount)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt bank account: %w", err)
		}
		bankAccount = encrypted
	}

	request := &models.ReturnRequest{
		Reason:               input.Reason,
		Status:               models.ReturnStateRequested,
		SellerApprovalStatus: models.ApprovalPending,
		AdminApprovalStatus:  models.ApprovalPending,
		RefundStatus:         models.RefundPending,
		RefundMethod:         input.RefundMethod,
		BankAccount:          bankAccount,
		UserID:               userID,
	}
	if input.RefundAmount != nil {
		request.RefundAmount = decimal.NewNullDecimal(*input.RefundAmount)
	}

	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		item, err := tx.GetOrderItemForUpdate(ctx, input.OrderItemID)
		if err != nil {
			return err
		}
		if item.UserID != userID {
			return ErrForbidden
		}
		if item.Status != models.ItemStatusFulfilled {
			return fmt.Errorf("%w: item status is %q", ErrItemNotReturnable, item.Status)
		}
		if item.ReturnStatus == models.ReturnStatusRequested {
			return ErrDuplicate
		}

		request.OrderItemID = item.ID
		request.SellerID = item.SellerID
		if err := tx.CreateReturn(ctx, request); err != nil {
			return err
		}

		now := time.Now()
		item.ReturnStatus = models.ReturnStatusRequested
		item.ReturnRequestedAt = &now
		return tx.UpdateOrderItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	observability.MeterFromContext(ctx).Count("return.requested", 1, sentry.WithAttributes(
		attribute.String("refund_method", string(request.RefundMethod)),
	))
	return request, nil
}

// SellerApprove records the seller's approval and moves the item into the
// returned state. Admin review follows.
func (s *ReturnService) SellerApprove(ctx context.Context, returnID, sellerID uuid.UUID) (*models.ReturnRequest, error) {
	var request *models.ReturnRequest
	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		r, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r.SellerID != sellerID {
			return ErrForbidden
		}
		if r.SellerApprovalStatus != models.ApprovalPending {
			return fmt.Errorf("%w: seller decision already %s", ErrStateConflict, r.SellerApprovalStatus)
		}

		now := time.Now()
		r.SellerApprovalStatus = models.ApprovalApproved
		r.SellerApprovedAt = &now
		if err := tx.UpdateReturn(ctx, r); err != nil {
			return err
		}

		item, err := tx.GetOrderItemForUpdate(ctx, r.OrderItemID)
		if err != nil {
			return err
		}
		item.ReturnStatus = models.ReturnStatusApproved
		item.Status = models.ItemStatusReturned
		item.ReturnResolvedAt = &now
		if err := tx.UpdateOrderItem(ctx, item); err != nil {
			return err
		}

		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// SellerReject closes the case with a seller rejection and a decision note.
func (s *ReturnService) SellerReject(ctx context.Context, returnID, sellerID uuid.UUID, reason string) (*models.ReturnRequest, error) {
	var request *models.ReturnRequest
	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		r, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r.SellerID != sellerID {
			return ErrForbidden
		}
		if r.SellerApprovalStatus != models.ApprovalPending {
			return fmt.Errorf("%w: seller decision already %s", ErrStateConflict, r.SellerApprovalStatus)
		}

		now := time.Now()
		r.SellerApprovalStatus = models.ApprovalRejected
		r.Status = models.ReturnStateRejected
		r.DecisionNote = reason
		r.DecidedBy = "seller:" + sellerID.String()
		if err := tx.UpdateReturn(ctx, r); err != nil {
			return err
		}

		item, err := tx.GetOrderItemForUpdate(ctx, r.OrderItemID)
		if err != nil {
			return err
		}
		item.ReturnStatus = models.ReturnStatusRejected
		item.ReturnResolvedAt = &now
		if err := tx.UpdateOrderItem(ctx, item); err != nil {
			return err
		}

		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Cancel lets the requesting customer withdraw a return that nobody has
// decided yet. The order item reverts to fulfilled.
func (s *ReturnService) Cancel(ctx context.Context, returnID, userID uuid.UUID, userEmail string) (*models.ReturnRequest, error) {
	var request *models.ReturnRequest
	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		r, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r.UserID != userID {
			return ErrForbidden
		}
		if r.Status != models.ReturnStateRequested {
			return fmt.Errorf("%w: return is %s", ErrStateConflict, r.Status)
		}

		r.Status = models.ReturnStateCancelled
		r.DecisionNote = "cancelled by customer"
		r.DecidedBy = userEmail
		if err := tx.UpdateReturn(ctx, r); err != nil {
			return err
		}

		item, err := tx.GetOrderItemForUpdate(ctx, r.OrderItemID)
		if err != nil {
			return err
		}
		item.ReturnStatus = models.ReturnStatusCancelled
		item.Status = models.ItemStatusFulfilled
		item.ReturnRequestedAt = nil
		if err := tx.UpdateOrderItem(ctx, item); err != nil {
			return err
		}

		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// AdminApprove finalizes the case after the seller approved. The admin
// approval flag, refund status and any credit increment commit in one
// transaction. Store-credit refunds complete immediately and credit the
// customer by the refund amount, falling back to the item total when no
// amount was set; bank refunds stay pending for manual settlement.
//
// There is deliberately no check on the admin approval flag itself: invoking
// this twice re-runs the whole effect, including the credit increment.
func (s *ReturnService) AdminApprove(ctx context.Context, returnID uuid.UUID) (*models.ReturnRequest, error) {
	var (
		request     *models.ReturnRequest
		amount      decimal.Decimal
		productName string
	)
	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		r, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if r.SellerApprovalStatus != models.ApprovalApproved {
			return ErrSellerNotApproved
		}

		item, err := tx.GetOrderItemForUpdate(ctx, r.OrderItemID)
		if err != nil {
			return err
		}
		productName = item.ProductName
		amount = item.TotalAmount
		if r.RefundAmount.Valid {
			amount = r.RefundAmount.Decimal
		}

		now := time.Now()
		r.AdminApprovalStatus = models.ApprovalApproved
		r.AdminApprovedAt = &now
		r.Status = models.ReturnStateApproved
		if r.RefundMethod == models.RefundMethodStoreCredit {
			r.RefundStatus = models.RefundCompleted
			if err := tx.IncrementCredit(ctx, r.UserID, amount); err != nil {
				return err
			}
		} else {
			r.RefundStatus = models.RefundPending
		}
		if err := tx.UpdateReturn(ctx, r); err != nil {
			return err
		}

		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.MeterFromContext(ctx).Count("return.admin.approved", 1, sentry.WithAttributes(
		attribute.String("refund_method", string(request.RefundMethod)),
		attribute.String("refund_status", string(request.RefundStatus)),
	))
	s.notifyRefund(ctx, request, productName, amount)
	return request, nil
}

// AdminCompleteRefund marks a refund settled. Used to confirm manual bank
// transfers; no precondition on the current refund status.
func (s *ReturnService) AdminCompleteRefund(ctx context.Context, returnID uuid.UUID) (*models.ReturnRequest, error) {
	var request *models.ReturnRequest
	err := s.store.InTx(ctx, func(tx ReturnTx) error {
		r, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		r.RefundStatus = models.RefundCompleted
		if err := tx.UpdateReturn(ctx, r); err != nil {
			return err
		}
		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *ReturnService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.ReturnView, error) {
	return s.store.ListBySeller(ctx, sellerID)
}

func (s *ReturnService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ReturnView, error) {
	return s.store.ListByUser(ctx, userID)
}

// notifyRefund queues the post-commit confirmation email. Best-effort only.
func (s *ReturnService) notifyRefund(ctx context.Context, request *models.ReturnRequest, productName string, amount decimal.Decimal) {
	logger := s.loggerFromContext(ctx)

	name, to, err := s.store.GetUserContact(ctx, request.UserID)
	if err != nil {
		logger.Warn("failed to resolve refund email recipient", "return_id", request.ID, "error", err)
		return
	}

	input := RefundProcessedEmailInput{
		ProductName: productName,
		Amount:      amount,
		Method:      request.RefundMethod,
		Completed:   request.RefundStatus == models.RefundCompleted,
	}
	if err := s.emails.SendRefundProcessed(ctx, to, name, input); err != nil {
		logger.Warn("failed to send refund email", "return_id", request.ID, "error", err)
	}
}

type noopReturnEmailSender struct{}

func (noopReturnEmailSender) SendRefundProcessed(context.Context, string, string, RefundProcessedEmailInput) error {
	return nil
}
