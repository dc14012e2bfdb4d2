package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalStatus is the state of one review stage (seller or admin) on a
// return request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundCompleted RefundStatus = "COMPLETED"
)

type RefundMethod string

const (
	RefundMethodStoreCredit RefundMethod = "STORE_CREDIT"
	RefundMethodBank        RefundMethod = "BANK"
)

func ValidRefundMethod(m RefundMethod) bool {
	return m == RefundMethodStoreCredit || m == RefundMethodBank
}

// ReturnState is the overall lifecycle of a return request.
type ReturnState string

const (
	ReturnStateRequested ReturnState = "REQUESTED"
	ReturnStateCancelled ReturnState = "CANCELLED"
	ReturnStateRejected  ReturnState = "REJECTED"
	ReturnStateApproved  ReturnState = "APPROVED"
)

// ReturnRequest is a customer claim against a single OrderItem. It needs a
// seller decision and then an admin decision before the refund resolves. The
// one-to-one relation to the order item is enforced by a unique constraint.
type ReturnRequest struct {
	ID                   uuid.UUID           `json:"id"`
	OrderItemID          uuid.UUID           `json:"order_item_id"`
	UserID               uuid.UUID           `json:"user_id"`
	SellerID             uuid.UUID           `json:"seller_id"`
	Reason               string              `json:"reason"`
	Status               ReturnState         `json:"status"`
	SellerApprovalStatus ApprovalStatus      `json:"seller_approval_status"`
	AdminApprovalStatus  ApprovalStatus      `json:"admin_approval_status"`
	RefundStatus         RefundStatus        `json:"refund_status"`
	RefundMethod         RefundMethod        `json:"refund_method"`
	RefundAmount         decimal.NullDecimal `json:"refund_amount"`
	// BankAccount holds the payout account for BANK refunds, AES-encrypted
	// at rest. Never serialized.
	BankAccount      string     `json:"-"`
	DecisionNote     string     `json:"decision_note,omitempty"`
	DecidedBy        string     `json:"decided_by,omitempty"`
	SellerApprovedAt *time.Time `json:"seller_approved_at,omitempty"`
	AdminApprovedAt  *time.Time `json:"admin_approved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ReturnView is one row of the seller/user listing: the request joined with
// its order item and the counterpart identity.
type ReturnView struct {
	ReturnRequest
	Item             *OrderItem `json:"order_item"`
	CounterpartName  string     `json:"counterpart_name"`
	CounterpartEmail string     `json:"counterpart_email"`
}
