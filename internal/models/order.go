package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusShipped   ItemStatus = "shipped"
	ItemStatusFulfilled ItemStatus = "fulfilled"
	ItemStatusReturned  ItemStatus = "returned"
)

// ReturnStatus tracks the return workflow on a line item, independent of the
// item's fulfillment status.
type ReturnStatus string

const (
	ReturnStatusNone      ReturnStatus = "NONE"
	ReturnStatusRequested ReturnStatus = "REQUESTED"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCancelled ReturnStatus = "CANCELLED"
)

type Order struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []*OrderItem    `json:"items,omitempty"`
}

// OrderItem is one purchased line within an order. Items are never deleted,
// only status-transitioned.
type OrderItem struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	UserID            uuid.UUID       `json:"user_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	SellerID          uuid.UUID       `json:"seller_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            ItemStatus      `json:"status"`
	ReturnStatus      ReturnStatus    `json:"return_status"`
	ReturnRequestedAt *time.Time      `json:"return_requested_at,omitempty"`
	ReturnResolvedAt  *time.Time      `json:"return_resolved_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CanTransitionTo reports whether a seller fulfillment update is allowed.
// Fulfillment only moves forward; the return workflow owns the "returned"
// transition.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	switch s {
	case ItemStatusPending:
		return next == ItemStatusShipped || next == ItemStatusFulfilled
	case ItemStatusShipped:
		return next == ItemStatusFulfilled
	}
	return false
}
