package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type HireStatus string

const (
	HireStatusPending   HireStatus = "PENDING"
	HireStatusAccepted  HireStatus = "ACCEPTED"
	HireStatusDeclined  HireStatus = "DECLINED"
	HireStatusCompleted HireStatus = "COMPLETED"
)

// HireRequest is a customer commission sent to a designer.
type HireRequest struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	DesignerID   uuid.UUID       `json:"designer_id"`
	Brief        string          `json:"brief"`
	Budget       decimal.Decimal `json:"budget"`
	Status       HireStatus      `json:"status"`
	DecisionNote string          `json:"decision_note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
