package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleDesigner Role = "designer"
	RoleAdmin    Role = "admin"
)

// ValidRegistrationRole reports whether a role may be chosen at sign-up.
// Admin accounts are seeded out of band, never self-registered.
func ValidRegistrationRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleDesigner:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Credit       decimal.Decimal `json:"credit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
