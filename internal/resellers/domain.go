package resellers

import (
	"time"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

var (
	ErrNotFound   = httpx.NewError(httpx.ErrNotFound, "reseller not found")
	ErrEmailTaken = httpx.NewError(httpx.ErrConflict, "reseller email already exists")
	ErrInUse      = httpx.NewError(httpx.ErrConflict, "reseller is referenced by contracts and cannot be deleted")
)

// Reseller is a partner that sells contracts on commission.
type Reseller struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ContactName    *string   `json:"contactName,omitempty"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone,omitempty"`
	CommissionRate float64   `json:"commissionRate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateResellerRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	ContactName    *string `json:"contactName,omitempty" validate:"omitempty,max=200"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	CommissionRate float64 `json:"commissionRate" validate:"gte=0,lte=100"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

type UpdateResellerRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactName    *string  `json:"contactName,omitempty" validate:"omitempty,max=200"`
	Email          *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	CommissionRate *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

type ListFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
