package products

import (
	"time"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

var (
	ErrNotFound = httpx.NewError(httpx.ErrNotFound, "product not found")
	ErrSKUTaken = httpx.NewError(httpx.ErrConflict, "product SKU already exists")
	ErrInUse    = httpx.NewError(httpx.ErrConflict, "product is referenced by contracts and cannot be deleted")
)

// Product is a sellable catalog entry.
type Product struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductRequest is the create payload.
type ProductRequest struct {
	SKU         string  `json:"sku" label:"SKU" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,iso4217"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdateProductRequest carries the editable fields.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,iso4217"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
