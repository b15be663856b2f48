package contracts

import (
	"time"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

// Status is the lifecycle state of a contract.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusExpired    Status = "expired"
	StatusTerminated Status = "terminated"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusExpired, StatusTerminated:
		return true
	}
	return false
}

// BillingCycle is how often a contract is invoiced.
type BillingCycle string

const (
	BillingMonthly   BillingCycle = "monthly"
	BillingQuarterly BillingCycle = "quarterly"
	BillingAnnually  BillingCycle = "annually"
	BillingOneTime   BillingCycle = "one_time"
)

var (
	ErrNotFound        = httpx.NewError(httpx.ErrNotFound, "contract not found")
	ErrNumberTaken     = httpx.NewError(httpx.ErrConflict, "contract number already exists")
	ErrNotDraft        = httpx.NewError(httpx.ErrConflict, "only draft contracts can be approved")
	ErrHasDependents   = httpx.NewError(httpx.ErrConflict, "contract has purchase orders and cannot be deleted")
	ErrUnknownRelation = httpx.NewError(httpx.ErrValidation, "customer, product or reseller does not exist")
)

// Contract is a billing agreement with one customer.
type Contract struct {
	ID             int64        `json:"id"`
	CustomerID     int64        `json:"customerId"`
	ProductID      *int64       `json:"productId"`
	ResellerID     *int64       `json:"resellerId"`
	ContractNumber string       `json:"contractNumber"`
	Title          string       `json:"title"`
	Description    *string      `json:"description,omitempty"`
	Value          float64      `json:"value"`
	Currency       string       `json:"currency"`
	BillingCycle   BillingCycle `json:"billingCycle"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        *time.Time   `json:"endDate"`
	Status         Status       `json:"status"`
	ApprovedBy     *int64       `json:"approvedBy"`
	ApprovedAt     *time.Time   `json:"approvedAt"`
	CreatedBy      int64        `json:"createdBy"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// CreateContractRequest is the payload for creating a contract.
type CreateContractRequest struct {
	CustomerID     int64        `json:"customerId" validate:"required,gt=0"`
	ProductID      *int64       `json:"productId,omitempty" validate:"omitempty,gt=0"`
	ResellerID     *int64       `json:"resellerId,omitempty" validate:"omitempty,gt=0"`
	ContractNumber string       `json:"contractNumber" validate:"required,max=50"`
	Title          string       `json:"title" validate:"required,max=200"`
	Description    *string      `json:"description,omitempty"`
	Value          float64      `json:"value" validate:"gte=0"`
	Currency       string       `json:"currency" validate:"required,iso4217"`
	BillingCycle   BillingCycle `json:"billingCycle" validate:"required,oneof=monthly quarterly annually one_time"`
	StartDate      time.Time    `json:"startDate" validate:"required"`
	EndDate        *time.Time   `json:"endDate,omitempty" validate:"omitempty,gtfield=StartDate"`
}

// UpdateContractRequest carries editable fields. Approval has its own
// endpoint.
type UpdateContractRequest struct {
	ProductID    *int64        `json:"productId,omitempty" validate:"omitempty,gt=0"`
	ResellerID   *int64        `json:"resellerId,omitempty" validate:"omitempty,gt=0"`
	Title        *string       `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string       `json:"description,omitempty"`
	Value        *float64      `json:"value,omitempty" validate:"omitempty,gte=0"`
	Currency     *string       `json:"currency,omitempty" validate:"omitempty,iso4217"`
	BillingCycle *BillingCycle `json:"billingCycle,omitempty" validate:"omitempty,oneof=monthly quarterly annually one_time"`
	EndDate      *time.Time    `json:"endDate,omitempty"`
	Status       *Status       `json:"status,omitempty" validate:"omitempty,oneof=expired terminated"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	CustomerID int64
	Status     Status
	Search     string
	Limit      int
	Offset     int
}
