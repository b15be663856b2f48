package purchaseorders

import (
	"time"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

// Status is the review state of a purchase order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var (
	ErrNotFound         = httpx.NewError(httpx.ErrNotFound, "purchase order not found")
	ErrNumberTaken      = httpx.NewError(httpx.ErrConflict, "purchase order number already exists for this contract")
	ErrNotPending       = httpx.NewError(httpx.ErrConflict, "only pending purchase orders can be reviewed")
	ErrContractInactive = httpx.NewError(httpx.ErrConflict, "purchase orders can only be submitted for active contracts")
	ErrAccountInactive  = httpx.NewError(httpx.ErrConflict, "customer account is not active")
)

// PurchaseOrder is a customer-submitted document against one contract.
type PurchaseOrder struct {
	ID              int64      `json:"id"`
	ContractID      int64      `json:"contractId"`
	CustomerID      int64      `json:"customerId"`
	PONumber        string     `json:"poNumber"`
	Amount          *float64   `json:"amount,omitempty"`
	Currency        string     `json:"currency"`
	FileName        string     `json:"fileName"`
	FilePath        string     `json:"-"`
	FileSize        int64      `json:"fileSize"`
	ContentType     string     `json:"contentType"`
	Status          Status     `json:"status"`
	ReviewedBy      *int64     `json:"reviewedBy"`
	ReviewedAt      *time.Time `json:"reviewedAt"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	UploadedBy      int64      `json:"uploadedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SubmitRequest holds the form fields sent alongside an uploaded document.
type SubmitRequest struct {
	PONumber string   `json:"poNumber" label:"PO Number" validate:"required,max=100"`
	Amount   *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency string   `json:"currency,omitempty" validate:"omitempty,iso4217"`
	FileName string   `json:"fileName" label:"File Name" validate:"required,max=255"`
}

// RejectRequest is the body of a rejection.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	CustomerID int64
	ContractID int64
	Status     Status
	Search     string
	Limit      int
	Offset     int
}
