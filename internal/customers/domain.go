package customers

import (
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// Status is the lifecycle state of a customer profile.
type Status string

const (
	StatusActive          Status = "active"
	StatusInactive        Status = "inactive"
	StatusSuspended       Status = "suspended"
	StatusPendingApproval Status = "pending_approval"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPendingApproval:
		return true
	}
	return false
}

var (
	ErrNotFound         = httpx.NewError(httpx.ErrNotFound, "customer not found")
	ErrAlreadyLinked    = httpx.NewError(httpx.ErrConflict, "customer already has portal access")
	ErrApprovalRequired = httpx.NewError(httpx.ErrConflict, "customers must be approved before activation")
	ErrAlreadyApproved  = httpx.NewError(httpx.ErrConflict, "customer is already approved")
	ErrHasDependents    = httpx.NewError(httpx.ErrConflict, "customer has contracts or purchase orders and cannot be deleted")
	ErrStatusDenied     = httpx.NewError(httpx.ErrForbidden, "insufficient permissions")
)

// Customer is a customer profile. UserID links the single portal account that
// owns the profile; ApprovedBy/ApprovedAt are set once and never cleared.
type Customer struct {
	ID          int64      `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	TaxID       *string    `json:"taxId,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	UserID      *int64     `json:"userId"`
	AssignedTo  *int64     `json:"assignedTo"`
	ApprovedBy  *int64     `json:"approvedBy"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Approved reports whether the profile has ever been approved.
func (c *Customer) Approved() bool {
	return c.ApprovedAt != nil
}

// Linked converts the profile into the view attached to a principal.
func (c *Customer) Linked() *auth.LinkedProfile {
	return &auth.LinkedProfile{ID: c.ID, CompanyName: c.CompanyName, Status: string(c.Status)}
}

// CheckTransition validates a plain status update of c to the target status.
// A profile that was never approved cannot become active this way, whatever
// state it passed through since creation, and no update may move a profile
// back into pending_approval.
func CheckTransition(c *Customer, to Status) error {
	if !to.Valid() || to == StatusPendingApproval {
		return httpx.Invalid("status", "Status must be one of: active, inactive, suspended")
	}
	if to == StatusActive && !c.Approved() {
		return ErrApprovalRequired
	}
	return nil
}

// CheckApprove validates the approve action. Any profile without approval
// metadata can be approved, including one moved out of pending_approval.
func CheckApprove(c *Customer) error {
	if c.Approved() {
		return ErrAlreadyApproved
	}
	return nil
}

// PermissionForStatus names the permission a plain update to status needs.
// Suspension is a distinct action from ordinary edits.
func PermissionForStatus(to Status) rbac.Permission {
	if to == StatusSuspended {
		return rbac.PermCustomerSuspend
	}
	return rbac.PermCustomerUpdate
}
