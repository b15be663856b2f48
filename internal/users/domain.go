package users

import (
	"github.com/contracthub/contracthub/internal/platform/httpx"
)

var (
	ErrNotFound       = httpx.NewError(httpx.ErrNotFound, "user not found")
	ErrSelfRole       = httpx.NewError(httpx.ErrConflict, "you cannot change your own role")
	ErrSelfDeactivate = httpx.NewError(httpx.ErrConflict, "you cannot deactivate your own account")
	ErrSelfDelete     = httpx.NewError(httpx.ErrConflict, "you cannot delete your own account")
	ErrCustomerRole   = httpx.NewError(httpx.ErrConflict, "customer accounts are managed through portal access")
	ErrHasHistory     = httpx.NewError(httpx.ErrConflict, "user has recorded activity and cannot be deleted; deactivate it instead")
)

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	Role     string `json:"role" validate:"required"`
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ActiveRequest activates or deactivates a user.
type ActiveRequest struct {
	IsActive *bool `json:"isActive" label:"Active flag" validate:"required"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	Search string
	Role   string
	Active *bool
	Limit  int
	Offset int
}
