package auth

import (
	"time"

	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// Resolution failures. Each one is reported to the caller verbatim.
var (
	ErrCredentialMissing  = httpx.NewError(httpx.ErrUnauthenticated, "authentication required")
	ErrCredentialInvalid  = httpx.NewError(httpx.ErrUnauthorized, "invalid or expired token")
	ErrPrincipalInactive  = httpx.NewError(httpx.ErrUnauthorized, "user not found or inactive")
	ErrInvalidCredentials = httpx.NewError(httpx.ErrUnauthorized, "invalid email or password")
)

// ErrEmailTaken reports a duplicate account email.
var ErrEmailTaken = httpx.NewError(httpx.ErrConflict, "email already registered")

// User is the stored account record.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         rbac.Role  `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// LinkedProfile is the customer profile attached to a customer-role principal.
type LinkedProfile struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
	Status      string `json:"status"`
}

// Principal is the authenticated actor of one request. Role and Active always
// come from the store of record, never from the token.
type Principal struct {
	ID      int64          `json:"id"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Role    rbac.Role      `json:"role"`
	Active  bool           `json:"active"`
	Profile *LinkedProfile `json:"customerProfile,omitempty"`

	TokenID        string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
}

// Can reports whether the principal's current role grants perm.
func (p *Principal) Can(perm rbac.Permission) bool {
	return p != nil && p.Active && rbac.HasPermission(p.Role, perm)
}

// IsStaff reports whether the principal is an internal user.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Role.IsStaff()
}

// CustomerID returns the linked customer profile id, if any.
func (p *Principal) CustomerID() (int64, bool) {
	if p == nil || p.Role != rbac.RoleCustomer || p.Profile == nil {
		return 0, false
	}
	return p.Profile.ID, true
}

func principalFromUser(u *User) *Principal {
	return &Principal{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Active: u.IsActive,
	}
}
