package customers

import "github.com/contracthub/contracthub/internal/auth"

// CreateCustomerRequest is the payload for creating a profile.
type CreateCustomerRequest struct {
	CompanyName string  `json:"companyName" validate:"required,max=200"`
	ContactName string  `json:"contactName" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	TaxID       *string `json:"taxId,omitempty" label:"Tax ID" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty"`
	AssignedTo  *int64  `json:"assignedTo,omitempty" validate:"omitempty,gt=0"`
	Status      Status  `json:"status,omitempty" validate:"omitempty,oneof=active inactive pending_approval"`
}

// UpdateCustomerRequest carries the editable fields. Status has its own
// endpoint.
type UpdateCustomerRequest struct {
	CompanyName *string `json:"companyName,omitempty" validate:"omitempty,max=200"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	TaxID       *string `json:"taxId,omitempty" label:"Tax ID" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty"`
	AssignedTo  *int64  `json:"assignedTo,omitempty" validate:"omitempty,gt=0"`
}

// Empty reports whether the request changes nothing.
func (r UpdateCustomerRequest) Empty() bool {
	return r.CompanyName == nil && r.ContactName == nil && r.Email == nil && r.Phone == nil &&
		r.Address == nil && r.TaxID == nil && r.Notes == nil && r.AssignedTo == nil
}

// StatusRequest changes the profile status.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// GrantAccessRequest creates the portal account for a profile.
type GrantAccessRequest struct {
	CustomerID int64  `json:"customerId" validate:"required,gt=0"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	Name       string `json:"name,omitempty" validate:"omitempty,max=200"`
}

// ListFilter narrows a listing.
type ListFilter struct {
	Search     string
	Status     Status
	AssignedTo int64
	Limit      int
	Offset     int
}

// PortalAccess is the result of granting portal access.
type PortalAccess struct {
	User     *auth.User `json:"user"`
	Customer *Customer  `json:"customer"`
}
