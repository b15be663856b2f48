package rbac

import "strings"

// Role is the coarse-grained category assigned to every user.
type Role string

// Known roles. The set is closed; anything else parses as invalid.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleSales    Role = "sales"
	RoleSupport  Role = "support"
	RoleFinance  Role = "finance"
	RoleViewer   Role = "viewer"
	RoleUser     Role = "user"
	RoleCustomer Role = "customer"
)

var allRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleSales,
	RoleSupport,
	RoleFinance,
	RoleViewer,
	RoleUser,
	RoleCustomer,
}

// Roles returns every known role in display order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole converts a stored or submitted value into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	for _, known := range allRoles {
		if role == known {
			return role, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// IsStaff reports whether the role belongs to internal staff. Customers are the
// only non-staff role.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleCustomer
}

func (r Role) String() string {
	return string(r)
}

// Permission identifies one resource/action pair, e.g. "customer.read".
type Permission string

func (p Permission) String() string {
	return string(p)
}

// Namespace returns the resource part of the permission.
func (p Permission) Namespace() string {
	ns, _, _ := strings.Cut(string(p), ".")
	return ns
}
