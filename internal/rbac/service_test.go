package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportRolePermissions(t *testing.T) {
	assert.False(t, HasPermission(RoleSupport, "customer.delete"))
	assert.True(t, HasPermission(RoleSupport, "po.approve"))

	expected := []Permission{
		"contract.read", "contract.update", "customer.read", "customer.update",
		"po.approve", "po.read", "po.reject", "product.read", "reseller.read",
	}
	assert.Equal(t, expected, PermissionsFor(RoleSupport))
}

func TestEveryRoleHasTableEntry(t *testing.T) {
	for _, role := range Roles() {
		_, ok := rolePermissions[role]
		assert.Truef(t, ok, "role %s missing from table", role)
	}
	assert.Empty(t, PermissionsFor(RoleCustomer))
}

func TestHasPermissionFailsClosed(t *testing.T) {
	assert.False(t, HasPermission("root", PermCustomerRead))
	assert.False(t, HasPermission("", PermCustomerRead))
	assert.False(t, HasPermission(RoleAdmin, "customer.teleport"))
	assert.False(t, HasPermission(RoleCustomer, PermContractRead))
	assert.Empty(t, PermissionsFor("root"))
	assert.NotNil(t, PermissionsFor("root"))
}

func TestPermissionsOutsideSetAreDenied(t *testing.T) {
	for _, role := range append(Roles(), Role("ghost")) {
		granted := make(map[Permission]bool)
		for _, p := range PermissionsFor(role) {
			granted[p] = true
		}
		for _, p := range AllPermissions() {
			assert.Equalf(t, granted[p], HasPermission(role, p), "role %s permission %s", role, p)
		}
	}
}

func TestPermissionsForIsSubsetOfUniverseAndStable(t *testing.T) {
	known := make(map[Permission]bool)
	for _, p := range AllPermissions() {
		known[p] = true
	}
	for _, role := range Roles() {
		first := PermissionsFor(role)
		for _, p := range first {
			assert.Truef(t, known[p], "role %s has unknown permission %s", role, p)
		}
		if len(first) > 0 {
			first[0] = "tampered.value"
		}
		assert.NotContains(t, PermissionsFor(role), Permission("tampered.value"))
		assert.Equal(t, PermissionsFor(role), PermissionsFor(role))
	}
}

func TestAdminHoldsUniverse(t *testing.T) {
	assert.ElementsMatch(t, AllPermissions(), PermissionsFor(RoleAdmin))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Manager ")
	require.True(t, ok)
	assert.Equal(t, RoleManager, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	assert.True(t, RoleFinance.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
	assert.False(t, Role("ghost").IsStaff())
	assert.Equal(t, "contract", PermContractApprove.Namespace())
}
