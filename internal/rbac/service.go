package rbac

import "sort"

var lookup = buildLookup()

func buildLookup() map[Role]map[Permission]struct{} {
	out := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		out[role] = set
	}
	return out
}

// HasPermission reports whether role holds permission. Unknown roles and
// unknown permissions simply yield false.
func HasPermission(role Role, permission Permission) bool {
	set, ok := lookup[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// HasAny reports whether role holds at least one of the permissions.
func HasAny(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// PermissionsFor returns a sorted copy of the role's permission set, or an empty
// slice for an unrecognised role.
func PermissionsFor(role Role) []Permission {
	set, ok := lookup[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Table returns the complete role table keyed by role name.
func Table() map[Role][]Permission {
	out := make(map[Role][]Permission, len(allRoles))
	for _, role := range allRoles {
		out[role] = PermissionsFor(role)
	}
	return out
}
