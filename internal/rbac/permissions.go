package rbac

// Permission universe.
const (
	PermCustomerRead        Permission = "customer.read"
	PermCustomerCreate      Permission = "customer.create"
	PermCustomerUpdate      Permission = "customer.update"
	PermCustomerDelete      Permission = "customer.delete"
	PermCustomerApprove     Permission = "customer.approve"
	PermCustomerSuspend     Permission = "customer.suspend"
	PermCustomerGrantAccess Permission = "customer.grant_access"

	PermContractRead    Permission = "contract.read"
	PermContractCreate  Permission = "contract.create"
	PermContractUpdate  Permission = "contract.update"
	PermContractDelete  Permission = "contract.delete"
	PermContractApprove Permission = "contract.approve"

	PermProductRead   Permission = "product.read"
	PermProductCreate Permission = "product.create"
	PermProductUpdate Permission = "product.update"
	PermProductDelete Permission = "product.delete"

	PermResellerRead   Permission = "reseller.read"
	PermResellerCreate Permission = "reseller.create"
	PermResellerUpdate Permission = "reseller.update"
	PermResellerDelete Permission = "reseller.delete"

	PermPORead    Permission = "po.read"
	PermPOApprove Permission = "po.approve"
	PermPOReject  Permission = "po.reject"

	PermUserRead   Permission = "user.read"
	PermUserCreate Permission = "user.create"
	PermUserUpdate Permission = "user.update"
	PermUserDelete Permission = "user.delete"
)

var universe = []Permission{
	PermCustomerRead, PermCustomerCreate, PermCustomerUpdate, PermCustomerDelete,
	PermCustomerApprove, PermCustomerSuspend, PermCustomerGrantAccess,
	PermContractRead, PermContractCreate, PermContractUpdate, PermContractDelete, PermContractApprove,
	PermProductRead, PermProductCreate, PermProductUpdate, PermProductDelete,
	PermResellerRead, PermResellerCreate, PermResellerUpdate, PermResellerDelete,
	PermPORead, PermPOApprove, PermPOReject,
	PermUserRead, PermUserCreate, PermUserUpdate, PermUserDelete,
}

// rolePermissions is the static role table. Every set is written out in full;
// nothing is inherited between roles. Review it whenever a resource or action
// is added.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: universe,
	RoleManager: {
		PermCustomerRead, PermCustomerCreate, PermCustomerUpdate,
		PermCustomerApprove, PermCustomerSuspend, PermCustomerGrantAccess,
		PermContractRead, PermContractCreate, PermContractUpdate, PermContractApprove,
		PermProductRead, PermProductCreate, PermProductUpdate,
		PermResellerRead, PermResellerCreate, PermResellerUpdate,
		PermPORead, PermPOApprove, PermPOReject,
		PermUserRead,
	},
	RoleSales: {
		PermCustomerRead, PermCustomerCreate, PermCustomerUpdate,
		PermContractRead, PermContractCreate, PermContractUpdate,
		PermProductRead,
		PermResellerRead,
		PermPORead,
	},
	RoleSupport: {
		PermCustomerRead, PermCustomerUpdate,
		PermContractRead, PermContractUpdate,
		PermProductRead,
		PermResellerRead,
		PermPORead, PermPOApprove, PermPOReject,
	},
	RoleFinance: {
		PermCustomerRead,
		PermContractRead, PermContractApprove,
		PermProductRead,
		PermResellerRead,
		PermPORead, PermPOApprove, PermPOReject,
	},
	RoleViewer: {
		PermCustomerRead,
		PermContractRead,
		PermProductRead,
		PermResellerRead,
		PermPORead,
	},
	RoleUser: {
		PermCustomerRead,
		PermContractRead,
		PermProductRead,
	},
	// Customers reach their own records through ownership checks instead.
	RoleCustomer: {},
}

// AllPermissions returns the full permission universe.
func AllPermissions() []Permission {
	out := make([]Permission, len(universe))
	copy(out, universe)
	return out
}
