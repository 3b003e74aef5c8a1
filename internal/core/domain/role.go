package domain

import "fmt"

// Role is the closed set of roles an identity can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Roles lists every role in privilege order. It doubles as the reference
// data seeded into the roles table.
var Roles = []Role{RoleAdmin, RoleEmployee, RoleCustomer}

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Label is the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleEmployee:
		return "Employee"
	case RoleCustomer:
		return "Customer viewer"
	}
	return "Unknown"
}

// Capability is a single permission a role may carry.
type Capability string

const (
	CapCustomersRead   Capability = "customers:read"
	CapCustomersWrite  Capability = "customers:write"
	CapCustomersAll    Capability = "customers:all"
	CapUsersManage     Capability = "users:manage"
	CapRolesAssign     Capability = "roles:assign"
	CapEmployeeStats   Capability = "stats:employees"
	CapProfileRead     Capability = "profile:read"
	CapProfileUpdate   Capability = "profile:update"
	CapPasswordsManage Capability = "passwords:manage"
)

// roleCapabilities is the single source of truth for what each role may do.
// Roles are reference data and this table is never mutated at runtime.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapCustomersRead, CapCustomersWrite, CapCustomersAll,
		CapUsersManage, CapRolesAssign, CapEmployeeStats,
		CapProfileRead, CapProfileUpdate, CapPasswordsManage,
	},
	RoleEmployee: {
		CapCustomersRead, CapCustomersWrite,
		CapProfileRead, CapProfileUpdate,
	},
	RoleCustomer: {
		CapProfileRead,
	},
}

// Can reports whether the role carries the capability. Unknown roles carry none.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}
