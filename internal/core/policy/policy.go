// Package policy centralizes every allow/deny decision. All functions are
// pure: they read the static capability table and never touch the store.
package policy

import (
	"fmt"

	"github.com/bizledger/records-api/internal/core/domain"
)

// EndpointClass is the coarse access class attached to a route.
type EndpointClass int

const (
	// AdminOnly routes accept administrators only.
	AdminOnly EndpointClass = iota + 1
	// StaffOnly routes accept administrators and employees.
	StaffOnly
	// SelfOnly routes accept any authenticated role; rows are then limited
	// to the caller's own identity unless the role is unrestricted.
	SelfOnly
)

var endpointRoles = map[EndpointClass][]domain.Role{
	AdminOnly: {domain.RoleAdmin},
	StaffOnly: {domain.RoleAdmin, domain.RoleEmployee},
	SelfOnly:  {domain.RoleAdmin, domain.RoleEmployee, domain.RoleCustomer},
}

func (c EndpointClass) String() string {
	switch c {
	case AdminOnly:
		return "admin_only"
	case StaffOnly:
		return "staff_only"
	case SelfOnly:
		return "self_only"
	}
	return fmt.Sprintf("endpoint_class(%d)", int(c))
}

// CanAccessEndpoint reports whether role may call routes of the given class.
// Unknown classes and roles are denied.
func CanAccessEndpoint(role domain.Role, class EndpointClass) bool {
	for _, r := range endpointRoles[class] {
		if r == role {
			return true
		}
	}
	return false
}

// ScopeFilter returns the row predicate for customer records: unrestricted
// for administrators, created_by == principalID for employees. Roles with no
// customer access are denied outright with ErrForbidden.
func ScopeFilter(role domain.Role, principalID string) (domain.Scope, error) {
	switch {
	case role.Can(domain.CapCustomersAll):
		return domain.Unrestricted(), nil
	case role.Can(domain.CapCustomersRead) && principalID != "":
		return domain.OwnedBy(principalID), nil
	}
	return domain.Scope{}, domain.ErrForbidden
}

// IdentityScope returns the row predicate for identity records:
// unrestricted for administrators, the caller's own row for everyone else.
func IdentityScope(role domain.Role, principalID string) (domain.Scope, error) {
	switch {
	case role.Can(domain.CapUsersManage):
		return domain.Unrestricted(), nil
	case role.Can(domain.CapProfileRead) && principalID != "":
		return domain.OwnedBy(principalID), nil
	}
	return domain.Scope{}, domain.ErrForbidden
}

// Require returns ErrForbidden unless role carries the capability.
func Require(role domain.Role, c domain.Capability) error {
	if role.Can(c) {
		return nil
	}
	return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, role, c)
}
