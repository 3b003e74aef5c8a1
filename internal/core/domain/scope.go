package domain

// Scope is a row predicate restricting which records an operation may see or
// mutate. For customers the owner is the created_by identity; for identities
// the owner is the identity itself.
//
// The zero Scope matches nothing.
type Scope struct {
	all     bool
	ownerID string
}

// Unrestricted returns a scope matching every row.
func Unrestricted() Scope {
	return Scope{all: true}
}

// OwnedBy returns a scope matching rows owned by ownerID.
func OwnedBy(ownerID string) Scope {
	return Scope{ownerID: ownerID}
}

// IsUnrestricted reports whether the scope matches every row.
func (s Scope) IsUnrestricted() bool { return s.all }

// OwnerID is the owner rows must match when the scope is restricted.
func (s Scope) OwnerID() string { return s.ownerID }

// Empty reports whether the scope matches nothing.
func (s Scope) Empty() bool { return !s.all && s.ownerID == "" }

// Permits reports whether a row owned by ownerID falls inside the scope.
func (s Scope) Permits(ownerID string) bool {
	if s.all {
		return true
	}
	return s.ownerID != "" && s.ownerID == ownerID
}
