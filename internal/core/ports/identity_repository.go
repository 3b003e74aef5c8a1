package ports

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
)

// ListIdentitiesFilter carries the query parameters for listing identities.
// Scope is always set by the service layer.
type ListIdentitiesFilter struct {
	Scope  domain.Scope
	Role   domain.Role // empty = any role
	Search string      // case-insensitive substring over username, email and names
	Page   domain.PageRequest
}

// IdentityRepository persists identities. Every method taking a Scope applies
// it as part of the query; rows outside the scope behave as absent
// (domain.ErrNotFound).
type IdentityRepository interface {
	// Create inserts a new identity. Username or email collisions return
	// domain.ErrConflict.
	Create(ctx context.Context, identity *domain.Identity) error
	// FindByUsername is an exact, case-sensitive lookup used for sign-in.
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	Get(ctx context.Context, scope domain.Scope, id string) (*domain.Identity, error)
	List(ctx context.Context, filter ListIdentitiesFilter) ([]*domain.Identity, int64, error)
	// Update loads the scoped row, lets apply mutate it and writes it back in
	// one operation. An error from apply aborts the write.
	Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Identity) error) (*domain.Identity, error)
	// Delete removes the scoped row after guard accepts it. Identities still
	// referenced by customers return domain.ErrInvalidOperation.
	Delete(ctx context.Context, scope domain.Scope, id string, guard func(*domain.Identity) error) error
	// CountByRole counts identities holding role; empty role counts all.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
