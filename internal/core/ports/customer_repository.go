package ports

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
)

// ListCustomersFilter carries all query parameters for listing customers.
// Scope is always enforced by the service layer (RBAC).
type ListCustomersFilter struct {
	Scope  domain.Scope
	Search string // optional: case-insensitive substring over the searchable fields
	Page   domain.PageRequest
}

// CustomerRepository defines persistence operations for customers. The scope
// predicate is part of every query, so a row outside it is indistinguishable
// from a missing one (domain.ErrNotFound).
type CustomerRepository interface {
	// Create inserts a customer. An email already used by another customer
	// returns domain.ErrConflict.
	Create(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, scope domain.Scope, id string) (*domain.Customer, error)
	// List returns a page of customers matching filter, newest first, and the
	// total count of the filtered set.
	List(ctx context.Context, filter ListCustomersFilter) ([]*domain.Customer, int64, error)
	Count(ctx context.Context, scope domain.Scope) (int64, error)
	// Update loads the scoped row, lets apply mutate it and writes it back in
	// one operation.
	Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Customer) error) (*domain.Customer, error)
	Delete(ctx context.Context, scope domain.Scope, id string) error
}
