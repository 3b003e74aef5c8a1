package ports

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
)

// ListInput carries the list endpoint parameters shared by every collection.
type ListInput struct {
	Page   domain.PageRequest
	Search string
}

// ListResult is one page of a scoped list.
type ListResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// CreateCustomerInput carries the data needed to create a customer.
type CreateCustomerInput struct {
	Fields         domain.CustomerFields
	IdempotencyKey string
}

// CreateCustomerResult is returned after creating a customer.
type CreateCustomerResult struct {
	Customer *domain.Customer
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// CustomerService is the scoped accessor for customer records.
type CustomerService interface {
	List(ctx context.Context, p domain.Principal, in ListInput) (*ListResult[*domain.Customer], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Customer, error)
	Create(ctx context.Context, p domain.Principal, in CreateCustomerInput) (*CreateCustomerResult, error)
	Update(ctx context.Context, p domain.Principal, id string, fields domain.CustomerFields) (*domain.Customer, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
