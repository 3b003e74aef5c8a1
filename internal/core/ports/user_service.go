package ports

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
)

// ListUsersInput adds a role filter to the shared list parameters.
type ListUsersInput struct {
	ListInput
	Role domain.Role
}

// CreateUserInput carries an administrator-created identity.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Role            *domain.Role
	CurrentPassword string
	NewPassword     string
}

// UserService is the scoped accessor for identity records.
type UserService interface {
	List(ctx context.Context, p domain.Principal, in ListUsersInput) (*ListResult[*domain.Identity], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Identity, error)
	Create(ctx context.Context, p domain.Principal, in CreateUserInput) (*domain.Identity, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateUserInput) (*domain.Identity, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
