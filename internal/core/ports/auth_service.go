package ports

import (
	"context"
	"time"

	"github.com/bizledger/records-api/internal/core/domain"
)

// RegisterInput carries a public self-registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginResult is returned by a successful sign-in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  *domain.Identity
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
}

// Authenticator turns an Authorization header value into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, rawHeader string) (domain.Principal, error)
}
