package ports

import (
	"time"

	"github.com/bizledger/records-api/internal/core/domain"
)

// PasswordHasher is the one-way hash primitive.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// SessionClaims are the facts embedded in a session token. Role is advisory:
// the authenticator always re-reads the identity.
type SessionClaims struct {
	IdentityID string
	Username   string
	Role       domain.Role
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TokenSigner mints a signed token valid for ttl from claims.IssuedAt.
type TokenSigner interface {
	Sign(claims SessionClaims, ttl time.Duration) (string, error)
}

// TokenVerifier checks signature and expiry and returns the embedded claims.
type TokenVerifier interface {
	Verify(token string) (SessionClaims, error)
}

// TokenManager signs and verifies session tokens.
type TokenManager interface {
	TokenSigner
	TokenVerifier
}
