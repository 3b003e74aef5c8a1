// Package token signs and verifies HS256 session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

const issuer = "records-api"

// ErrSecretTooShort is returned when the signing key is under MinSecretLength bytes.
var ErrSecretTooShort = errors.New("jwt secret too short")

// MinSecretLength is the minimum HS256 key length accepted.
const MinSecretLength = 32

// Claims is the JWT payload. Role is informational only.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager implements ports.TokenManager with a process-wide HMAC key.
type Manager struct {
	secret []byte
	now    func() time.Time
}

func NewManager(secret string) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrSecretTooShort, MinSecretLength)
	}
	return &Manager{secret: []byte(secret), now: time.Now}, nil
}

// Sign mints a token expiring ttl after claims.IssuedAt.
func (m *Manager) Sign(claims ports.SessionClaims, ttl time.Duration) (string, error) {
	issuedAt := claims.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = m.now()
	}

	c := Claims{
		Username: claims.Username,
		Role:     string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   claims.IdentityID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the HS256 signature and expiry. Every failure wraps
// domain.ErrInvalidOrExpiredToken.
func (m *Manager) Verify(tokenString string) (ports.SessionClaims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return ports.SessionClaims{}, fmt.Errorf("%w: %v", domain.ErrInvalidOrExpiredToken, err)
	}
	if c.Subject == "" {
		return ports.SessionClaims{}, fmt.Errorf("%w: missing subject", domain.ErrInvalidOrExpiredToken)
	}

	out := ports.SessionClaims{
		IdentityID: c.Subject,
		Username:   c.Username,
		Role:       domain.Role(c.Role),
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
