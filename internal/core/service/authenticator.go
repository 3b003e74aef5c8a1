package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

// Authenticator resolves the caller of a request from its bearer token.
//
// The token only proves who the caller was at sign-in. Role and display
// fields always come from a fresh read of the identity, so role changes and
// deletions apply before the token expires.
type Authenticator struct {
	tokens     ports.TokenVerifier
	identities ports.IdentityRepository
	log        zerolog.Logger
}

func NewAuthenticator(tokens ports.TokenVerifier, identities ports.IdentityRepository, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, identities: identities, log: log}
}

// Authenticate validates an Authorization header value and returns the
// current Principal.
func (a *Authenticator) Authenticate(ctx context.Context, rawHeader string) (domain.Principal, error) {
	token, err := bearerToken(rawHeader)
	if err != nil {
		return domain.Principal{}, err
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
			return domain.Principal{}, err
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidOrExpiredToken, err)
	}
	if claims.IdentityID == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrInvalidOrExpiredToken)
	}

	identity, err := a.identities.Get(ctx, domain.OwnedBy(claims.IdentityID), claims.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.log.Warn().Str("user_id", claims.IdentityID).Msg("token subject no longer exists")
			return domain.Principal{}, fmt.Errorf("%w: identity no longer exists", domain.ErrInvalidOrExpiredToken)
		}
		return domain.Principal{}, err
	}

	if identity.Role != claims.Role {
		a.log.Debug().
			Str("user_id", identity.ID).
			Str("token_role", string(claims.Role)).
			Str("current_role", string(identity.Role)).
			Msg("role changed since token issuance")
	}

	return domain.PrincipalFrom(identity), nil
}

// bearerToken extracts the token from a "Bearer <token>" header value. Any
// other shape means no bearer credential was presented.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingCredential
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("%w: authorization header must use the Bearer scheme", domain.ErrMissingCredential)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingCredential
	}
	return token, nil
}
