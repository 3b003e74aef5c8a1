package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
	// dummyPassword is hashed once and verified against when a username is
	// unknown, so both failure paths do one hash verification.
	dummyPassword = "records-api-dummy-password"
)

// AuthService verifies credentials, issues session tokens and handles public
// self-registration.
type AuthService struct {
	identities ports.IdentityRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenSigner
	tokenTTL   time.Duration
	log        zerolog.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	identities ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenSigner,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Verify checks a username and password pair. Unknown usernames and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*domain.Identity, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return identity, nil
}

// Issue mints a session token for identity. Expiry is absolute.
func (s *AuthService) Issue(identity *domain.Identity) (string, time.Time, error) {
	issuedAt := s.now()
	claims := ports.SessionClaims{
		IdentityID: identity.ID,
		Username:   identity.Username,
		Role:       identity.Role,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(s.tokenTTL),
	}

	token, err := s.tokens.Sign(claims, s.tokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, claims.ExpiresAt, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	identity, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.Issue(identity)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("user signed in")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// Register creates a customer-viewer identity. It is the only write path
// open to unauthenticated callers and never grants a staff role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	identity, err := newIdentity(s.hasher, s.now(), ports.CreateUserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      domain.RoleCustomer,
	})
	if err != nil {
		return nil, err
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("hash dummy password")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// newIdentity validates input and builds an identity with a hashed password.
func newIdentity(hasher ports.PasswordHasher, now time.Time, in ports.CreateUserInput) (*domain.Identity, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)

	switch {
	case len(username) < 3 || len(username) > 50:
		return nil, domain.Invalid("username must be between 3 and 50 characters")
	case strings.ContainsAny(username, " \t\r\n"):
		return nil, domain.Invalid("username must not contain whitespace")
	case !strings.Contains(email, "@"):
		return nil, domain.Invalid("email must be a valid email")
	case len(in.Password) < minPasswordLength:
		return nil, domain.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	case !in.Role.Valid():
		return nil, domain.Invalid("role must be one of: admin employee customer")
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &domain.Identity{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
