// Package seed creates identities at startup from a YAML file or a bootstrap
// administrator password.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

// BootstrapUsername is the login name of the administrator created on an
// empty store.
const BootstrapUsername = "admin"

type usersFile struct {
	Users []userEntry `yaml:"users"`
}

type userEntry struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type Seeder struct {
	identities ports.IdentityRepository
	hasher     ports.PasswordHasher
	logger     zerolog.Logger
	now        func() time.Time
}

func NewSeeder(identities ports.IdentityRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *Seeder {
	return &Seeder{identities: identities, hasher: hasher, logger: logger, now: time.Now}
}

// SeedFromFile creates the identities listed in the YAML file at path.
// Existing usernames and entries missing a username or password are skipped.
// It returns the number of identities created.
func (s *Seeder) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return s.Seed(ctx, data)
}

// Seed applies YAML seed data.
func (s *Seeder) Seed(ctx context.Context, data []byte) (int, error) {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for _, u := range uf.Users {
		if strings.TrimSpace(u.Username) == "" || u.Password == "" {
			continue
		}
		ok, err := s.ensure(ctx, u)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Bootstrap creates the administrator account when the store holds no
// identity at all. It reports whether an account was created.
func (s *Seeder) Bootstrap(ctx context.Context, password string) (bool, error) {
	if password == "" {
		return false, nil
	}

	n, err := s.identities.CountByRole(ctx, "")
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	return s.ensure(ctx, userEntry{
		Username:  BootstrapUsername,
		Email:     "admin@localhost",
		Password:  password,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      string(domain.RoleAdmin),
	})
}

func (s *Seeder) ensure(ctx context.Context, u userEntry) (bool, error) {
	username := strings.TrimSpace(u.Username)

	if _, err := s.identities.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	role := domain.RoleEmployee
	if u.Role != "" {
		parsed, err := domain.ParseRole(u.Role)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", username, err)
		}
		role = parsed
	}

	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		return false, fmt.Errorf("seed user %s: hash password: %w", username, err)
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		Username:     username,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(u.FirstName),
		LastName:     strings.TrimSpace(u.LastName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if identity.Email == "" {
		identity.Email = username + "@localhost"
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn().Str("username", username).Msg("seed user conflicts with an existing identity, skipped")
			return false, nil
		}
		return false, fmt.Errorf("seed user %s: %w", username, err)
	}

	s.logger.Info().Str("username", username).Str("role", string(role)).Msg("seeded identity")
	return true, nil
}
