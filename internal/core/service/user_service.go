package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/policy"
	"github.com/bizledger/records-api/internal/core/ports"
)

// UserService is the scoped accessor for identities. Administrators see every
// identity; everyone else sees only their own.
type UserService struct {
	repo   ports.IdentityRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.IdentityRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) List(ctx context.Context, p domain.Principal, in ports.ListUsersInput) (*ports.ListResult[*domain.Identity], error) {
	if err := policy.Require(p.Role, domain.CapUsersManage); err != nil {
		return nil, err
	}
	scope, err := policy.IdentityScope(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if err := in.Page.Validate(); err != nil {
		return nil, err
	}
	if in.Role != "" && !in.Role.Valid() {
		return nil, domain.Invalid("role must be one of: admin employee customer")
	}

	items, total, err := s.repo.List(ctx, ports.ListIdentitiesFilter{
		Scope:  scope,
		Role:   in.Role,
		Search: strings.TrimSpace(in.Search),
		Page:   in.Page,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListResult[*domain.Identity]{
		Items:      items,
		Total:      total,
		Page:       in.Page.Page,
		PageSize:   in.Page.PageSize,
		TotalPages: in.Page.TotalPages(total),
	}, nil
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Identity, error) {
	scope, err := policy.IdentityScope(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *UserService) Create(ctx context.Context, p domain.Principal, in ports.CreateUserInput) (*domain.Identity, error) {
	if err := policy.Require(p.Role, domain.CapUsersManage); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleEmployee
	}

	identity, err := newIdentity(s.hasher, s.now(), in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Str("created_by", p.ID).Msg("user created")
	return identity, nil
}

// Update applies a partial update. Changing one's own password requires the
// current password; role changes need the roles:assign capability and are
// never allowed on the caller's own identity.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*domain.Identity, error) {
	if err := policy.Require(p.Role, domain.CapProfileUpdate); err != nil {
		return nil, err
	}
	scope, err := policy.IdentityScope(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrNotFound
	}
	self := id == p.ID

	if in.Role != nil {
		if err := policy.Require(p.Role, domain.CapRolesAssign); err != nil {
			return nil, err
		}
		if self {
			return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrInvalidOperation)
		}
		if !in.Role.Valid() {
			return nil, domain.Invalid("role must be one of: admin employee customer")
		}
	}

	var firstName, lastName, email *string
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		firstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		lastName = &v
	}
	if in.Email != nil {
		v := domain.NormalizeEmail(*in.Email)
		if !strings.Contains(v, "@") {
			return nil, domain.Invalid("email must be a valid email")
		}
		email = &v
	}

	var newHash string
	if in.NewPassword != "" {
		if len(in.NewPassword) < minPasswordLength {
			return nil, domain.Invalid(fmt.Sprintf("new_password must be at least %d characters", minPasswordLength))
		}
		if self && in.CurrentPassword == "" {
			return nil, domain.Invalid("current_password is required to change your password")
		}
		if !self {
			if err := policy.Require(p.Role, domain.CapPasswordsManage); err != nil {
				return nil, err
			}
		}
		if newHash, err = s.hasher.Hash(in.NewPassword); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	updated, err := s.repo.Update(ctx, scope, id, func(i *domain.Identity) error {
		if newHash != "" && self && !s.hasher.Verify(in.CurrentPassword, i.PasswordHash) {
			return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidOperation)
		}
		if firstName != nil {
			i.FirstName = *firstName
		}
		if lastName != nil {
			i.LastName = *lastName
		}
		if email != nil {
			i.Email = *email
		}
		if in.Role != nil {
			i.Role = *in.Role
		}
		if newHash != "" {
			i.PasswordHash = newHash
		}
		i.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := s.logger.Info().Str("user_id", id).Str("updated_by", p.ID)
	if in.Role != nil {
		ev = ev.Str("role", string(*in.Role))
	}
	ev.Bool("password_changed", newHash != "").Msg("user updated")
	return updated, nil
}

// Delete removes an identity. Administrators cannot delete themselves or
// other administrators.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := policy.Require(p.Role, domain.CapUsersManage); err != nil {
		return err
	}
	if id == p.ID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidOperation)
	}
	scope, err := policy.IdentityScope(p.Role, p.ID)
	if err != nil {
		return err
	}
	if id == "" {
		return domain.ErrNotFound
	}

	err = s.repo.Delete(ctx, scope, id, func(i *domain.Identity) error {
		if i.Role == domain.RoleAdmin {
			return fmt.Errorf("%w: administrators cannot be deleted", domain.ErrInvalidOperation)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("deleted_by", p.ID).Msg("user deleted")
	return nil
}
