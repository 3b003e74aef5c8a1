package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/policy"
	"github.com/bizledger/records-api/internal/core/ports"
)

// CustomerService is the single path to customer records. Every operation
// derives the caller's scope first and passes it down to the repository, so
// rows outside the scope are never read or written.
type CustomerService struct {
	repo   ports.CustomerRepository
	idem   ports.IdempotencyStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewCustomerService builds the service. idem may be nil, which disables
// Idempotency-Key replays.
func NewCustomerService(repo ports.CustomerRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		idem:   idem,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *CustomerService) List(ctx context.Context, p domain.Principal, in ports.ListInput) (*ports.ListResult[*domain.Customer], error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if err := in.Page.Validate(); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, ports.ListCustomersFilter{
		Scope:  scope,
		Search: strings.TrimSpace(in.Search),
		Page:   in.Page,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListResult[*domain.Customer]{
		Items:      items,
		Total:      total,
		Page:       in.Page.Page,
		PageSize:   in.Page.PageSize,
		TotalPages: in.Page.TotalPages(total),
	}, nil
}

func (s *CustomerService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Customer, error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, scope, id)
}

// Create stores a customer owned by the caller. With an idempotency key the
// key is claimed before the insert: a key already completed by the same caller
// replays the earlier customer, and a key still in flight is a conflict.
func (s *CustomerService) Create(ctx context.Context, p domain.Principal, in ports.CreateCustomerInput) (*ports.CreateCustomerResult, error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}

	fields := in.Fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	namespace := "customers:" + p.ID
	held, existing, err := s.claim(ctx, scope, namespace, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ports.CreateCustomerResult{Customer: existing, AlreadyExisted: true}, nil
	}

	now := s.now()
	customer := &domain.Customer{
		CreatedBy:     p.ID,
		CreatedByName: p.DisplayName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	fields.Apply(customer)

	if err := s.repo.Create(ctx, customer); err != nil {
		if held {
			if rerr := s.idem.Release(ctx, namespace, in.IdempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	s.logger.Info().Str("customer_id", customer.ID).Str("created_by", p.ID).Msg("customer created")

	if held {
		if err := s.idem.Complete(ctx, namespace, in.IdempotencyKey, customer.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to record idempotency key")
		}
	}

	return &ports.CreateCustomerResult{Customer: customer}, nil
}

// claim reserves key for this create. held reports whether the caller owns
// the key and must complete or release it; existing is the customer to
// replay. Store failures are logged and the create proceeds unguarded.
func (s *CustomerService) claim(ctx context.Context, scope domain.Scope, namespace, key string) (held bool, existing *domain.Customer, err error) {
	if key == "" || s.idem == nil {
		return false, nil, nil
	}

	id, claimed, err := s.idem.Claim(ctx, namespace, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed")
		return false, nil, nil
	}
	if claimed {
		return true, nil, nil
	}
	if id == "" {
		return false, nil, fmt.Errorf("%w: a request with this idempotency key is still in progress", domain.ErrConflict)
	}

	existing, err = s.repo.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The remembered customer is gone; create a new one under the key.
			return true, nil, nil
		}
		return false, nil, err
	}

	s.logger.Info().Str("idempotency_key", key).Str("customer_id", id).Msg("idempotent replay")
	return false, existing, nil
}

func (s *CustomerService) Update(ctx context.Context, p domain.Principal, id string, in domain.CustomerFields) (*domain.Customer, error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrNotFound
	}

	fields := in.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, scope, id, func(c *domain.Customer) error {
		fields.Apply(c)
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("customer_id", id).Str("updated_by", p.ID).Msg("customer updated")
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, p domain.Principal, id string) error {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return err
	}
	if id == "" {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}

	s.logger.Info().Str("customer_id", id).Str("deleted_by", p.ID).Msg("customer deleted")
	return nil
}
