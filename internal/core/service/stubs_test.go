package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Identity repository stub (mirrors the scoped SQL queries)
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Identity
	nextID int
	calls  int
	err    error // if set, every call returns this error

	// owns reports whether an identity still owns customer records.
	owns func(id string) bool
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	c := *i
	return &c
}

func (r *stubIdentityRepo) add(i *domain.Identity) *domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.ID == "" {
		r.nextID++
		i.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.byID[i.ID] = cloneIdentity(i)
	return i
}

func (r *stubIdentityRepo) collides(i *domain.Identity) bool {
	for _, other := range r.byID {
		if other.ID == i.ID {
			continue
		}
		if other.Username == i.Username || other.Email == i.Email {
			return true
		}
	}
	return false
}

func (r *stubIdentityRepo) Create(_ context.Context, i *domain.Identity) error {
	r.mu.Lock()
	r.calls++
	if r.err != nil {
		r.mu.Unlock()
		return r.err
	}
	if r.collides(i) {
		r.mu.Unlock()
		return domain.ErrConflict
	}
	r.mu.Unlock()
	r.add(i)
	return nil
}

func (r *stubIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, i := range r.byID {
		if i.Username == username {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubIdentityRepo) Get(_ context.Context, scope domain.Scope, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	i, ok := r.byID[id]
	if !ok || !scope.Permits(i.ID) {
		return nil, domain.ErrNotFound
	}
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) List(_ context.Context, f ports.ListIdentitiesFilter) ([]*domain.Identity, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*domain.Identity
	for _, i := range r.byID {
		if !f.Scope.Permits(i.ID) {
			continue
		}
		if f.Role != "" && i.Role != f.Role {
			continue
		}
		if f.Search != "" && !containsFold(f.Search, i.Username, i.Email, i.FirstName, i.LastName) {
			continue
		}
		matched = append(matched, cloneIdentity(i))
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].CreatedAt.After(matched[b].CreatedAt) })
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *stubIdentityRepo) Update(_ context.Context, scope domain.Scope, id string, apply func(*domain.Identity) error) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	current, ok := r.byID[id]
	if !ok || !scope.Permits(current.ID) {
		return nil, domain.ErrNotFound
	}
	next := cloneIdentity(current)
	if err := apply(next); err != nil {
		return nil, err
	}
	if r.collides(next) {
		return nil, domain.ErrConflict
	}
	r.byID[id] = cloneIdentity(next)
	return next, nil
}

func (r *stubIdentityRepo) Delete(_ context.Context, scope domain.Scope, id string, guard func(*domain.Identity) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	current, ok := r.byID[id]
	if !ok || !scope.Permits(current.ID) {
		return domain.ErrNotFound
	}
	if err := guard(cloneIdentity(current)); err != nil {
		return err
	}
	if r.owns != nil && r.owns(id) {
		return fmt.Errorf("%w: identity still owns customer records", domain.ErrInvalidOperation)
	}
	delete(r.byID, id)
	return nil
}

func (r *stubIdentityRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, i := range r.byID {
		if role == "" || i.Role == role {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Customer repository stub
// ---------------------------------------------------------------------------

type stubCustomerRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Customer
	nextID int
	calls  int
	err    error

	inserts int
	// beforeCreate runs ahead of each insert, outside the lock.
	beforeCreate func()
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byID: make(map[string]*domain.Customer)}
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	clone := *c
	return &clone
}

func (r *stubCustomerRepo) emailTaken(c *domain.Customer) bool {
	for _, other := range r.byID {
		if other.ID != c.ID && other.Email == c.Email {
			return true
		}
	}
	return false
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	if r.emailTaken(c) {
		return domain.ErrConflict
	}
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("cust-%d", r.nextID)
	}
	r.byID[c.ID] = cloneCustomer(c)
	r.inserts++
	return nil
}

func (r *stubCustomerRepo) Get(_ context.Context, scope domain.Scope, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byID[id]
	if !ok || !scope.Permits(c.CreatedBy) {
		return nil, domain.ErrNotFound
	}
	return cloneCustomer(c), nil
}

func (r *stubCustomerRepo) List(_ context.Context, f ports.ListCustomersFilter) ([]*domain.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*domain.Customer
	for _, c := range r.byID {
		if !f.Scope.Permits(c.CreatedBy) {
			continue
		}
		if f.Search != "" && !containsFold(f.Search, c.FirstName, c.LastName, c.Email, c.Phone, c.BusinessName) {
			continue
		}
		matched = append(matched, cloneCustomer(c))
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].CreatedAt.After(matched[b].CreatedAt) })
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (r *stubCustomerRepo) Count(_ context.Context, scope domain.Scope) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, c := range r.byID {
		if scope.Permits(c.CreatedBy) {
			n++
		}
	}
	return n, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, scope domain.Scope, id string, apply func(*domain.Customer) error) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	current, ok := r.byID[id]
	if !ok || !scope.Permits(current.CreatedBy) {
		return nil, domain.ErrNotFound
	}
	next := cloneCustomer(current)
	if err := apply(next); err != nil {
		return nil, err
	}
	if r.emailTaken(next) {
		return nil, domain.ErrConflict
	}
	r.byID[id] = cloneCustomer(next)
	return next, nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, scope domain.Scope, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	current, ok := r.byID[id]
	if !ok || !scope.Permits(current.CreatedBy) {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubCustomerRepo) ownedBy(identityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.CreatedBy == identityID {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// fakeHasher stores passwords with a visible prefix and counts verifications.
type fakeHasher struct {
	verifies int
}

func (h *fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (h *fakeHasher) Verify(plain, hash string) bool {
	h.verifies++
	return hash == "hashed:"+plain
}

// fakeTokens keeps issued claims in memory and honours expiry against now.
type fakeTokens struct {
	mu     sync.Mutex
	issued map[string]ports.SessionClaims
	now    func() time.Time
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		issued: make(map[string]ports.SessionClaims),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (f *fakeTokens) Sign(claims ports.SessionClaims, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims.ExpiresAt = claims.IssuedAt.Add(ttl)
	token := fmt.Sprintf("tok-%d", len(f.issued)+1)
	f.issued[token] = claims
	return token, nil
}

func (f *fakeTokens) Verify(token string) (ports.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.issued[token]
	if !ok {
		return ports.SessionClaims{}, errors.New("signature is invalid")
	}
	if !f.now().Before(claims.ExpiresAt) {
		return ports.SessionClaims{}, errors.New("token is expired")
	}
	return claims, nil
}

type stubIdempotency struct {
	mu       sync.Mutex
	values   map[string]string
	pending  map[string]bool
	claimErr error
	released int
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{values: make(map[string]string), pending: make(map[string]bool)}
}

func (s *stubIdempotency) Claim(_ context.Context, namespace, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return "", false, s.claimErr
	}
	k := namespace + "|" + key
	if v, ok := s.values[k]; ok {
		return v, false, nil
	}
	if s.pending[k] {
		return "", false, nil
	}
	s.pending[k] = true
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := namespace + "|" + key
	delete(s.pending, k)
	s.values[k] = value
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, namespace+"|"+key)
	s.released++
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func containsFold(needle string, fields ...string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, p domain.PageRequest) []T {
	skip := p.Offset()
	if skip > len(items) {
		return []T{}
	}
	end := skip + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func adminPrincipal(id string) domain.Principal {
	return domain.Principal{ID: id, Username: id, DisplayName: "Admin " + id, Role: domain.RoleAdmin}
}

func employeePrincipal(id string) domain.Principal {
	return domain.Principal{ID: id, Username: id, DisplayName: "Employee " + id, Role: domain.RoleEmployee}
}

func customerPrincipal(id string) domain.Principal {
	return domain.Principal{ID: id, Username: id, DisplayName: "Viewer " + id, Role: domain.RoleCustomer}
}

func customerFields(email string) domain.CustomerFields {
	return domain.CustomerFields{
		FirstName:    "Nimal",
		LastName:     "Silva",
		Email:        email,
		Phone:        "0711234567",
		BusinessName: "Silva Stores",
		BusinessType: "retail",
		TINNumber:    "TIN-100",
		VATNumber:    "VAT-100",
	}
}
