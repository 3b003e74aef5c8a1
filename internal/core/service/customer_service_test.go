package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

func newTestCustomerService() (*CustomerService, *stubCustomerRepo) {
	repo := newStubCustomerRepo()
	return NewCustomerService(repo, nil, discardLogger), repo
}

func seedCustomer(repo *stubCustomerRepo, owner, email string, createdAt time.Time) *domain.Customer {
	c := &domain.Customer{CreatedBy: owner, CreatedAt: createdAt, UpdatedAt: createdAt}
	customerFields(email).Normalize().Apply(c)
	if err := repo.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func page(p, size int) domain.PageRequest {
	return domain.PageRequest{Page: p, PageSize: size}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestCustomerService_List_EmployeeSeesOnlyOwnRows(t *testing.T) {
	svc, repo := newTestCustomerService()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seedCustomer(repo, "emp-1", fmt.Sprintf("mine%d@example.com", i), now.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 4; i++ {
		seedCustomer(repo, "emp-2", fmt.Sprintf("theirs%d@example.com", i), now.Add(time.Duration(i)*time.Minute))
	}

	res, err := svc.List(context.Background(), employeePrincipal("emp-1"), ports.ListInput{Page: page(1, 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("total must count only own rows, got %d", res.Total)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	for _, c := range res.Items {
		if c.CreatedBy != "emp-1" {
			t.Fatalf("leaked row owned by %s", c.CreatedBy)
		}
	}
	if res.TotalPages != 1 {
		t.Fatalf("expected 1 page, got %d", res.TotalPages)
	}
}

func TestCustomerService_List_AdminIsUnrestricted(t *testing.T) {
	svc, repo := newTestCustomerService()
	now := time.Now().UTC()
	seedCustomer(repo, "emp-1", "a@example.com", now)
	seedCustomer(repo, "emp-2", "b@example.com", now)

	res, err := svc.List(context.Background(), adminPrincipal("adm"), ports.ListInput{Page: page(1, 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("admin must see every row, got %d", res.Total)
	}
}

func TestCustomerService_List_Pagination(t *testing.T) {
	svc, repo := newTestCustomerService()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		seedCustomer(repo, "emp-1", fmt.Sprintf("c%02d@example.com", i), base.Add(time.Duration(i)*time.Minute))
	}

	res, err := svc.List(context.Background(), employeePrincipal("emp-1"), ports.ListInput{Page: page(2, 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(res.Items))
	}
	if res.TotalPages != 3 || res.Total != 25 {
		t.Fatalf("expected 25 rows over 3 pages, got %d over %d", res.Total, res.TotalPages)
	}
	// Newest first: page 2 holds the 11th to 20th newest rows.
	if first := res.Items[0].Email; first != "c15@example.com" {
		t.Errorf("expected first item c15, got %s", first)
	}
	if last := res.Items[9].Email; last != "c06@example.com" {
		t.Errorf("expected last item c06, got %s", last)
	}
}

func TestCustomerService_List_RejectsOutOfRangePaging(t *testing.T) {
	svc, repo := newTestCustomerService()

	for _, p := range []domain.PageRequest{page(1, 0), page(1, 101), page(0, 10)} {
		_, err := svc.List(context.Background(), adminPrincipal("adm"), ports.ListInput{Page: p})
		if !errors.Is(err, domain.ErrValidationFailed) {
			t.Errorf("%+v: expected ErrValidationFailed, got %v", p, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("invalid paging must not reach the store")
	}
}

func TestCustomerService_List_SearchIsScoped(t *testing.T) {
	svc, repo := newTestCustomerService()
	now := time.Now().UTC()
	seedCustomer(repo, "emp-1", "target@example.com", now)
	seedCustomer(repo, "emp-2", "target2@example.com", now)
	seedCustomer(repo, "emp-1", "other@example.com", now)

	res, err := svc.List(context.Background(), employeePrincipal("emp-1"), ports.ListInput{Page: page(1, 10), Search: "  TARGET "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Items[0].Email != "target@example.com" {
		t.Fatalf("expected only own matching row, got %+v", res.Items)
	}
}

func TestCustomerService_CustomerViewerIsDenied(t *testing.T) {
	svc, repo := newTestCustomerService()
	viewer := customerPrincipal("cv-1")

	if _, err := svc.List(context.Background(), viewer, ports.ListInput{Page: page(1, 10)}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("list: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(context.Background(), viewer, ports.CreateCustomerInput{Fields: customerFields("x@example.com")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), viewer, "cust-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("denied calls must not reach the store, got %d", repo.calls)
	}
}

// ---------------------------------------------------------------------------
// Get / Update / Delete scoping
// ---------------------------------------------------------------------------

func TestCustomerService_Get_OtherEmployeesRowIsNotFound(t *testing.T) {
	svc, repo := newTestCustomerService()
	theirs := seedCustomer(repo, "emp-2", "theirs@example.com", time.Now())

	_, err := svc.Get(context.Background(), employeePrincipal("emp-1"), theirs.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, missingErr := svc.Get(context.Background(), employeePrincipal("emp-1"), "does-not-exist")
	if !errors.Is(missingErr, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", missingErr)
	}
}

func TestCustomerService_Admin_UnrestrictedMutations(t *testing.T) {
	svc, repo := newTestCustomerService()
	row := seedCustomer(repo, "emp-2", "row@example.com", time.Now())
	admin := adminPrincipal("adm")

	if _, err := svc.Get(context.Background(), admin, row.ID); err != nil {
		t.Fatalf("get: %v", err)
	}

	fields := customerFields("row@example.com")
	fields.City = "Kandy"
	updated, err := svc.Update(context.Background(), admin, row.ID, fields)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.City != "Kandy" || updated.CreatedBy != "emp-2" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := svc.Delete(context.Background(), admin, row.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.byID[row.ID]; ok {
		t.Fatal("row should be gone")
	}
}

func TestCustomerService_UpdateDelete_OutOfScopeIsNotFound(t *testing.T) {
	svc, repo := newTestCustomerService()
	theirs := seedCustomer(repo, "emp-2", "theirs@example.com", time.Now())
	me := employeePrincipal("emp-1")

	if _, err := svc.Update(context.Background(), me, theirs.ID, customerFields("new@example.com")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), me, theirs.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if stored := repo.byID[theirs.ID]; stored == nil || stored.Email != "theirs@example.com" {
		t.Fatalf("out of scope row must be untouched, got %+v", stored)
	}
}

// ---------------------------------------------------------------------------
// Create / uniqueness
// ---------------------------------------------------------------------------

func TestCustomerService_Create_SetsOwner(t *testing.T) {
	svc, repo := newTestCustomerService()
	me := employeePrincipal("emp-1")

	res, err := svc.Create(context.Background(), me, ports.CreateCustomerInput{Fields: customerFields("New@Example.com")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := res.Customer
	if c.CreatedBy != "emp-1" || c.CreatedByName != me.DisplayName {
		t.Fatalf("owner not recorded: %+v", c)
	}
	if c.Email != "new@example.com" || c.Country != domain.DefaultCountry {
		t.Fatalf("fields not normalized: %+v", c)
	}
	if res.AlreadyExisted {
		t.Fatal("fresh create must not be a replay")
	}
	if _, ok := repo.byID[c.ID]; !ok {
		t.Fatal("customer not stored")
	}
}

func TestCustomerService_Create_Validation(t *testing.T) {
	svc, repo := newTestCustomerService()
	fields := customerFields("x@example.com")
	fields.VATNumber = " "

	_, err := svc.Create(context.Background(), employeePrincipal("emp-1"), ports.CreateCustomerInput{Fields: fields})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatal("invalid input must not reach the store")
	}
}

func TestCustomerService_EmailConflicts(t *testing.T) {
	svc, repo := newTestCustomerService()
	taken := seedCustomer(repo, "emp-2", "taken@example.com", time.Now())
	mine := seedCustomer(repo, "emp-1", "mine@example.com", time.Now())
	me := employeePrincipal("emp-1")

	_, err := svc.Create(context.Background(), me, ports.CreateCustomerInput{Fields: customerFields("TAKEN@example.com")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("create: expected ErrConflict, got %v", err)
	}

	if _, err := svc.Update(context.Background(), me, mine.ID, customerFields(taken.Email)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("update: expected ErrConflict, got %v", err)
	}

	unchanged := customerFields(mine.Email)
	unchanged.Phone = "0779999999"
	if _, err := svc.Update(context.Background(), me, mine.ID, unchanged); err != nil {
		t.Fatalf("update keeping own email must succeed: %v", err)
	}
}

func TestCustomerService_Create_IdempotentReplay(t *testing.T) {
	repo := newStubCustomerRepo()
	idem := newStubIdempotency()
	svc := NewCustomerService(repo, idem, discardLogger)
	me := employeePrincipal("emp-1")
	in := ports.CreateCustomerInput{Fields: customerFields("once@example.com"), IdempotencyKey: "key-1"}

	first, err := svc.Create(context.Background(), me, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(context.Background(), me, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.AlreadyExisted || second.Customer.ID != first.Customer.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Customer.ID, second)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("replay must not insert, have %d rows", len(repo.byID))
	}

	// Another caller using the same key gets its own namespace.
	_, err = svc.Create(context.Background(), employeePrincipal("emp-2"), in)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for foreign caller with same email, got %v", err)
	}
}

func TestCustomerService_Create_IdempotencyStoreFailureFallsThrough(t *testing.T) {
	repo := newStubCustomerRepo()
	idem := newStubIdempotency()
	idem.claimErr = errors.New("redis down")
	svc := NewCustomerService(repo, idem, discardLogger)

	res, err := svc.Create(context.Background(), employeePrincipal("emp-1"), ports.CreateCustomerInput{
		Fields: customerFields("fallback@example.com"), IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("create must proceed when the idempotency store fails: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatal("unexpected replay")
	}
}

func TestCustomerService_Create_ConcurrentDuplicateKeyInsertsOnce(t *testing.T) {
	repo := newStubCustomerRepo()
	idem := newStubIdempotency()
	svc := NewCustomerService(repo, idem, discardLogger)
	me := employeePrincipal("emp-1")
	in := ports.CreateCustomerInput{Fields: customerFields("race@example.com"), IdempotencyKey: "key-1"}

	// The duplicate arrives while the first request is inserting.
	var dupErr error
	repo.beforeCreate = func() {
		repo.beforeCreate = nil
		_, dupErr = svc.Create(context.Background(), me, in)
	}

	first, err := svc.Create(context.Background(), me, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !errors.Is(dupErr, domain.ErrConflict) {
		t.Fatalf("expected in-flight duplicate to get ErrConflict, got %v", dupErr)
	}
	if repo.inserts != 1 {
		t.Fatalf("expected one insert, got %d", repo.inserts)
	}

	replay, err := svc.Create(context.Background(), me, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replay.AlreadyExisted || replay.Customer.ID != first.Customer.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Customer.ID, replay)
	}
}

func TestCustomerService_Create_FailureReleasesKey(t *testing.T) {
	repo := newStubCustomerRepo()
	idem := newStubIdempotency()
	svc := NewCustomerService(repo, idem, discardLogger)
	me := employeePrincipal("emp-1")
	in := ports.CreateCustomerInput{Fields: customerFields("retry@example.com"), IdempotencyKey: "key-1"}

	repo.err = fmt.Errorf("create customer: %w", domain.ErrUnavailable)
	if _, err := svc.Create(context.Background(), me, in); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if idem.released != 1 {
		t.Fatalf("expected the key to be released, got %d releases", idem.released)
	}

	repo.err = nil
	res, err := svc.Create(context.Background(), me, in)
	if err != nil {
		t.Fatalf("retry after failure must succeed: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatal("retry must insert, not replay")
	}
}

func TestCustomerService_StoreUnavailable(t *testing.T) {
	svc, repo := newTestCustomerService()
	repo.err = fmt.Errorf("list customers: %w", domain.ErrUnavailable)

	_, err := svc.List(context.Background(), adminPrincipal("adm"), ports.ListInput{Page: page(1, 10)})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
