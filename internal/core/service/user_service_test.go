package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

func newTestUserService() (*UserService, *stubIdentityRepo) {
	repo := newStubIdentityRepo()
	return NewUserService(repo, &fakeHasher{}, discardLogger), repo
}

func strPtr(s string) *string { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }

func TestUserService_List_AdminOnly(t *testing.T) {
	svc, repo := newTestUserService()
	seedIdentity(repo, "emp", domain.RoleEmployee)

	_, err := svc.List(context.Background(), employeePrincipal("emp"), ports.ListUsersInput{ListInput: ports.ListInput{Page: page(1, 10)}})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatal("denied list must not reach the store")
	}
}

func TestUserService_List_FiltersByRole(t *testing.T) {
	svc, repo := newTestUserService()
	admin := seedIdentity(repo, "root", domain.RoleAdmin)
	seedIdentity(repo, "emp1", domain.RoleEmployee)
	seedIdentity(repo, "emp2", domain.RoleEmployee)
	seedIdentity(repo, "viewer", domain.RoleCustomer)

	res, err := svc.List(context.Background(), adminPrincipal(admin.ID), ports.ListUsersInput{
		ListInput: ports.ListInput{Page: page(1, 10)},
		Role:      domain.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 employees, got %d", res.Total)
	}
	for _, i := range res.Items {
		if i.Role != domain.RoleEmployee {
			t.Fatalf("unexpected role in result: %s", i.Role)
		}
	}

	if _, err := svc.List(context.Background(), adminPrincipal(admin.ID), ports.ListUsersInput{
		ListInput: ports.ListInput{Page: page(1, 10)},
		Role:      domain.Role("superuser"),
	}); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for unknown role, got %v", err)
	}
}

func TestUserService_Get_SelfOnlyForNonAdmins(t *testing.T) {
	svc, repo := newTestUserService()
	me := seedIdentity(repo, "me", domain.RoleEmployee)
	other := seedIdentity(repo, "other", domain.RoleEmployee)

	got, err := svc.Get(context.Background(), employeePrincipal(me.ID), me.ID)
	if err != nil || got.ID != me.ID {
		t.Fatalf("self get failed: %+v, %v", got, err)
	}

	if _, err := svc.Get(context.Background(), employeePrincipal(me.ID), other.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another identity, got %v", err)
	}

	if _, err := svc.Get(context.Background(), adminPrincipal("adm"), other.ID); err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
}

func TestUserService_Create(t *testing.T) {
	svc, repo := newTestUserService()

	created, err := svc.Create(context.Background(), adminPrincipal("adm"), ports.CreateUserInput{
		Username: "newhire", Email: "NewHire@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Role != domain.RoleEmployee {
		t.Fatalf("expected default role employee, got %s", created.Role)
	}
	if repo.byID[created.ID].PasswordHash != "hashed:secret1" {
		t.Fatal("password must be stored hashed")
	}

	if _, err := svc.Create(context.Background(), employeePrincipal("emp"), ports.CreateUserInput{
		Username: "sneaky", Email: "s@example.com", Password: "secret1",
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for employee, got %v", err)
	}

	if _, err := svc.Create(context.Background(), adminPrincipal("adm"), ports.CreateUserInput{
		Username: "newhire", Email: "other@example.com", Password: "secret1",
	}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserService_Update_Profile(t *testing.T) {
	svc, repo := newTestUserService()
	me := seedIdentity(repo, "me", domain.RoleEmployee)
	seedIdentity(repo, "taken", domain.RoleEmployee)

	updated, err := svc.Update(context.Background(), employeePrincipal(me.ID), me.ID, ports.UpdateUserInput{
		FirstName: strPtr(" Kamal "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FirstName != "Kamal" || updated.Email != me.Email {
		t.Fatalf("unexpected result: %+v", updated)
	}

	_, err = svc.Update(context.Background(), employeePrincipal(me.ID), me.ID, ports.UpdateUserInput{
		Email: strPtr("taken@example.com"),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	_, err = svc.Update(context.Background(), employeePrincipal(me.ID), me.ID, ports.UpdateUserInput{
		Email: strPtr(me.Email),
	})
	if err != nil {
		t.Fatalf("keeping own email must succeed: %v", err)
	}
}

func TestUserService_Update_CustomerViewerHasNoWritePath(t *testing.T) {
	svc, repo := newTestUserService()
	me := seedIdentity(repo, "viewer", domain.RoleCustomer)

	_, err := svc.Update(context.Background(), customerPrincipal(me.ID), me.ID, ports.UpdateUserInput{FirstName: strPtr("X")})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Update_OtherIdentityIsNotFoundForEmployee(t *testing.T) {
	svc, repo := newTestUserService()
	me := seedIdentity(repo, "me", domain.RoleEmployee)
	other := seedIdentity(repo, "other", domain.RoleEmployee)

	_, err := svc.Update(context.Background(), employeePrincipal(me.ID), other.ID, ports.UpdateUserInput{FirstName: strPtr("X")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_Update_PasswordChange(t *testing.T) {
	svc, repo := newTestUserService()
	me := seedIdentity(repo, "me", domain.RoleEmployee)
	p := employeePrincipal(me.ID)

	_, err := svc.Update(context.Background(), p, me.ID, ports.UpdateUserInput{NewPassword: "newsecret"})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("missing current password: expected ErrValidationFailed, got %v", err)
	}

	_, err = svc.Update(context.Background(), p, me.ID, ports.UpdateUserInput{CurrentPassword: "wrong", NewPassword: "newsecret"})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("wrong current password: expected ErrInvalidOperation, got %v", err)
	}
	if repo.byID[me.ID].PasswordHash != "hashed:me-pass" {
		t.Fatal("password must be unchanged after a failed change")
	}

	_, err = svc.Update(context.Background(), p, me.ID, ports.UpdateUserInput{CurrentPassword: "me-pass", NewPassword: "newsecret"})
	if err != nil {
		t.Fatalf("password change failed: %v", err)
	}
	if repo.byID[me.ID].PasswordHash != "hashed:newsecret" {
		t.Fatal("password not changed")
	}
}

func TestUserService_Update_AdminResetsAnotherPassword(t *testing.T) {
	svc, repo := newTestUserService()
	emp := seedIdentity(repo, "emp", domain.RoleEmployee)

	if _, err := svc.Update(context.Background(), adminPrincipal("adm"), emp.ID, ports.UpdateUserInput{NewPassword: "reset123"}); err != nil {
		t.Fatalf("admin reset failed: %v", err)
	}
	if repo.byID[emp.ID].PasswordHash != "hashed:reset123" {
		t.Fatal("password not reset")
	}
}

func TestUserService_Update_RoleChanges(t *testing.T) {
	svc, repo := newTestUserService()
	admin := seedIdentity(repo, "root", domain.RoleAdmin)
	emp := seedIdentity(repo, "emp", domain.RoleEmployee)

	updated, err := svc.Update(context.Background(), adminPrincipal(admin.ID), emp.ID, ports.UpdateUserInput{Role: rolePtr(domain.RoleCustomer)})
	if err != nil {
		t.Fatalf("role change failed: %v", err)
	}
	if updated.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", updated.Role)
	}

	_, err = svc.Update(context.Background(), adminPrincipal(admin.ID), admin.ID, ports.UpdateUserInput{Role: rolePtr(domain.RoleEmployee)})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("self role change: expected ErrInvalidOperation, got %v", err)
	}

	_, err = svc.Update(context.Background(), employeePrincipal(emp.ID), emp.ID, ports.UpdateUserInput{Role: rolePtr(domain.RoleAdmin)})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("escalation: expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Delete_SelfIsInvalidOperation(t *testing.T) {
	svc, repo := newTestUserService()
	admin := seedIdentity(repo, "root", domain.RoleAdmin)
	repo.calls = 0

	err := svc.Delete(context.Background(), adminPrincipal(admin.ID), admin.ID)
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if _, ok := repo.byID[admin.ID]; !ok {
		t.Fatal("self-delete must not remove the identity")
	}
	if repo.calls != 0 {
		t.Fatalf("self-delete must be rejected before the store, got %d calls", repo.calls)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, repo := newTestUserService()
	root := seedIdentity(repo, "root", domain.RoleAdmin)
	other := seedIdentity(repo, "other-admin", domain.RoleAdmin)
	emp := seedIdentity(repo, "emp", domain.RoleEmployee)
	busy := seedIdentity(repo, "busy", domain.RoleEmployee)

	customers := newStubCustomerRepo()
	_ = customers.Create(context.Background(), &domain.Customer{Email: "c@example.com", CreatedBy: busy.ID, CreatedAt: time.Now()})
	repo.owns = customers.ownedBy

	if err := svc.Delete(context.Background(), employeePrincipal(emp.ID), busy.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("employee delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminPrincipal(root.ID), other.ID); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("admin target: expected ErrInvalidOperation, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminPrincipal(root.ID), busy.ID); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("owner of customers: expected ErrInvalidOperation, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminPrincipal(root.ID), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminPrincipal(root.ID), emp.ID); err != nil {
		t.Fatalf("delete employee: %v", err)
	}
	if _, ok := repo.byID[emp.ID]; ok {
		t.Fatal("employee should be gone")
	}
}
