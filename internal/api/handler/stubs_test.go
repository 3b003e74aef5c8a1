package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bizledger/records-api/internal/api/middleware"
	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

var (
	adminP    = domain.Principal{ID: "admin-1", Username: "admin", Role: domain.RoleAdmin, DisplayName: "Ada Admin"}
	employeeP = domain.Principal{ID: "emp-1", Username: "emp", Role: domain.RoleEmployee, DisplayName: "Eve Employee"}
)

// newRequest builds an echo context with a JSON body (when non-empty) and an
// optional principal.
func newRequest(method, target, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, *p)
	}
	return c, rec
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	return s.registerFn(ctx, in)
}

type stubCustomerService struct {
	listFn   func(ctx context.Context, p domain.Principal, in ports.ListInput) (*ports.ListResult[*domain.Customer], error)
	getFn    func(ctx context.Context, p domain.Principal, id string) (*domain.Customer, error)
	createFn func(ctx context.Context, p domain.Principal, in ports.CreateCustomerInput) (*ports.CreateCustomerResult, error)
	updateFn func(ctx context.Context, p domain.Principal, id string, f domain.CustomerFields) (*domain.Customer, error)
	deleteFn func(ctx context.Context, p domain.Principal, id string) error
}

func (s *stubCustomerService) List(ctx context.Context, p domain.Principal, in ports.ListInput) (*ports.ListResult[*domain.Customer], error) {
	return s.listFn(ctx, p, in)
}

func (s *stubCustomerService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Customer, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubCustomerService) Create(ctx context.Context, p domain.Principal, in ports.CreateCustomerInput) (*ports.CreateCustomerResult, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubCustomerService) Update(ctx context.Context, p domain.Principal, id string, f domain.CustomerFields) (*domain.Customer, error) {
	return s.updateFn(ctx, p, id, f)
}

func (s *stubCustomerService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

type stubUserService struct {
	listFn   func(ctx context.Context, p domain.Principal, in ports.ListUsersInput) (*ports.ListResult[*domain.Identity], error)
	getFn    func(ctx context.Context, p domain.Principal, id string) (*domain.Identity, error)
	createFn func(ctx context.Context, p domain.Principal, in ports.CreateUserInput) (*domain.Identity, error)
	updateFn func(ctx context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*domain.Identity, error)
	deleteFn func(ctx context.Context, p domain.Principal, id string) error
}

func (s *stubUserService) List(ctx context.Context, p domain.Principal, in ports.ListUsersInput) (*ports.ListResult[*domain.Identity], error) {
	return s.listFn(ctx, p, in)
}

func (s *stubUserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Identity, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubUserService) Create(ctx context.Context, p domain.Principal, in ports.CreateUserInput) (*domain.Identity, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubUserService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*domain.Identity, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

type stubDashboardService struct {
	statsFn  func(ctx context.Context, p domain.Principal) (*ports.DashboardStats, error)
	recentFn func(ctx context.Context, p domain.Principal) ([]*domain.Customer, error)
}

func (s *stubDashboardService) Stats(ctx context.Context, p domain.Principal) (*ports.DashboardStats, error) {
	return s.statsFn(ctx, p)
}

func (s *stubDashboardService) RecentCustomers(ctx context.Context, p domain.Principal) ([]*domain.Customer, error) {
	return s.recentFn(ctx, p)
}

const validCustomerJSON = `{
	"first_name": "Nimal",
	"last_name": "Perera",
	"email": "nimal@acme.example",
	"phone": "0771234567",
	"business_name": "Acme Traders",
	"business_type": "retail",
	"tin_number": "TIN-1",
	"vat_number": "VAT-1"
}`
