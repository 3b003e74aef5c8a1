package service

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/policy"
	"github.com/bizledger/records-api/internal/core/ports"
)

const recentCustomersLimit = 5

// DashboardService aggregates scoped counts for the landing page.
type DashboardService struct {
	customers  ports.CustomerRepository
	identities ports.IdentityRepository
}

func NewDashboardService(customers ports.CustomerRepository, identities ports.IdentityRepository) *DashboardService {
	return &DashboardService{customers: customers, identities: identities}
}

// Stats counts customers inside the caller's scope. The employee head count
// is reported only to roles holding stats:employees and is zero otherwise.
func (s *DashboardService) Stats(ctx context.Context, p domain.Principal) (*ports.DashboardStats, error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}

	customers, err := s.customers.Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	stats := &ports.DashboardStats{TotalCustomers: customers}

	if p.Role.Can(domain.CapEmployeeStats) {
		if stats.TotalEmployees, err = s.identities.CountByRole(ctx, domain.RoleEmployee); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *DashboardService) RecentCustomers(ctx context.Context, p domain.Principal) ([]*domain.Customer, error) {
	scope, err := policy.ScopeFilter(p.Role, p.ID)
	if err != nil {
		return nil, err
	}

	items, _, err := s.customers.List(ctx, ports.ListCustomersFilter{
		Scope: scope,
		Page:  domain.PageRequest{Page: 1, PageSize: recentCustomersLimit},
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
