package ports

import (
	"context"

	"github.com/bizledger/records-api/internal/core/domain"
)

// DashboardStats summarizes what the caller can see.
type DashboardStats struct {
	TotalCustomers int64
	// TotalEmployees is only populated for roles allowed to see it.
	TotalEmployees int64
}

type DashboardService interface {
	Stats(ctx context.Context, p domain.Principal) (*DashboardStats, error)
	RecentCustomers(ctx context.Context, p domain.Principal) ([]*domain.Customer, error)
}
