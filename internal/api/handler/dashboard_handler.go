package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bizledger/records-api/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats returns counts scoped to the caller.
//
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		TotalCustomers: stats.TotalCustomers,
		TotalEmployees: stats.TotalEmployees,
	})
}

// RecentCustomers returns the newest customers in the caller's scope.
//
// @Summary      Recent customers
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  recentCustomersResponse
// @Failure      403  {object}  errorResponse
// @Router       /dashboard/recent-customers [get]
func (h *DashboardHandler) RecentCustomers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	items, err := h.service.RecentCustomers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recentCustomersResponse{Data: toCustomerResponses(items)})
}
