package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bizledger/records-api/internal/api/metrics"
	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// List returns the customers visible to the caller.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        page_size  query     int     false  "Page size 1-100 (default 10)"
// @Param        search     query     string  false  "Case-insensitive search"
// @Success      200        {object}  listCustomersResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	in, err := listInput(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), p, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listCustomersResponse{
		Data:       toCustomerResponses(result.Items),
		Pagination: toPagination(result),
	})
}

// Get returns one customer in the caller's scope.
//
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  customerResponse
// @Failure      404  {object}  errorResponse
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	customer, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// Create stores a customer owned by the caller. A repeated Idempotency-Key
// returns the original customer with 200.
//
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      customerRequest  true   "Customer details"
// @Success      201              {object}  customerResponse
// @Success      200              {object}  customerResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Create(c.Request().Context(), p, ports.CreateCustomerInput{
		Fields:         toCustomerFields(req),
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	metrics.CustomersCreatedTotal.WithLabelValues(strconv.FormatBool(result.AlreadyExisted)).Inc()

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toCustomerResponse(result.Customer))
}

// Update replaces the writable fields of a customer in the caller's scope.
//
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Customer ID"
// @Param        body  body      customerRequest  true  "Customer details"
// @Success      200   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	customer, err := h.service.Update(c.Request().Context(), p, c.Param("id"), toCustomerFields(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// Delete removes a customer in the caller's scope.
//
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id   path  string  true  "Customer ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
