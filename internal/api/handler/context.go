package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bizledger/records-api/internal/api/middleware"
	"github.com/bizledger/records-api/internal/core/domain"
)

// principal returns the caller resolved by the Authenticate middleware. A
// route wired without it fails closed.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrMissingCredential
	}
	return p, nil
}
