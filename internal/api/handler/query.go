package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

// listInput reads page, page_size (alias limit) and search. Defaults apply to
// omitted values; malformed numbers are validation failures. Range checks are
// left to the service.
func listInput(c echo.Context) (ports.ListInput, error) {
	page, err := optionalInt(c, "page")
	if err != nil {
		return ports.ListInput{}, err
	}

	sizeParam := "page_size"
	if c.QueryParam(sizeParam) == "" {
		sizeParam = "limit"
	}
	size, err := optionalInt(c, sizeParam)
	if err != nil {
		return ports.ListInput{}, err
	}

	return ports.ListInput{
		Page:   domain.NewPageRequest(page, size),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Invalid(name + " must be an integer")
	}
	return &n, nil
}
