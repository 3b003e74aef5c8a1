package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/api/metrics"
	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/policy"
)

// RequireEndpoint enforces the coarse endpoint class before the handler runs.
// It must be chained after Authenticate.
func RequireEndpoint(class policy.EndpointClass, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrMissingCredential
			}

			if !policy.CanAccessEndpoint(p.Role, class) {
				metrics.AuthorizationDeniedTotal.WithLabelValues(class.String(), string(p.Role)).Inc()
				log.Warn().
					Str("principal_id", p.ID).
					Str("role", string(p.Role)).
					Str("class", class.String()).
					Str("path", c.Path()).
					Msg("authorization denied")
				return fmt.Errorf("%s endpoint: %w", class, domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
