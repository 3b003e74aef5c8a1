package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bizledger/records-api/internal/api/metrics"
	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

const principalKey = "principal"

// Authenticate resolves the bearer token into a Principal re-read from the
// identity store and stores it in the echo context. Failures are returned to
// the error handler unchanged.
func Authenticate(auth ports.Authenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			p, err := auth.Authenticate(c.Request().Context(), header)
			if err != nil {
				result := authResult(err)
				metrics.AuthenticationsTotal.WithLabelValues(result).Inc()
				log.Warn().
					Str("reason", result).
					Str("path", c.Path()).
					Str("remote_ip", c.RealIP()).
					Msg("authentication failed")
				return err
			}

			metrics.AuthenticationsTotal.WithLabelValues("success").Inc()
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the Principal stored by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && p.ID != ""
}

func authResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, domain.ErrInvalidOrExpiredToken):
		return "invalid_token"
	}
	return "error"
}
