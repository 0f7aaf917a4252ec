package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// PrincipalKey is the echo context key holding the authenticated domain.Principal.
const PrincipalKey = "principal"

// SessionAuthenticator resolves the session attached to a request and lets the
// session mechanism write cookies on the current response.
type SessionAuthenticator interface {
	Authenticate(r *http.Request) (domain.Principal, error)
	Bind(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context
}

// Session binds the HTTP exchange for sign-in/sign-out and injects the
// principal of a valid session cookie. Requests without a valid session pass
// through anonymously.
func Session(sessions SessionAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(sessions.Bind(req.Context(), c.Response(), req)))

			p, err := sessions.Authenticate(req)
			switch {
			case err == nil:
				c.Set(PrincipalKey, p)
			case errors.Is(err, domain.ErrUnauthenticated):
			default:
				return err
			}
			return next(c)
		}
	}
}

// Auth rejects requests that carry no authenticated principal.
func Auth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(PrincipalKey).(domain.Principal)
			if !ok || !p.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
