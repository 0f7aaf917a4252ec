package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// RBAC enforces role-based access control: the principal must hold at least
// one of allowedRoles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := c.Get(PrincipalKey).(domain.Principal)
			for _, role := range allowedRoles {
				if p.IsInRole(role) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
