package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// principalKey mirrors middleware.PrincipalKey.
const principalKey = "principal"

// ctxPrincipal extracts the principal injected by the session middleware and
// fails fast when the subject claim is not a valid user id.
func ctxPrincipal(c echo.Context) (domain.Principal, uuid.UUID, error) {
	p, ok := c.Get(principalKey).(domain.Principal)
	if !ok || !p.IsAuthenticated() {
		return domain.Principal{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(p.Subject())
	if err != nil {
		return domain.Principal{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "session missing user identity")
	}
	return p, id, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
