package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with the Support role and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  resultResponse
// @Failure      400   {object}  resultResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, resultResponse{Success: false, Message: err.Error()})
	}

	result, err := h.authService.RegisterUser(c.Request().Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		return err
	}
	if !result.Success {
		return c.JSON(http.StatusBadRequest, resultResponse{Success: false, Message: result.Message})
	}
	return c.JSON(http.StatusCreated, resultResponse{Success: true, Message: result.Message})
}

// Login checks the credentials and issues the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	return c.JSON(http.StatusOK, resultResponse{Success: true})
}

// Logout ends the current session. It succeeds without a session too.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// EmailExists reports whether an account already uses the email.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  emailExistsResponse
// @Failure      400    {object}  errorResponse
// @Router       /auth/email-exists [get]
func (h *AuthHandler) EmailExists(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	exists, err := h.authService.EmailExists(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emailExistsResponse{Email: email, Exists: exists})
}

// Me returns the signed-in account.
//
// @Summary      Current user
// @Tags         profile
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     SessionCookie
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), p.Subject())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
