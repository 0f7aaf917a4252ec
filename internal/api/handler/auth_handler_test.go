package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, email, password string, rememberMe bool) (bool, error)
	registerFn     func(ctx context.Context, fullName, email, password string) (ports.RegisterResult, error)
	emailExistsFn  func(ctx context.Context, email string) (bool, error)
	updateFn       func(ctx context.Context, userID, imagePath string) (bool, error)
	currentFn      func(ctx context.Context, userID string) (*domain.User, error)
	logouts        int
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string, rememberMe bool) (bool, error) {
	return s.authenticateFn(ctx, email, password, rememberMe)
}

func (s *stubAuthService) Logout(context.Context) error {
	s.logouts++
	return nil
}

func (s *stubAuthService) RegisterUser(ctx context.Context, fullName, email, password string) (ports.RegisterResult, error) {
	return s.registerFn(ctx, fullName, email, password)
}

func (s *stubAuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.emailExistsFn(ctx, email)
}

func (s *stubAuthService) UpdateUserProfile(ctx context.Context, userID, imagePath string) (bool, error) {
	return s.updateFn(ctx, userID, imagePath)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.currentFn(ctx, userID)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withUser(c echo.Context, id uuid.UUID, roles ...string) {
	u := &domain.User{ID: id, UserName: "ana@example.com", Email: "ana@example.com", Roles: roles}
	c.Set(principalKey, domain.NewPrincipal(domain.ClaimsFor(u)))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, fullName, email, password string) (ports.RegisterResult, error) {
			if fullName != "Ana Lima" || email != "ana@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", fullName, email, password)
			}
			return ports.RegisterResult{Success: true, Message: "user registered"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"full_name":"Ana Lima","email":"ana@example.com","password":"secret1","confirm_password":"secret1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["success"] != true {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAuthHandler_Register_Rejected(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (ports.RegisterResult, error) {
			return ports.RegisterResult{Success: false, Message: "Email 'ana@example.com' is already taken."}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"full_name":"Ana","email":"ana@example.com","password":"secret1","confirm_password":"secret1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["success"] != false || resp["message"] != "Email 'ana@example.com' is already taken." {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (ports.RegisterResult, error) {
			t.Fatalf("service must not be called")
			return ports.RegisterResult{}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register",
		`{"full_name":"Ana","email":"ana@example.com","password":"secret1","confirm_password":"other"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg, _ := decode(t, rec)["message"].(string); !strings.Contains(msg, "confirm_password must match password") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, email, password string, rememberMe bool) (bool, error) {
			return email == "ana@example.com" && password == "secret1" && rememberMe, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"secret1","remember_me":true}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	if code := httpCode(t, h.Login(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.logouts != 1 {
		t.Fatalf("expected 204 and one logout, got %d / %d", rec.Code, stub.logouts)
	}
}

func TestAuthHandler_EmailExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		emailExistsFn: func(_ context.Context, email string) (bool, error) {
			return email == "ana@example.com", nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodGet, "/auth/email-exists?email=ana@example.com", "")
	if err := h.EmailExists(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["exists"] != true {
		t.Fatalf("unexpected body: %v", resp)
	}

	c, _ = jsonContext(e, http.MethodGet, "/auth/email-exists", "")
	if code := httpCode(t, h.EmailExists(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	id := uuid.New()
	stub := &stubAuthService{
		currentFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != id.String() {
				t.Fatalf("unexpected user id %s", userID)
			}
			return &domain.User{ID: id, FullName: "Ana Lima", Email: "ana@example.com", Roles: []string{domain.RoleSupport}}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodGet, "/me", "")
	withUser(c, id, domain.RoleSupport)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["id"] != id.String() || resp["full_name"] != "Ana Lima" {
		t.Fatalf("unexpected body: %v", resp)
	}

	c, _ = jsonContext(e, http.MethodGet, "/me", "")
	if code := httpCode(t, h.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", code)
	}
}

func TestAuthHandler_Register_PasswordTooLong(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (ports.RegisterResult, error) {
			t.Fatalf("service must not be called")
			return ports.RegisterResult{}, nil
		},
	}
	h := NewAuthHandler(stub)

	long := "Aa1!" + strings.Repeat("x", 80)
	c, rec := jsonContext(e, http.MethodPost, "/auth/register", fmt.Sprintf(
		`{"full_name":"Long","email":"long@example.com","password":%q,"confirm_password":%q}`, long, long))
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg, _ := decode(t, rec)["message"].(string); !strings.Contains(msg, "password must be at most 72 characters") {
		t.Fatalf("unexpected message %q", msg)
	}
}
