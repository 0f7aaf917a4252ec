package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

func newTestManager() *CookieManager {
	return NewCookieManager(Config{
		Secret:     []byte("test-secret"),
		CookieName: "sid",
		TTL:        time.Hour,
	}, NewMemoryRevoker(), zerolog.Nop())
}

func testPrincipal() domain.Principal {
	return domain.NewPrincipal([]domain.Claim{
		{Type: domain.ClaimSubject, Value: "7f0c2a8e-4a57-4c1e-9a5a-1d2b3c4d5e6f"},
		{Type: domain.ClaimEmail, Value: "alice@example.com"},
		{Type: domain.ClaimRole, Value: domain.RoleSupport},
	})
}

// signIn issues a session and returns the cookie written to the response.
func signIn(t *testing.T, m *CookieManager, opts domain.SessionOptions) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	if err := m.SignIn(WithExchange(context.Background(), rec, req), testPrincipal(), opts); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestCookieManager_SignIn_Persistent(t *testing.T) {
	m := newTestManager()
	expires := time.Now().Add(5 * time.Hour).UTC().Truncate(time.Second)

	c := signIn(t, m, domain.SessionOptions{IsPersistent: true, ExpiresUTC: expires})
	if !c.HttpOnly || c.Name != "sid" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if c.Expires.IsZero() || !c.Expires.Equal(expires) {
		t.Fatalf("expected Expires %v, got %v", expires, c.Expires)
	}
}

func TestCookieManager_SignIn_SessionCookie(t *testing.T) {
	m := newTestManager()
	c := signIn(t, m, domain.SessionOptions{IsPersistent: false, ExpiresUTC: time.Now().Add(5 * time.Hour)})
	if !c.Expires.IsZero() || c.MaxAge != 0 {
		t.Fatalf("expected a browser-session cookie, got expires=%v maxAge=%d", c.Expires, c.MaxAge)
	}
}

func TestCookieManager_Authenticate(t *testing.T) {
	m := newTestManager()
	c := signIn(t, m, domain.SessionOptions{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(c)
	p, err := m.Authenticate(req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.Email() != "alice@example.com" || !p.IsInRole(domain.RoleSupport) {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestCookieManager_Authenticate_Rejects(t *testing.T) {
	m := newTestManager()
	c := signIn(t, m, domain.SessionOptions{})

	other := NewCookieManager(Config{Secret: []byte("other"), CookieName: "sid"}, NewMemoryRevoker(), zerolog.Nop())
	tampered := &http.Cookie{Name: "sid", Value: c.Value + "x"}

	cases := map[string]struct {
		m      *CookieManager
		cookie *http.Cookie
	}{
		"no cookie":    {m: m},
		"tampered":     {m: m, cookie: tampered},
		"wrong secret": {m: other, cookie: c},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			if _, err := tc.m.Authenticate(req); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestCookieManager_Authenticate_Expired(t *testing.T) {
	m := newTestManager()
	c := signIn(t, m, domain.SessionOptions{ExpiresUTC: time.Now().Add(time.Minute)})

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(c)
	if _, err := m.Authenticate(req); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestCookieManager_SignOut(t *testing.T) {
	m := newTestManager()
	c := signIn(t, m, domain.SessionOptions{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(c)
	if err := m.SignOut(WithExchange(context.Background(), rec, req)); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cleared)
	}

	// Replaying the old cookie must fail once the session is revoked.
	replay := httptest.NewRequest(http.MethodGet, "/me", nil)
	replay.AddCookie(c)
	if _, err := m.Authenticate(replay); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected revoked session to be rejected, got %v", err)
	}
}

func TestCookieManager_SignOut_WithoutSession(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	if err := m.SignOut(WithExchange(context.Background(), rec, req)); err != nil {
		t.Fatalf("expected idempotent sign out, got %v", err)
	}
}

func TestCookieManager_NoExchange(t *testing.T) {
	m := newTestManager()
	if err := m.SignIn(context.Background(), testPrincipal(), domain.SessionOptions{}); !errors.Is(err, ErrNoExchange) {
		t.Fatalf("expected ErrNoExchange, got %v", err)
	}
}
