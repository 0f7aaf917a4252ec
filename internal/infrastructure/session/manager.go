// Package session issues signed cookie sessions carrying a principal's claims.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// ErrNoExchange is returned when SignIn or SignOut run outside an HTTP request.
var ErrNoExchange = errors.New("session: no http exchange in context")

// Revoker remembers signed-out session ids until their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type Config struct {
	Secret     []byte
	CookieName string
	// TTL applies when a sign-in does not carry its own expiry.
	TTL    time.Duration
	Secure bool
}

type sessionClaims struct {
	Claims     []domain.Claim `json:"claims"`
	Persistent bool           `json:"persistent,omitempty"`
	jwt.RegisteredClaims
}

// CookieManager stores the principal in an HS256-signed token inside an
// HttpOnly cookie. Persistent sessions get an Expires attribute; the others
// end with the browser session.
type CookieManager struct {
	cfg     Config
	revoker Revoker
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.SessionManager = (*CookieManager)(nil)

func NewCookieManager(cfg Config, revoker Revoker, log zerolog.Logger) *CookieManager {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.SessionLifetime
	}
	return &CookieManager{cfg: cfg, revoker: revoker, log: log, now: time.Now}
}

func (m *CookieManager) SignIn(ctx context.Context, principal domain.Principal, opts domain.SessionOptions) error {
	ex, ok := exchangeFrom(ctx)
	if !ok {
		return ErrNoExchange
	}

	now := m.now().UTC()
	expires := opts.ExpiresUTC
	if expires.IsZero() {
		expires = now.Add(m.cfg.TTL)
	}

	claims := sessionClaims{
		Claims:     principal.Claims,
		Persistent: opts.IsPersistent,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return fmt.Errorf("session: sign token: %w", err)
	}

	cookie := m.cookie(signed)
	if opts.IsPersistent {
		cookie.Expires = expires
		cookie.MaxAge = int(expires.Sub(now).Seconds())
	}
	http.SetCookie(ex.w, cookie)

	m.log.Debug().Str("subject", claims.Subject).Bool("persistent", opts.IsPersistent).Msg("session issued")
	return nil
}

// SignOut revokes the session carried by the request, if any, and clears the cookie.
func (m *CookieManager) SignOut(ctx context.Context) error {
	ex, ok := exchangeFrom(ctx)
	if !ok {
		return ErrNoExchange
	}

	if c, err := ex.r.Cookie(m.cfg.CookieName); err == nil {
		if claims, err := m.parse(c.Value); err == nil && claims.ID != "" {
			if err := m.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return fmt.Errorf("session: revoke: %w", err)
			}
		}
	}

	expired := m.cookie("")
	expired.MaxAge = -1
	expired.Expires = time.Unix(0, 0)
	http.SetCookie(ex.w, expired)
	return nil
}

// Authenticate resolves the principal of the session cookie on r. Missing,
// tampered, expired or revoked sessions yield domain.ErrUnauthenticated.
func (m *CookieManager) Authenticate(r *http.Request) (domain.Principal, error) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	claims, err := m.parse(c.Value)
	if err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	revoked, err := m.revoker.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("session: revocation check: %w", err)
	}
	if revoked {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	p := domain.NewPrincipal(claims.Claims)
	if !p.IsAuthenticated() {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (m *CookieManager) parse(raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *CookieManager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
