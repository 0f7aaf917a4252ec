package session

import (
	"context"
	"net/http"
)

// exchange is the HTTP request/response pair a session is read from and written to.
type exchange struct {
	w http.ResponseWriter
	r *http.Request
}

type exchangeKey struct{}

// WithExchange attaches the current request and response writer to ctx so
// that SignIn and SignOut can set cookies without depending on the HTTP layer.
func WithExchange(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, exchangeKey{}, &exchange{w: w, r: r})
}

func exchangeFrom(ctx context.Context) (*exchange, bool) {
	ex, ok := ctx.Value(exchangeKey{}).(*exchange)
	return ex, ok && ex != nil
}

// Bind attaches the exchange to ctx; it lets HTTP middleware prepare requests
// without importing this package.
func (m *CookieManager) Bind(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return WithExchange(ctx, w, r)
}
