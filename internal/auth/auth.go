// Package auth identifies the user behind an API request.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authenticator returns the user id for r, or "" when r carries no session.
type Authenticator interface {
	UserID(r *http.Request) string
}

// TokenTable maps bearer tokens to user ids.
type TokenTable map[string]string

func (t TokenTable) UserID(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	for known, user := range t {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return user
		}
	}
	return ""
}

// ProxyHeader trusts a header set by an authenticating reverse proxy.
type ProxyHeader string

func (h ProxyHeader) UserID(r *http.Request) string {
	if h == "" {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(string(h)))
}

// Chain tries each authenticator in order.
type Chain []Authenticator

func (c Chain) UserID(r *http.Request) string {
	for _, a := range c {
		if id := a.UserID(r); id != "" {
			return id
		}
	}
	return ""
}

// New builds the authenticator from config values. Bearer tokens are
// checked before the proxy header.
func New(tokens map[string]string, userHeader string) Authenticator {
	var c Chain
	if len(tokens) > 0 {
		c = append(c, TokenTable(tokens))
	}
	if userHeader != "" {
		c = append(c, ProxyHeader(userHeader))
	}
	return c
}

type ctxKey struct{}

// WithUser stores the authenticated user id in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the id stored by WithUser.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
