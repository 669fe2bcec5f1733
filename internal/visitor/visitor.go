// Package visitor identifies anonymous site visitors by a long-lived cookie.
package visitor

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the visitor id.
const CookieName = "sitekit_visitor"

type ctxKey struct{}

// Middleware assigns every request a visitor id, issuing a new cookie when the
// request has none or carries a malformed one.
type Middleware struct {
	Secure bool
	MaxAge int
}

// NewMiddleware creates a Middleware. maxAge is in seconds.
func NewMiddleware(secure bool, maxAge int) *Middleware {
	return &Middleware{Secure: secure, MaxAge: maxAge}
}

// Identify is the http middleware.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   m.MaxAge,
				HttpOnly: true,
				Secure:   m.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// WithID returns a context carrying the visitor id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the visitor id, or "" when none was assigned.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
