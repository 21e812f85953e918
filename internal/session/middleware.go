package session

import (
	"context"
	"net/http"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const sessionContextKey ContextKey = "session"

// Middleware guards routes that require an authenticated session
type Middleware struct {
	manager *Manager
}

func NewMiddleware(manager *Manager) *Middleware {
	return &Middleware{manager: manager}
}

// RequireAuth redirects anonymous requests to the login page. Page routes
// get a redirect rather than a 401 because the client is a browser.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.manager.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext extracts the session from the request context.
// Only set on routes behind RequireAuth.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok
}
