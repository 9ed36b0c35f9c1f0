// Package auth reads the identity an upstream proxy attaches to each request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
)

// Headers set by the authenticating proxy.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

var (
	errMissingUser = errors.New("missing " + HeaderUserID + " header")
	errNotAdmin    = errors.New("administrator access required")
)

// User is the authenticated caller.
type User struct {
	ID    string
	Email string
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the user stored by Middleware.
func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}

// Middleware rejects requests without a user ID header and stores the user
// in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if id == "" {
			response.Unauthorized(w, errMissingUser)
			return
		}

		user := User{ID: id, Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail))}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin allows only the listed user IDs through. It must run after
// Middleware.
func RequireAdmin(admins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(admins))
	for _, id := range admins {
		allowed[id] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok || !allowed[user.ID] {
				response.Forbidden(w, errNotAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
