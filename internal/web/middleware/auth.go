package middleware

import (
	"context"
	"net/http"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/services/auth"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

type contextKey string

const userContextKey contextKey = "user"

// GetUser retrieves the authenticated user from the request context.
// Returns nil if the request is anonymous.
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// RequireUser returns middleware that gates a route behind authentication,
// redirecting anonymous visitors to the login page
func RequireUser(gateway *auth.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := userFromCookie(r, gateway)
			if user == nil {
				http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns middleware that resolves the session if one is present
// but lets anonymous requests through
func WithUser(gateway *auth.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := userFromCookie(r, gateway)
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromCookie(r *http.Request, gateway *auth.Gateway) *model.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	user, err := gateway.RequireAuthenticated(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return user
}
