package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the caller identity set by the upstream gateway.
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

// User stores the caller identity from UserIDHeader in the request context.
// Requests without the header pass through anonymously.
func User(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the caller identity.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the caller identity, or "" when the request is anonymous.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}
