package middleware

import (
	"context"
	"net/http"
	"staybook/pkg/model"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

const userContextKey contextKey = "user_context"

// Identity lifts the authenticated caller from the gateway-injected headers
// into the request context. It does not reject anonymous requests; each
// operation decides for itself whether a caller is required and authorized.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID != "" {
				ctx := context.WithValue(r.Context(), userContextKey, model.UserContext{
					UserID: userID,
					Role:   r.Header.Get(HeaderUserRole),
				})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (model.UserContext, bool) {
	caller, ok := ctx.Value(userContextKey).(model.UserContext)
	return caller, ok
}
