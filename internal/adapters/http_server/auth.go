package httpserver

import (
	"context"
	"net/http"
	"strings"

	"water_map/internal/app"
)

type principalKey struct{}

// RequireAdmin verifies the bearer token on admin-gated routes and stores
// the authenticated admin username in the request context. Handlers must
// take reviewer identity from there, never from the request body.
func RequireAdmin(auth *app.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "malformed authorization header")
				return
			}
			admin, err := auth.Verify(token)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFrom returns the authenticated admin username set by RequireAdmin.
func AdminFrom(ctx context.Context) (string, bool) {
	admin, ok := ctx.Value(principalKey{}).(string)
	return admin, ok
}
