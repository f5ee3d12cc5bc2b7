package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/mentor-platform/internal/platform/api"
)

const RoleAdmin = "admin"

// IsAdmin reports whether the context carries the admin role.
func IsAdmin(ctx context.Context) bool {
	role, _ := RoleFromContext(ctx)
	return strings.EqualFold(strings.TrimSpace(role), RoleAdmin)
}

// RequireAdmin allows request only if RequireUser already injected role=admin into context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			api.Forbidden(w, "FORBIDDEN", "admin role required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
