package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/transport-management/internal/auth"
)

// RequireRoles gates a route group on the principal's role. Services still
// re-check roles themselves; this keeps obviously wrong calls from reaching
// the workflow layer at all.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasRole(roles...) {
				slog.Warn("access denied: user lacks required role",
					"user_id", user.ID,
					"user_role", user.Role,
					"required_roles", roles)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
