package middleware

import (
	"log/slog"
	"net/http"

	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
)

// RequirePermissions lets the request through when the principal holds any of the permissions.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := coreuser.FromContext(r.Context())
			if !ok || user == nil {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !hasAny(user.Permissions, permissions) {
				slog.Warn("access denied: missing permission",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				writeJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequirePermissions(coreuser.PermissionAdmin)(next)
}

func hasAny(held, wanted []string) bool {
	for _, w := range wanted {
		for _, h := range held {
			if h == w {
				return true
			}
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
