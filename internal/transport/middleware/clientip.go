package middleware

import (
	"net/http"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/transport"
	"github.com/frahmantamala/study-tracker/pkg/logger"
)

// ClientIP stores the caller's address on the context and the request logger.
// Forwarding headers are honoured only when trustProxy is set.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := transport.ClientIP(r, trustProxy)

			ctx := internal.ContextWithClientIP(r.Context(), ip)
			ctx = logger.With(ctx, "client_ip", ip)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
