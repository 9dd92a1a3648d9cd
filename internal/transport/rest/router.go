package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/study-tracker/internal/approval"
	"github.com/frahmantamala/study-tracker/internal/auth"
	"github.com/frahmantamala/study-tracker/internal/catalog"
	"github.com/frahmantamala/study-tracker/internal/passwordreset"
	"github.com/frahmantamala/study-tracker/internal/plan"
	"github.com/frahmantamala/study-tracker/internal/transport/middleware"
	"github.com/frahmantamala/study-tracker/internal/transport/swagger"
	"github.com/frahmantamala/study-tracker/internal/user"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth          *auth.Handler
	User          *user.Handler
	Approval      *approval.Handler
	PasswordReset *passwordreset.Handler
	Plan          *plan.Handler
	Catalog       *catalog.Handler
	Health        *HealthHandler
}

type RouterConfig struct {
	AllowedOrigins string
	OpenAPIPath    string
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP name the client.
	TrustProxyHeaders bool
	// Throttle guards the public auth endpoints; nil disables it.
	Throttle *middleware.IPThrottle
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientIP(cfg.TrustProxyHeaders))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.OpenAPIPath != "" {
		router.Get(swagger.SpecURL, swagger.SpecHandler(cfg.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		// public auth endpoints
		r.Group(func(pr chi.Router) {
			if cfg.Throttle != nil {
				pr.Use(cfg.Throttle.Middleware)
			}
			pr.Post("/signup", h.Auth.Signup)
			pr.Post("/login", h.Auth.Login)
			pr.Post("/forgot-password", h.PasswordReset.ForgotPassword)
			pr.Post("/reset-password", h.PasswordReset.ResetPassword)
		})

		r.Get("/catalog", h.Catalog.GetCatalog)

		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.AuthMiddleware)

			ar.Post("/logout", h.Auth.Logout)
			ar.Get("/users/me", h.User.GetCurrentUser)
			ar.Get("/user/status", h.Approval.GetStatus)

			ar.Route("/admin", func(adm chi.Router) {
				adm.Use(middleware.RequireAdmin)
				adm.Get("/approvals", h.Approval.ListApprovals)
				adm.Patch("/approvals", h.Approval.DecideApproval)
			})

			// everything below needs an approved account
			ar.Group(func(gr chi.Router) {
				gr.Use(h.Approval.Gate)

				gr.Route("/plans", func(pr chi.Router) {
					pr.Post("/", h.Plan.CreatePlan)
					pr.Get("/", h.Plan.ListPlans)
					pr.Get("/counts", h.Plan.GetCounts)
					pr.Get("/history", h.Plan.GetHistory)
					pr.Patch("/{id}/done", h.Plan.MarkDone)
					pr.Patch("/{id}/skip", h.Plan.MarkSkipped)
				})

				gr.Get("/catalog/progress", h.Catalog.GetProgress)
				gr.Post("/catalog/problems/{id}/progress", h.Catalog.ToggleProgress)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
}
