package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/approval"
	approvalPostgres "github.com/frahmantamala/study-tracker/internal/approval/postgres"
	"github.com/frahmantamala/study-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/study-tracker/internal/auth/postgres"
	"github.com/frahmantamala/study-tracker/internal/catalog"
	catalogPostgres "github.com/frahmantamala/study-tracker/internal/catalog/postgres"
	"github.com/frahmantamala/study-tracker/internal/core/events"
	"github.com/frahmantamala/study-tracker/internal/notification"
	"github.com/frahmantamala/study-tracker/internal/passwordreset"
	passwordresetPostgres "github.com/frahmantamala/study-tracker/internal/passwordreset/postgres"
	"github.com/frahmantamala/study-tracker/internal/plan"
	planPostgres "github.com/frahmantamala/study-tracker/internal/plan/postgres"
	"github.com/frahmantamala/study-tracker/internal/session"
	"github.com/frahmantamala/study-tracker/internal/transport/middleware"
	"github.com/frahmantamala/study-tracker/internal/transport/rest"
	"github.com/frahmantamala/study-tracker/internal/user"
	userPostgres "github.com/frahmantamala/study-tracker/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AppDeps are the external resources the application is assembled from.
type AppDeps struct {
	Config *internal.Config
	// DB backs the gorm repositories, SQL the sqlx ones; both share one pool in production.
	DB     *gorm.DB
	SQL    *sqlx.DB
	Redis  *redis.Client
	Mailer notification.Mailer
	Logger *slog.Logger
}

// App is the assembled HTTP application plus the background pieces that need draining on shutdown.
type App struct {
	Handler    http.Handler
	Bus        *events.EventBus
	Dispatcher *notification.Dispatcher
	Throttle   *middleware.IPThrottle
	Users      *user.Service
	logger     *slog.Logger
}

func NewApp(deps AppDeps) (*App, error) {
	cfg := deps.Config
	lg := deps.Logger
	if lg == nil {
		lg = slog.Default()
	}

	calendar, err := plan.NewCalendar(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}

	templates, err := notification.NewTemplates(cfg.Mail.AppName, cfg.App.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	mailer := deps.Mailer
	if mailer == nil {
		mailer = notification.NewLogMailer(lg)
	}

	bus := events.NewEventBus(lg)
	dispatcher := notification.NewDispatcher(mailer, notification.DispatcherConfig{
		MaxWorkers:   cfg.Mail.Workers,
		JobQueueSize: cfg.Mail.QueueSize,
		SendTimeout:  cfg.Mail.Timeout,
	}, lg)
	notifier := notification.NewNotifier(dispatcher, templates, func(token string) string {
		return passwordreset.ResetLink(cfg.App.BaseURL, token)
	}, lg)
	notifier.RegisterEventHandlers(bus)

	var denylist session.Denylist = session.NoopDenylist{}
	if deps.Redis != nil {
		denylist = session.NewRedisDenylist(deps.Redis)
	} else {
		lg.Warn("redis not configured, logout will not revoke issued sessions")
	}

	userRepo := userPostgres.NewUserRepository(deps.DB)
	approvalRepo := approvalPostgres.NewApprovalRepository(deps.DB)
	catalogRepo := catalogPostgres.NewCatalogRepository(deps.DB)

	userService := user.NewService(userRepo, lg)
	authService := auth.NewService(auth.Dependencies{
		Accounts:   authPostgres.NewAccountRepository(deps.DB),
		Users:      userRepo,
		Approvals:  approvalRepo,
		Issuer:     auth.NewJWTSessionIssuer(cfg.Security.SessionSecret, cfg.Security.SessionMaxAge),
		Denylist:   denylist,
		Publisher:  bus,
		Admin:      cfg.Admin,
		BCryptCost: cfg.Security.BCryptCost,
		Logger:     lg,
	})
	approvalService := approval.NewService(approvalRepo, userService, bus, lg)

	limiter := passwordreset.NewRateLimiter(
		passwordresetPostgres.NewRequestLogRepository(deps.SQL),
		cfg.PasswordReset.Window,
		cfg.PasswordReset.MaxRequests,
		lg,
	)
	resetService := passwordreset.NewService(
		passwordresetPostgres.NewTokenRepository(deps.DB),
		userRepo,
		limiter,
		bus,
		cfg.PasswordReset.TokenTTL,
		cfg.Security.BCryptCost,
		lg,
	)

	planService := plan.NewService(planPostgres.NewPlanRepository(deps.DB), calendar, lg)
	catalogService := catalog.NewService(catalogRepo, catalogRepo, lg)

	checks := map[string]rest.Pinger{
		"postgres": rest.PingFunc(func(ctx context.Context) error { return deps.SQL.PingContext(ctx) }),
		"redis":    nil,
	}
	if deps.Redis != nil {
		checks["redis"] = rest.PingFunc(func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() })
	}

	throttle := middleware.NewIPThrottle(cfg.Server.AuthThrottleRate, cfg.Server.AuthThrottleWindow, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:          auth.NewHandler(authService),
		User:          user.NewHandler(userService),
		Approval:      approval.NewHandler(approvalService),
		PasswordReset: passwordreset.NewHandler(resetService),
		Plan:          plan.NewHandler(planService),
		Catalog:       catalog.NewHandler(catalogService),
		Health:        rest.NewHealthHandler(checks),
	}, rest.RouterConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		OpenAPIPath:       cfg.Server.OpenAPIPath,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		Throttle:          throttle,
	}, lg)

	return &App{
		Handler:    router,
		Bus:        bus,
		Dispatcher: dispatcher,
		Throttle:   throttle,
		Users:      userService,
		logger:     lg,
	}, nil
}

// Close waits for in-flight event handlers, then drains the mail queue.
func (a *App) Close(ctx context.Context) error {
	a.Throttle.Stop()
	a.Bus.Wait()
	if err := a.Dispatcher.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("email dispatcher shutdown: %w", err)
	}
	return nil
}
