package passwordreset

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
)

// RequestLogRepository is the append-only audit of reset requests.
type RequestLogRepository interface {
	CountSince(ctx context.Context, email string, since time.Time) (int, error)
	Append(ctx context.Context, email string, requestedAt time.Time, ip string) error
}

// RateLimiter bounds reset requests per email over a rolling window.
// Check and Record are separate calls, so concurrent requests at the boundary may overshoot the cap slightly.
type RateLimiter struct {
	logs   RequestLogRepository
	window time.Duration
	max    int
	logger *slog.Logger
	now    func() time.Time
}

func NewRateLimiter(logs RequestLogRepository, window time.Duration, max int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		logs:   logs,
		window: window,
		max:    max,
		logger: logger,
		now:    time.Now,
	}
}

// Check fails once the window already holds max requests. A failed count is treated as zero.
func (l *RateLimiter) Check(ctx context.Context, email string) error {
	count, err := l.logs.CountSince(ctx, email, l.now().Add(-l.window))
	if err != nil {
		l.logger.Error("reset rate limit count failed", "error", err, "email", email)
		count = 0
	}
	if count >= l.max {
		l.logger.Warn("reset rate limit exceeded", "email", email, "count", count, "max", l.max)
		return internal.NewResetRateLimitError(count, l.max, l.window)
	}
	return nil
}

// Record appends a request to the log. Failures are logged only.
func (l *RateLimiter) Record(ctx context.Context, email, ip string) {
	if err := l.logs.Append(ctx, email, l.now(), ip); err != nil {
		l.logger.Error("failed to log reset request", "error", err, "email", email)
	}
}
