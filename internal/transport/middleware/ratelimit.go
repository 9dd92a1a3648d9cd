package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/transport"
)

const throttledBody = `{"error":"rate limit exceeded, please try again later"}`

// IPThrottle is a fixed-refill token bucket keyed by the address ClientIP resolved, else the remote address.
// Each key gets rate tokens that refill in full once window has passed since the last refill.
type IPThrottle struct {
	buckets map[string]*bucket
	logger  *slog.Logger
	stopC   chan struct{}
	stop    sync.Once
	rate    int
	window  time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

func NewIPThrottle(rate int, window time.Duration, logger *slog.Logger) *IPThrottle {
	t := &IPThrottle{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		logger:  logger,
		stopC:   make(chan struct{}),
		now:     time.Now,
	}

	go t.sweep()

	return t
}

func (t *IPThrottle) sweep() {
	ticker := time.NewTicker(t.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.evictIdle()
		case <-t.stopC:
			return
		}
	}
}

func (t *IPThrottle) evictIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, b := range t.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > t.window*2 {
			delete(t.buckets, key)
		}
		b.mu.Unlock()
	}
}

func (t *IPThrottle) Stop() {
	t.stop.Do(func() { close(t.stopC) })
}

func (t *IPThrottle) Allow(key string) bool {
	t.mu.Lock()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: t.rate, lastRefill: t.now()}
		t.buckets[key] = b
	}
	t.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := t.now()
	if now.Sub(b.lastRefill) >= t.window {
		b.tokens = t.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (t *IPThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := internal.ClientIPFromContext(r.Context())
		if key == "" {
			key = transport.RemoteIP(r)
		}

		if !t.Allow(key) {
			t.logger.Warn("rate limit exceeded",
				"ip", key,
				"method", r.Method,
				"path", r.URL.Path,
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter(t.window))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(throttledBody))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
