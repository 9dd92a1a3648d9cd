package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIPThrottle_Allow(t *testing.T) {
	t.Run("requests within the limit pass", func(t *testing.T) {
		throttle := NewIPThrottle(5, time.Minute, quietLogger())
		defer throttle.Stop()

		for i := 0; i < 5; i++ {
			assert.True(t, throttle.Allow("10.0.0.1"), fmt.Sprintf("request %d should pass", i+1))
		}
		assert.False(t, throttle.Allow("10.0.0.1"), "sixth request should be throttled")
	})

	t.Run("keys are independent", func(t *testing.T) {
		throttle := NewIPThrottle(1, time.Minute, quietLogger())
		defer throttle.Stop()

		assert.True(t, throttle.Allow("10.0.0.1"))
		assert.False(t, throttle.Allow("10.0.0.1"))
		assert.True(t, throttle.Allow("10.0.0.2"))
	})

	t.Run("bucket refills after the window", func(t *testing.T) {
		throttle := NewIPThrottle(1, time.Minute, quietLogger())
		defer throttle.Stop()

		now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
		throttle.now = func() time.Time { return now }

		assert.True(t, throttle.Allow("10.0.0.1"))
		assert.False(t, throttle.Allow("10.0.0.1"))

		now = now.Add(time.Minute)
		assert.True(t, throttle.Allow("10.0.0.1"))
	})

	t.Run("idle buckets are evicted", func(t *testing.T) {
		throttle := NewIPThrottle(1, time.Minute, quietLogger())
		defer throttle.Stop()

		now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
		throttle.now = func() time.Time { return now }
		throttle.Allow("10.0.0.1")

		now = now.Add(3 * time.Minute)
		throttle.evictIdle()

		throttle.mu.Lock()
		defer throttle.mu.Unlock()
		assert.Empty(t, throttle.buckets)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		throttle := NewIPThrottle(1, time.Minute, quietLogger())
		throttle.Stop()
		assert.NotPanics(t, throttle.Stop)
	})
}

func TestIPThrottle_Middleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	newSender := func(trustProxy bool, throttle *IPThrottle) func(forwarded string) *httptest.ResponseRecorder {
		handler := ClientIP(trustProxy)(throttle.Middleware(ok))
		return func(forwarded string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
			req.RemoteAddr = "192.0.2.10:51234"
			if forwarded != "" {
				req.Header.Set("X-Forwarded-For", forwarded)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}
	}

	t.Run("trusted proxy", func(t *testing.T) {
		throttle := NewIPThrottle(2, time.Minute, quietLogger())
		defer throttle.Stop()
		send := newSender(true, throttle)

		assert.Equal(t, http.StatusOK, send("").Code)
		assert.Equal(t, http.StatusOK, send("").Code)

		rec := send("")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"rate limit exceeded, please try again later"}`, rec.Body.String())
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))

		// a different forwarded client has its own bucket
		assert.Equal(t, http.StatusOK, send("203.0.113.7, 10.0.0.1").Code)
	})

	t.Run("rotating forwarded addresses without a trusted proxy", func(t *testing.T) {
		throttle := NewIPThrottle(2, time.Minute, quietLogger())
		defer throttle.Stop()
		send := newSender(false, throttle)

		assert.Equal(t, http.StatusOK, send("203.0.113.1").Code)
		assert.Equal(t, http.StatusOK, send("203.0.113.2").Code)
		assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3").Code)
	})

	t.Run("keys on the remote address without the client ip middleware", func(t *testing.T) {
		throttle := NewIPThrottle(1, time.Minute, quietLogger())
		defer throttle.Stop()
		handler := throttle.Middleware(ok)

		first := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
		first.RemoteAddr = "192.0.2.10:1"
		second := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
		second.RemoteAddr = "192.0.2.10:2"
		second.Header.Set("X-Forwarded-For", "203.0.113.50")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}
