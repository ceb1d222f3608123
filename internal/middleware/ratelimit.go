package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/reelstore/reelstore/internal/cache"
)

// ClientRateChecker consumes one request from a client's budget.
type ClientRateChecker interface {
	CheckClientRate(ctx context.Context, clientIP string, ratePerSecond, burst int) *cache.RateLimitResult
}

// RateLimitConfig holds configuration for the per-client rate limiter.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Checker ClientRateChecker
	Enabled bool
	RPS     int
	Burst   int
}

// RateLimit returns middleware that rate limits requests per client IP.
// Must run after chi's RealIP so RemoteAddr holds the client address.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Checker == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			result := cfg.Checker.CheckClientRate(r.Context(), ip, cfg.RPS, cfg.Burst)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}

				cfg.Logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded. Retry after ` + strconv.Itoa(retryAfter) + ` seconds."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
