// Package middleware provides the HTTP middleware shared by the store API
// and the web front.
package middleware

import (
	"context"
	"crypto/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"
	// TraceIDKey is the context key for trace ID.
	TraceIDKey contextKey = "trace_id"
	// ClientIPKey is the context key for the caller's address.
	ClientIPKey contextKey = "client_ip"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// TraceIDHeader carries the trace ID from the web front to the API.
const TraceIDHeader = "X-Trace-ID"

// ForwardedForHeader carries the browser's address from the web front to the
// API so rate limits apply per browser.
const ForwardedForHeader = "X-Forwarded-For"

var (
	traceMu      sync.Mutex
	traceEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewTraceID returns a new lexically sortable trace ID.
func NewTraceID() string {
	traceMu.Lock()
	defer traceMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), traceEntropy).String()
}

// RequestID injects a request ID into each request, reusing X-Request-ID
// when present. An incoming X-Trace-ID is propagated as is.
func RequestID(next http.Handler) http.Handler {
	return requestID(next, false)
}

// RequestIDWithTrace behaves like RequestID but starts a new trace when the
// request carries none. The web front uses it so every page fetch it makes
// against the API shares one trace ID.
func RequestIDWithTrace(next http.Handler) http.Handler {
	return requestID(next, true)
}

func requestID(next http.Handler, startTrace bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" && startTrace {
			traceID = NewTraceID()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, ClientIPKey, clientIP(r))
		w.Header().Set(RequestIDHeader, requestID)
		if traceID != "" {
			ctx = context.WithValue(ctx, TraceIDKey, traceID)
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceID retrieves the trace ID from context.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetClientIP retrieves the caller's address from context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP returns a copy of ctx carrying ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}
