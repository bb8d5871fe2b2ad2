package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	saldolog "saldo/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the request ID in and out.
	HeaderRequestID = "X-Request-ID"
)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *saldolog.StructuredLogger
	base      *saldolog.Logger
	metrics   *Metrics
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // in microseconds, exponentially smoothed
}

// NewMiddleware creates a new trace middleware. A nil logger uses the
// process default.
func NewMiddleware(extractIP func(*http.Request) string, logger *saldolog.Logger) *Middleware {
	if logger == nil {
		logger = saldolog.FromContext(context.Background()).WithComponent(saldolog.ComponentTrace)
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    saldolog.NewStructuredLogger(logger),
		base:      logger,
		metrics:   &Metrics{},
	}
}

// Middleware returns HTTP middleware for request tracing. The request
// context carries the request ID and a logger tagged with it.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	inner := saldolog.Middleware(m.base)(
		saldolog.RequestIDMiddleware(func(r *http.Request) string { return GetRequestID(r.Context()) })(next))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		m.logger.LogHTTPStart(ctx, r, clientIP)
		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		inner.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.observe(duration)
		m.logger.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
		slog.DebugContext(ctx, "Request timing", saldolog.FieldRequestID, requestID, saldolog.FieldDurationHuman, duration.String())
	})
}

func (m *Middleware) observe(d time.Duration) {
	us := d.Microseconds()
	for {
		old := atomic.LoadInt64(&m.metrics.AverageResponseTime)
		next := us
		if old != 0 {
			next = (old*7 + us) / 8
		}
		if atomic.CompareAndSwapInt64(&m.metrics.AverageResponseTime, old, next) {
			return
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&m.metrics.TotalRequests),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}
