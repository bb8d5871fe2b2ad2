package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	saldolog "saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
)

// HealthBody is returned by the liveness routes.
const HealthBody = "Bot Online ✅"

// WebhookPath must match the path registered with setWebhook.
const WebhookPath = "/webhook"

// Options wires the server. Webhook may be nil when the bot long-polls; the
// server then only answers health checks.
type Options struct {
	Addr               string
	Webhook            http.Handler
	WebhookSecret      string
	RateLimitPerMinute int
	// Ready reports whether dependencies are usable. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *saldolog.Logger
}

// Server is the bot's HTTP surface.
type Server struct {
	http.Server
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = saldolog.New(saldolog.DefaultConfig())
	}
	logger = logger.WithComponent(saldolog.ComponentHTTP)

	s := &Server{
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		ready:    opts.Ready,
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger.WithComponent(saldolog.ComponentTrace))

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	if opts.Webhook != nil {
		var webhook http.Handler = opts.Webhook
		webhook = s.detector.WebhookSecret(opts.WebhookSecret, logger.WithComponent(saldolog.ComponentSecurity))(webhook)
		webhook = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			logger.WarnContext(r.Context(), "Rate limit exceeded",
				saldolog.FieldClientIP, s.detector.ExtractClientIP(r),
				saldolog.FieldPath, r.URL.Path)
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})(webhook)
		mux.Handle(WebhookPath, saldolog.ComponentMiddleware(saldolog.ComponentTelegram)(webhook))
	}

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(logger.WithComponent(saldolog.ComponentSecurity))(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Webhook updates are answered synchronously.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics gathers counters from the middleware chain.
type Metrics struct {
	Trace     trace.Metrics
	RateLimit ratelimit.Metrics
	Security  security.DetectionMetrics
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Trace:     s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeText(w, http.StatusNotFound, "Not Found")
		return
	}
	handleHealth(w, r)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, HealthBody)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			saldolog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				saldolog.FieldError, err.Error())
			writeText(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeText(w, http.StatusOK, "ready")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
