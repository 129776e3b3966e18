// Package httptransport assembles the wallet API from the feature handlers.
// Handlers own their routes; this package only decides which middleware
// guards which group.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"identrust/pkg/platform/middleware/auth"
	"identrust/pkg/platform/middleware/device"
	"identrust/pkg/platform/middleware/metadata"
	"identrust/pkg/platform/middleware/request"
	"identrust/pkg/platform/middleware/requesttime"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
)

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config lists the handlers per access group.
type Config struct {
	Logger         *slog.Logger
	Validator      auth.JWTValidator
	RequestMetrics *request.Metrics
	// Metrics, when set, is served on GET /metrics.
	Metrics        http.Handler
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	// Public routes need no bearer token.
	Public []Registrar
	// Authenticated routes require a bearer token and JSON request bodies.
	Authenticated []Registrar
	// Uploads require a bearer token but accept any body type. Handlers in
	// this group bound their own bodies.
	Uploads []Registrar
}

// NewRouter wires every endpoint with the shared middleware stack.
func NewRouter(cfg Config) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware().Handler)
	r.Use(device.Device)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.RequestMetrics, routePattern))
	r.Use(request.Timeout(cfg.RequestTimeout))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
		r.Use(request.ContentTypeJSON)
		for _, h := range cfg.Public {
			h.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Validator, cfg.Logger))
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
		r.Use(request.ContentTypeJSON)
		for _, h := range cfg.Authenticated {
			h.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Uploads {
			h.Register(r)
		}
	})

	return r
}

// routePattern reports the matched chi pattern so ids stay out of metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
