// Package httpserver assembles the chi router serving state pages.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	custommw "covidtracking.org/statecards/internal/httpserver/middleware"
	"covidtracking.org/statecards/internal/httpserver/ui"
	"covidtracking.org/statecards/internal/observability"
	"covidtracking.org/statecards/internal/panel"
	"covidtracking.org/statecards/public"
)

// Config holds runtime options for the HTTP server.
type Config struct {
	Address      string
	Logger       *zap.Logger
	Store        *dataset.Store
	Glossary     *definitions.Glossary
	Registry     *panel.Registry
	Metrics      *Metrics
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = panel.NewRegistry(panel.RegistryConfig{Observer: metrics})
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.TraceMiddleware())
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(60 * time.Second))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, err
	}
	router.With(custommw.CacheAssets(7*24*time.Hour)).Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	handlers := ui.NewHandlers(ui.Dependencies{
		Store:    cfg.Store,
		Glossary: cfg.Glossary,
		Registry: registry,
		Metrics:  metrics,
	})

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", metrics.Handler())
	mountPageRoutes(router, handlers)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 120*time.Second),
	}, nil
}

func mountPageRoutes(router chi.Router, handlers *ui.Handlers) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())

		r.Get("/data/state/{slug}", handlers.StatePage)
		RegisterFragment(r, http.MethodPost, "/pages/{pageID}/definitions", handlers.OpenDefinitions)
		RegisterFragment(r, http.MethodDelete, "/pages/{pageID}/definitions", handlers.DismissDefinitions)
		r.Delete("/pages/{pageID}", handlers.UnmountPage)
	})
}

// RegisterFragment registers a handler that only answers htmx requests with a fragment.
func RegisterFragment(r chi.Router, method, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Method(method, pattern, handler)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
