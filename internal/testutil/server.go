// Package testutil provides helpers for HTTP-level tests of the state pages.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/httpserver"
	"covidtracking.org/statecards/internal/panel"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithStore wires a custom dataset store. The store is reloaded before serving.
func WithStore(store *dataset.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Store = store
	}
}

// WithRegistry wires a page-session registry the test can inspect.
func WithRegistry(registry *panel.Registry) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Registry = registry
	}
}

// WithMetrics wires a metrics instance the test can inspect.
func WithMetrics(metrics *httpserver.Metrics) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Metrics = metrics
	}
}

// NewServer constructs an httptest server running the HTTP stack with the
// sample dataset and bundled glossary.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	glossary, err := definitions.DefaultGlossary()
	if err != nil {
		t.Fatalf("load glossary: %v", err)
	}
	cfg := httpserver.Config{
		Address:  ":0",
		Store:    dataset.NewStore(dataset.NewStaticSource()),
		Glossary: glossary,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := cfg.Store.Reload(context.Background()); err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
