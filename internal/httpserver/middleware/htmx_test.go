package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequireHTMX(t *testing.T) {
	handler := HTMX()(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsHTMXRequest(r.Context()) {
			t.Fatalf("expected htmx info in context")
		}
		if got := HTMXInfoFromContext(r.Context()).Target; got != "definitions-panel" {
			t.Fatalf("expected target definitions-panel, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("plain navigation is hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pages/x/definitions", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("htmx request passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pages/x/definitions", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "definitions-panel")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if rr.Header().Get("Vary") != "HX-Request" {
			t.Fatalf("expected Vary header")
		}
	})
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store, got %q", rr.Header().Get("Cache-Control"))
	}
}

func TestCacheAssets(t *testing.T) {
	rr := httptest.NewRecorder()
	CacheAssets(24*time.Hour)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/statecards.css", nil))
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=86400, stale-while-revalidate=86400" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
}
