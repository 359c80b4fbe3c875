// Package ui holds the HTTP handlers for state pages and their fragments.
package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"covidtracking.org/statecards/internal/cards"
	"covidtracking.org/statecards/internal/dataset"
	"covidtracking.org/statecards/internal/definitions"
	"covidtracking.org/statecards/internal/observability"
	"covidtracking.org/statecards/internal/panel"
	"covidtracking.org/statecards/internal/templates/statepage"
)

var tracer = otel.Tracer("covidtracking.org/statecards/internal/httpserver/ui")

// PageMetrics receives page lifecycle counts.
type PageMetrics interface {
	PageRendered(state string)
	SetActivePages(n int)
}

// Dependencies collects the services required by the UI handlers.
type Dependencies struct {
	Store    *dataset.Store
	Glossary *definitions.Glossary
	Registry *panel.Registry
	Metrics  PageMetrics
}

// Handlers exposes HTTP handlers for state pages and fragments.
type Handlers struct {
	store    *dataset.Store
	glossary *definitions.Glossary
	registry *panel.Registry
	metrics  PageMetrics
}

type noopMetrics struct{}

func (noopMetrics) PageRendered(string) {}
func (noopMetrics) SetActivePages(int)  {}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	store := deps.Store
	if store == nil {
		store = dataset.NewStore(dataset.NewStaticSource())
	}
	registry := deps.Registry
	if registry == nil {
		registry = panel.NewRegistry(panel.RegistryConfig{})
	}
	var metrics PageMetrics = noopMetrics{}
	if deps.Metrics != nil {
		metrics = deps.Metrics
	}
	return &Handlers{
		store:    store,
		glossary: deps.Glossary,
		registry: registry,
		metrics:  metrics,
	}
}

// StatePage renders a jurisdiction page and mounts its page session.
func (h *Handlers) StatePage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ui.StatePage")
	defer span.End()
	logger := observability.FromContext(ctx)

	slug := strings.ToLower(chi.URLParam(r, "slug"))
	span.SetAttributes(attribute.String("state", slug))

	rec, err := h.store.Get(slug)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load record")
		logger.Error("state page: load record failed", zap.String("state", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	list, err := cards.ForRecord(rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assemble cards")
		logger.Error("state page: assemble cards failed", zap.String("state", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	controller := h.registry.Mount()
	h.metrics.PageRendered(slug)
	h.metrics.SetActivePages(h.registry.Len())
	span.SetAttributes(attribute.String("page.id", controller.ID()), attribute.Int("cards", len(list)))

	name := rec.Name
	if name == "" {
		name = strings.ToUpper(slug)
	}
	data := statepage.BuildPageData(name, list, controller.State(), h.glossary, h.store.LoadedAt())
	templ.Handler(statepage.Index(data)).ServeHTTP(w, r.WithContext(ctx))
}

// OpenDefinitions replaces the page's panel query and renders the panel fragment.
func (h *Handlers) OpenDefinitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ui.OpenDefinitions")
	defer span.End()

	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	q, err := definitions.NewQuery(r.Form["field"], r.Form.Get("highlight"))
	if err != nil {
		observability.FromContext(ctx).Warn("definitions: invalid query", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("page.id", controller.ID()), attribute.String("definitions.query", q.String()))

	controller.Open(q)
	h.renderPanel(w, r.WithContext(ctx), controller)
}

// DismissDefinitions closes the page's panel.
func (h *Handlers) DismissDefinitions(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.lookup(w, r)
	if !ok {
		return
	}
	controller.Dismiss()
	h.renderPanel(w, r, controller)
}

// UnmountPage tears a page session down.
func (h *Handlers) UnmountPage(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Unmount(chi.URLParam(r, "pageID")) {
		http.NotFound(w, r)
		return
	}
	h.metrics.SetActivePages(h.registry.Len())
	w.WriteHeader(http.StatusNoContent)
}

// Healthz reports liveness and whether a dataset snapshot is loaded.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.store.LoadedAt().IsZero() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("dataset not loaded\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*panel.Controller, bool) {
	controller, ok := h.registry.Lookup(chi.URLParam(r, "pageID"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return controller, true
}

func (h *Handlers) renderPanel(w http.ResponseWriter, r *http.Request, controller *panel.Controller) {
	data := statepage.BuildPanelData(controller.State(), h.glossary)
	templ.Handler(statepage.Panel(data)).ServeHTTP(w, r)
}
