package httpserver

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"covidtracking.org/statecards/internal/definitions"
)

// Metrics is the server's Prometheus instrumentation. It also observes panel
// opens so repeated identical opens are counted without changing the page.
type Metrics struct {
	registry        *prometheus.Registry
	pagesRendered   *prometheus.CounterVec
	definitionOpens *prometheus.CounterVec
	activePages     prometheus.Gauge
	datasetRecords  prometheus.Gauge
	datasetReloads  *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		pagesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statecards",
			Name:      "pages_rendered_total",
			Help:      "State pages rendered, by jurisdiction.",
		}, []string{"state"}),
		definitionOpens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statecards",
			Name:      "definition_opens_total",
			Help:      "Definitions panel opens, by highlighted field and whether the query repeated the one shown.",
		}, []string{"highlight", "repeated"}),
		activePages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "statecards",
			Name:      "active_pages",
			Help:      "Mounted page sessions.",
		}),
		datasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "statecards",
			Name:      "dataset_records",
			Help:      "Records in the current dataset snapshot.",
		}),
		datasetReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statecards",
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts, by result.",
		}, []string{"result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PanelOpened implements panel.Observer.
func (m *Metrics) PanelOpened(_ string, q definitions.Query, repeated bool) {
	m.definitionOpens.WithLabelValues(q.Highlight(), strconv.FormatBool(repeated)).Inc()
}

// PageRendered counts a rendered state page.
func (m *Metrics) PageRendered(state string) {
	m.pagesRendered.WithLabelValues(state).Inc()
}

// SetActivePages records the number of mounted page sessions.
func (m *Metrics) SetActivePages(n int) {
	m.activePages.Set(float64(n))
}

// DatasetReloaded records a reload attempt.
func (m *Metrics) DatasetReloaded(records int, err error) {
	if err != nil {
		m.datasetReloads.WithLabelValues("error").Inc()
		return
	}
	m.datasetReloads.WithLabelValues("ok").Inc()
	m.datasetRecords.Set(float64(records))
}
