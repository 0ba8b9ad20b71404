package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeHit            = "hit"
	outcomeMissingSection = "missing_section"
	outcomeMissingKey     = "missing_key"
)

// Metrics holds the Prometheus collectors exported by the API.
// Labels stay low-cardinality: section and key names are never used as labels.
type Metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewMetrics registers the API collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "configd_lookups_total",
			Help: "Total number of property lookups, by outcome.",
		}, []string{"outcome"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "configd_http_requests_total",
			Help: "Total number of HTTP requests, by method and status code.",
		}, []string{"method", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeLookup(outcome string) {
	m.lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRequest(method string, status int) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
