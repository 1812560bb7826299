// Package metrics exposes Prometheus metrics for the HTTP layer and the store.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entities *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reunite_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reunite_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reunite_store_entities",
			Help: "Stored entities by type.",
		}, []string{"entity"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.entities,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetCounts updates the entity gauges.
func (m *Metrics) SetCounts(c store.Counts) {
	m.entities.WithLabelValues("users").Set(float64(c.Users))
	m.entities.WithLabelValues("items").Set(float64(c.Items))
	m.entities.WithLabelValues("messages").Set(float64(c.Messages))
}

// counter is the part of store.Store the gauge refresher needs.
type counter interface {
	Count(ctx context.Context) (store.Counts, error)
}

// WatchStore refreshes the entity gauges every interval until ctx is done.
func (m *Metrics) WatchStore(ctx context.Context, s counter, interval time.Duration) error {
	refresh := func() {
		c, err := s.Count(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("failed to count store entities", "error", err)
			}
			return
		}
		m.SetCounts(c)
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		}
	}
}
