// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/locuszoom/pkg/observability"
)

// Metrics holds every collector registered by [New].
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	mapDuration   prometheus.Histogram
	panelRenders  *prometheus.CounterVec
	curtains      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locuszoom",
			Name:      "source_fetches_total",
			Help:      "Data-source requests by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "locuszoom",
			Name:      "source_fetch_seconds",
			Help:      "Data-source request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"namespace"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locuszoom",
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locuszoom",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		mapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locuszoom",
			Name:      "plot_map_seconds",
			Help:      "Time to fetch and render every panel for a region.",
			Buckets:   prometheus.DefBuckets,
		}),
		panelRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locuszoom",
			Name:      "panel_renders_total",
			Help:      "Panel render attempts by outcome.",
		}, []string{"outcome"}),
		curtains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locuszoom",
			Name:      "panel_curtains_total",
			Help:      "Panel curtains raised by panel id.",
		}, []string{"panel"}),
	}
	reg.MustRegister(m.fetches, m.fetchDuration, m.cacheEvents, m.cacheBytes,
		m.mapDuration, m.panelRenders, m.curtains)
	return m
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetSourceHooks(sourceHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetPlotHooks(plotHooks{m})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type sourceHooks struct{ m *Metrics }

func (sourceHooks) OnFetchStart(context.Context, string, string) {}

func (h sourceHooks) OnFetchComplete(_ context.Context, ns, _ string, _ int, d time.Duration, err error) {
	h.m.fetches.WithLabelValues(ns, outcome(err)).Inc()
	h.m.fetchDuration.WithLabelValues(ns).Observe(d.Seconds())
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

type plotHooks struct{ m *Metrics }

func (plotHooks) OnMapStart(context.Context, string, string, int64, int64) {}

func (h plotHooks) OnMapComplete(_ context.Context, _ string, d time.Duration, _ int) {
	h.m.mapDuration.Observe(d.Seconds())
}

func (h plotHooks) OnPanelRender(_ context.Context, _, _ string, _ time.Duration, err error) {
	h.m.panelRenders.WithLabelValues(outcome(err)).Inc()
}

func (h plotHooks) OnCurtain(_ context.Context, _, panelID string, _ error) {
	h.m.curtains.WithLabelValues(panelID).Inc()
}
