// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sppg"

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	SyncPending prometheus.Gauge
	SyncOps     *prometheus.CounterVec
	SyncDropped prometheus.Counter

	Transitions *prometheus.CounterVec
	StockMoves  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so several instances
// (one per test) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SyncPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "sync", Name: "pending_ops",
			Help: "Remote writes waiting in the retry queue.",
		}),
		SyncOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "ops_total",
			Help: "Remote writes by table, operation and result.",
		}, []string{"table", "op", "result"}),
		SyncDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "dropped_total",
			Help: "Queued remote writes discarded because the queue was full.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "distribution", Name: "transitions_total",
			Help: "Applied distribution lifecycle transitions by target status.",
		}, []string{"status"}),
		StockMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stock", Name: "mutations_total",
			Help: "Stock mutations by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.SyncPending, m.SyncOps, m.SyncDropped,
		m.Transitions, m.StockMoves,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
