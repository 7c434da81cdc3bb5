package recgo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	mutations       *prometheus.CounterVec
	mutationSeconds *prometheus.HistogramVec
	searches        *prometheus.CounterVec
	searchSeconds   prometheus.Histogram
	rebuilds        *prometheus.CounterVec
	rebuildSeconds  prometheus.Histogram
}

// NewPrometheusCollector creates a PrometheusCollector and registers its
// metrics with reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recgo",
			Name:      "mutations_total",
			Help:      "Total store mutations by operation and status.",
		}, []string{"op", "status"}),
		mutationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recgo",
			Name:      "mutation_duration_seconds",
			Help:      "Mutation latency including index maintenance.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recgo",
			Name:      "searches_total",
			Help:      "Total index searches by status.",
		}, []string{"status"}),
		searchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recgo",
			Name:      "search_duration_seconds",
			Help:      "Search latency including result hydration.",
			Buckets:   prometheus.DefBuckets,
		}),
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recgo",
			Name:      "index_rebuilds_total",
			Help:      "Total index rebuilds by status.",
		}, []string{"status"}),
		rebuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recgo",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	for _, col := range []prometheus.Collector{
		c.mutations, c.mutationSeconds, c.searches, c.searchSeconds, c.rebuilds, c.rebuildSeconds,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordMutation implements MetricsCollector.
func (c *PrometheusCollector) RecordMutation(op string, duration time.Duration, err error) {
	c.mutations.WithLabelValues(op, status(err)).Inc()
	c.mutationSeconds.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordSearch implements MetricsCollector.
func (c *PrometheusCollector) RecordSearch(duration time.Duration, results int, err error) {
	c.searches.WithLabelValues(status(err)).Inc()
	c.searchSeconds.Observe(duration.Seconds())
}

// RecordRebuild implements MetricsCollector.
func (c *PrometheusCollector) RecordRebuild(duration time.Duration, err error) {
	c.rebuilds.WithLabelValues(status(err)).Inc()
	c.rebuildSeconds.Observe(duration.Seconds())
}
