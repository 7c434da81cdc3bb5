package recgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; a
// Prometheus-backed implementation ships as [PrometheusCollector].
type MetricsCollector interface {
	// RecordMutation is called after each create/update/delete operation.
	// op is one of "create", "update", "delete"; duration is the total time
	// taken including index maintenance; err is nil if successful.
	RecordMutation(op string, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// results is the number of hydrated records returned.
	RecordSearch(duration time.Duration, results int, err error)

	// RecordRebuild is called after each index rebuild.
	RecordRebuild(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMutation(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(time.Duration, int, error)      {}
func (NoopMetricsCollector) RecordRebuild(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MutationCount      atomic.Int64
	MutationErrors     atomic.Int64
	MutationTotalNanos atomic.Int64
	SearchCount        atomic.Int64
	SearchErrors       atomic.Int64
	SearchTotalNanos   atomic.Int64
	SearchResults      atomic.Int64
	RebuildCount       atomic.Int64
	RebuildErrors      atomic.Int64
}

// RecordMutation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMutation(op string, duration time.Duration, err error) {
	b.MutationCount.Add(1)
	b.MutationTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MutationErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(duration time.Duration, results int, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchResults.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(duration time.Duration, err error) {
	b.RebuildCount.Add(1)
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}
