package index

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/time/rate"

	"github.com/hupe1980/recgo/store"
)

// Binding ties an index to the record field it covers. Values extracts the
// raw field values from a payload; multi-valued fields (phones, emails,
// tags) return one entry per value.
type Binding[T any] struct {
	Index  Index
	Values func(T) []string
}

// Source enumerates the authoritative records an index set is derived from.
// *store.Store implements it.
type Source[T any] interface {
	List(ctx context.Context) ([]store.Record[T], error)
}

type managerSettings struct {
	logger  *slog.Logger
	limiter *rate.Limiter
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerSettings)

// WithLogger overrides the manager's logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(s *managerSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRebuildLimiter throttles rebuild I/O to limiter's rate (records per
// second). Rebuild is background maintenance; throttling keeps it from
// saturating the disk under a live workload.
func WithRebuildLimiter(limiter *rate.Limiter) ManagerOption {
	return func(s *managerSettings) {
		s.limiter = limiter
	}
}

// Manager keeps a set of field indexes in step with store mutations.
//
// The caller must complete the store mutation before invoking the matching
// hook: a crash between the two leaves the indexes stale (repairable via
// Rebuild) but never the record data.
type Manager[T any] struct {
	bindings []Binding[T]
	logger   *slog.Logger
	limiter  *rate.Limiter
}

// NewManager creates a Manager over the given bindings.
func NewManager[T any](bindings []Binding[T], opts ...ManagerOption) *Manager[T] {
	s := managerSettings{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Manager[T]{bindings: bindings, logger: s.logger, limiter: s.limiter}
}

// OnCreate adds every indexed field value of a freshly created record.
func (m *Manager[T]) OnCreate(ctx context.Context, id string, v T) error {
	for _, b := range m.bindings {
		for _, value := range b.Values(v) {
			if err := b.Index.Add(ctx, value, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// OnUpdate reconciles the indexes after a payload change. Only fields whose
// normalized value set actually changed touch disk; postings for removed
// values are dropped before postings for added values are written.
func (m *Manager[T]) OnUpdate(ctx context.Context, id string, old, updated T) error {
	for _, b := range m.bindings {
		oldSet := normalizedSet(b.Values(old))
		newSet := normalizedSet(b.Values(updated))

		for _, value := range oldSet {
			if !slices.Contains(newSet, value) {
				if err := b.Index.Remove(ctx, value, id); err != nil {
					return err
				}
			}
		}
		for _, value := range newSet {
			if !slices.Contains(oldSet, value) {
				if err := b.Index.Add(ctx, value, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// OnDelete removes every indexed field value of a deleted record.
func (m *Manager[T]) OnDelete(ctx context.Context, id string, v T) error {
	for _, b := range m.bindings {
		for _, value := range b.Values(v) {
			if err := b.Index.Remove(ctx, value, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rebuild discards every partition of every bound index and re-derives them
// from src. It is idempotent and safe to call at any time: it is the
// designated recovery path after a crash between a store mutation and its
// index hook, or after a partition is detected as corrupt.
func (m *Manager[T]) Rebuild(ctx context.Context, src Source[T]) error {
	for _, b := range m.bindings {
		if err := b.Index.Drop(ctx); err != nil {
			return err
		}
	}

	recs, err := src.List(ctx)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := m.OnCreate(ctx, rec.ID, rec.Value); err != nil {
			return err
		}
	}

	m.logger.Info("indexes rebuilt", "records", len(recs), "indexes", len(m.bindings))

	return nil
}

// normalizedSet maps values through Normalize, dropping empties and
// duplicates. Comparing normalized sets keeps no-op updates (e.g. a case
// change that maps to the same key) off the disk.
func normalizedSet(values []string) []string {
	var set []string
	for _, v := range values {
		norm := Normalize(v)
		if norm == "" || slices.Contains(set, norm) {
			continue
		}
		set = append(set, norm)
	}
	return set
}
