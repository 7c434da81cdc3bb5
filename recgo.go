package recgo

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/store"
)

// Config locates a store on disk. It is an explicit value handed to the
// facade constructors; recgo keeps no global state.
type Config struct {
	// BaseDir is the root of the store. Record files live under
	// BaseDir/data/<entity>/, index partitions under
	// BaseDir/index/<entity>/<field>/.
	BaseDir string
}

var errNoBaseDir = errors.New("config: BaseDir must not be empty")

func (c Config) validate() error {
	if c.BaseDir == "" {
		return errNoBaseDir
	}
	return nil
}

func (c Config) dataDir(entity string) string {
	return filepath.Join(c.BaseDir, "data", entity)
}

func (c Config) indexDir(entity, field string) string {
	return filepath.Join(c.BaseDir, "index", entity, field)
}

// book bundles the entity store and index manager shared by the facades and
// enforces the mutation protocol: validate (done by the facade), store
// mutation to completion, then index maintenance. A crash in between leaves
// a stale index, never torn record data; Rebuild repairs staleness.
type book[T any] struct {
	mu      sync.Mutex // serializes mutations per entity type
	store   *store.Store[T]
	manager *index.Manager[T]

	logger             *Logger
	metrics            MetricsCollector
	hydrateConcurrency int
}

func (b *book[T]) create(ctx context.Context, v T) (store.Record[T], error) {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.store.Create(ctx, v)
	if err == nil {
		err = b.manager.OnCreate(ctx, rec.ID, rec.Value)
	}

	b.metrics.RecordMutation("create", time.Since(start), err)
	b.logger.LogMutation(ctx, "create", rec.ID, err)

	if err != nil {
		return store.Record[T]{}, translateError(err)
	}
	return rec, nil
}

func (b *book[T]) read(ctx context.Context, id string) (store.Record[T], error) {
	rec, err := b.store.Read(ctx, id)
	if err != nil {
		return store.Record[T]{}, translateError(err)
	}
	return rec, nil
}

func (b *book[T]) update(ctx context.Context, id string, v T) (store.Record[T], error) {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	var rec store.Record[T]
	old, err := b.store.Read(ctx, id)
	if err == nil {
		rec, err = b.store.Update(ctx, id, v)
	}
	if err == nil {
		err = b.manager.OnUpdate(ctx, id, old.Value, rec.Value)
	}

	b.metrics.RecordMutation("update", time.Since(start), err)
	b.logger.LogMutation(ctx, "update", id, err)

	if err != nil {
		return store.Record[T]{}, translateError(err)
	}
	return rec, nil
}

func (b *book[T]) delete(ctx context.Context, id string) error {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	old, err := b.store.Read(ctx, id)
	if err == nil {
		err = b.store.Delete(ctx, id)
	}
	if err == nil {
		err = b.manager.OnDelete(ctx, id, old.Value)
	}

	b.metrics.RecordMutation("delete", time.Since(start), err)
	b.logger.LogMutation(ctx, "delete", id, err)

	return translateError(err)
}

func (b *book[T]) list(ctx context.Context) ([]store.Record[T], error) {
	recs, err := b.store.List(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return recs, nil
}

func (b *book[T]) rebuild(ctx context.Context) error {
	start := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.manager.Rebuild(ctx, b.store)

	b.metrics.RecordRebuild(time.Since(start), err)
	b.logger.LogRebuild(ctx, err)

	return translateError(err)
}

// search runs an index query, repairs a corrupt index with one rebuild and
// retry, and hydrates the matched ids into full records. Zero matches are an
// empty result, not an error.
func (b *book[T]) search(ctx context.Context, indexName, query string, fn func(context.Context) ([]string, error)) ([]store.Record[T], error) {
	start := time.Now()

	recs, err := b.searchInner(ctx, fn)

	b.metrics.RecordSearch(time.Since(start), len(recs), err)
	b.logger.LogSearch(ctx, indexName, query, len(recs), err)

	if err != nil {
		return nil, translateError(err)
	}
	return recs, nil
}

func (b *book[T]) searchInner(ctx context.Context, fn func(context.Context) ([]string, error)) ([]store.Record[T], error) {
	ids, err := fn(ctx)

	var corrupt *index.CorruptIndexError
	if errors.As(err, &corrupt) {
		b.logger.WarnContext(ctx, "corrupt index partition, rebuilding",
			"index", corrupt.Index,
			"path", corrupt.Path,
		)
		if err := b.rebuild(ctx); err != nil {
			return nil, err
		}
		ids, err = fn(ctx)
	}
	if err != nil {
		return nil, err
	}

	return b.hydrate(ctx, ids)
}

// hydrate reads the records for ids with bounded concurrency. Ids whose
// record vanished since the index was written (a stale posting) are skipped.
func (b *book[T]) hydrate(ctx context.Context, ids []string) ([]store.Record[T], error) {
	if len(ids) == 0 {
		return nil, nil
	}

	recs := make([]store.Record[T], len(ids))
	found := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.hydrateConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := b.store.Read(gctx, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil
				}
				return err
			}
			recs[i] = rec
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := recs[:0]
	for i := range recs {
		if found[i] {
			out = append(out, recs[i])
		}
	}
	return out, nil
}
