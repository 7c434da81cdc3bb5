package index

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"slices"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/internal/fs"
)

// DefaultPartitions is the default bucket count of a Hash index. It bounds
// the size of each partition file for balanced I/O; 256 keeps partitions
// small for realistic address book sizes while avoiding a directory with
// thousands of near-empty files.
const DefaultPartitions = 256

// Hash is a bucket-partitioned index for exact-match search.
type Hash struct {
	dir        string
	fsys       fs.FileSystem
	codec      codec.Codec
	partitions int
}

// NewHash creates a hash index rooted at dir.
func NewHash(dir string, opts ...Option) (*Hash, error) {
	s := applyOptions(opts)

	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, cause: err}
	}

	return &Hash{dir: dir, fsys: s.fsys, codec: s.codec, partitions: s.partitions}, nil
}

// Name implements Index.
func (h *Hash) Name() string { return filepath.Base(h.dir) }

// path returns the single partition file responsible for a normalized value.
func (h *Hash) path(norm string) string {
	f := fnv.New64a()
	f.Write([]byte(norm))
	bucket := f.Sum64() % uint64(h.partitions)
	return filepath.Join(h.dir, fmt.Sprintf("%02x%s", bucket, FileExt))
}

// Add implements Index.
func (h *Hash) Add(ctx context.Context, value, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm := Normalize(value)
	if norm == "" {
		return nil
	}

	path := h.path(norm)
	part, err := loadPartition(h.fsys, h.codec, h.Name(), path)
	if err != nil {
		return err
	}
	if !part.add(norm, id) {
		return nil
	}
	return storePartition(h.fsys, h.codec, path, part)
}

// Remove implements Index.
func (h *Hash) Remove(ctx context.Context, value, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm := Normalize(value)
	if norm == "" {
		return nil
	}

	path := h.path(norm)
	part, err := loadPartition(h.fsys, h.codec, h.Name(), path)
	if err != nil {
		return err
	}
	if !part.remove(norm, id) {
		return nil
	}
	return storePartition(h.fsys, h.codec, path, part)
}

// Drop implements Index.
func (h *Hash) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := h.fsys.RemoveAll(h.dir); err != nil {
		return &StorageError{Op: "drop", Path: h.dir, cause: err}
	}
	if err := h.fsys.MkdirAll(h.dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: h.dir, cause: err}
	}
	return nil
}

// QueryExact returns the posting for the normalized value, loading exactly
// one partition file. An absent key yields an empty result, not an error;
// other keys hashed to the same bucket are filtered out by the key lookup.
func (h *Hash) QueryExact(ctx context.Context, value string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := Normalize(value)
	if norm == "" {
		return nil, nil
	}

	part, err := loadPartition(h.fsys, h.codec, h.Name(), h.path(norm))
	if err != nil {
		return nil, err
	}

	return slices.Clone(part[norm]), nil
}
