package index

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/internal/fs"
)

// FileExt is the extension of index partition files.
const FileExt = ".idx"

// Index is the mutation surface shared by all index strategies.
type Index interface {
	// Name identifies the index in logs and errors. It is the base name of
	// the index directory, e.g. "first_name".
	Name() string

	// Add records id under the normalized value. Adding an id that is
	// already present is a no-op. Empty values are not indexed.
	Add(ctx context.Context, value, id string) error

	// Remove drops id from the posting of the normalized value. Removing an
	// absent id or value is a no-op. A posting that empties is dropped from
	// its partition; the partition file itself may remain empty on disk.
	Remove(ctx context.Context, value, id string) error

	// Drop removes every partition of the index. It is the first step of a
	// rebuild.
	Drop(ctx context.Context) error
}

// CorruptIndexError indicates an index partition whose content cannot be
// decoded. The index is repairable via a rebuild; the record data is
// unaffected.
type CorruptIndexError struct {
	Index string
	Path  string
	cause error
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index %s: partition %s: %v", e.Index, e.Path, e.cause)
}

func (e *CorruptIndexError) Unwrap() error { return e.cause }

// StorageError indicates an I/O failure while reading or writing a
// partition. The pre-write partition content is preserved.
type StorageError struct {
	Op    string
	Path  string
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("index storage %s %s: %v", e.Op, e.Path, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }

// Normalize is the canonical form of index keys and query arguments: leading
// and trailing whitespace stripped, lower-cased.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

type settings struct {
	fsys       fs.FileSystem
	codec      codec.Codec
	partitions int
}

// Option configures an index.
type Option func(*settings)

// WithFileSystem overrides the file system (used for fault injection).
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(s *settings) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithCodec overrides the partition codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(s *settings) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithPartitions sets the bucket count of a Hash index. It has no effect on
// Prefix indexes. The count is fixed for the lifetime of the index directory:
// reopening with a different count requires a rebuild.
func WithPartitions(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.partitions = n
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		fsys:       fs.Default,
		codec:      codec.Default,
		partitions: DefaultPartitions,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// partition is the decoded content of one partition file: full index key ->
// posting (set of record ids, kept sorted).
type partition map[string][]string

func loadPartition(fsys fs.FileSystem, c codec.Codec, name, path string) (partition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return partition{}, nil
		}
		return nil, &StorageError{Op: "read", Path: path, cause: err}
	}

	p := partition{}
	if err := c.Unmarshal(data, &p); err != nil {
		return nil, &CorruptIndexError{Index: name, Path: path, cause: err}
	}
	return p, nil
}

func storePartition(fsys fs.FileSystem, c codec.Codec, path string, p partition) error {
	data, err := c.Marshal(p)
	if err != nil {
		return &StorageError{Op: "encode", Path: path, cause: err}
	}
	if err := fs.WriteFile(fsys, path, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, cause: err}
	}
	return nil
}

// add inserts id into the posting for key. Reports whether the partition changed.
func (p partition) add(key, id string) bool {
	ids := p[key]
	if slices.Contains(ids, id) {
		return false
	}
	ids = append(ids, id)
	slices.Sort(ids)
	p[key] = ids
	return true
}

// remove drops id from the posting for key. Reports whether the partition changed.
func (p partition) remove(key, id string) bool {
	ids, ok := p[key]
	if !ok {
		return false
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return false
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(p, key)
	} else {
		p[key] = ids
	}
	return true
}
