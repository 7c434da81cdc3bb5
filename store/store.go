package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/internal/fs"
)

// FileExt is the extension of record files.
const FileExt = ".rec"

// Record is the on-disk envelope around a payload.
type Record[T any] struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Value     T         `json:"value"`
}

type settings struct {
	fsys   fs.FileSystem
	codec  codec.Codec
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*settings)

// WithFileSystem overrides the file system (used for fault injection).
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(s *settings) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithCodec overrides the record codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(s *settings) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is a file-per-record entity store rooted at a single directory.
//
// It is safe for concurrent reads; mutations are expected to be serialized
// by the caller (the facades hold a mutation lock per entity type).
type Store[T any] struct {
	dir    string
	fsys   fs.FileSystem
	codec  codec.Codec
	ids    IDGenerator
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New[T any](dir string, opts ...Option) (*Store[T], error) {
	s := settings{
		fsys:   fs.Default,
		codec:  codec.Default,
		ids:    UUIDGenerator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, cause: err}
	}

	return &Store[T]{
		dir:    dir,
		fsys:   s.fsys,
		codec:  s.codec,
		ids:    s.ids,
		logger: s.logger,
	}, nil
}

// Dir returns the store's root directory.
func (s *Store[T]) Dir() string { return s.dir }

func (s *Store[T]) path(id string) string {
	return filepath.Join(s.dir, id+FileExt)
}

// Create persists v under a fresh id and returns the stored record.
// The write either fully succeeds or leaves no record behind.
func (s *Store[T]) Create(ctx context.Context, v T) (Record[T], error) {
	if err := ctx.Err(); err != nil {
		return Record[T]{}, err
	}

	id := s.ids.NewID()
	path := s.path(id)

	if _, err := s.fsys.Stat(path); err == nil {
		return Record[T]{}, ErrAlreadyExists
	}

	now := time.Now().UTC()
	rec := Record[T]{ID: id, CreatedAt: now, UpdatedAt: now, Value: v}

	if err := s.write(path, rec); err != nil {
		return Record[T]{}, err
	}

	s.logger.Debug("record created", "id", id, "path", path)

	return rec, nil
}

// Read returns the record stored under id.
func (s *Store[T]) Read(ctx context.Context, id string) (Record[T], error) {
	if err := ctx.Err(); err != nil {
		return Record[T]{}, err
	}

	path := s.path(id)

	data, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record[T]{}, ErrNotFound
		}
		return Record[T]{}, &StorageError{Op: "read", Path: path, cause: err}
	}

	var rec Record[T]
	if err := s.codec.Unmarshal(data, &rec); err != nil {
		return Record[T]{}, &CorruptRecordError{Path: path, cause: err}
	}

	return rec, nil
}

// Update overwrites the payload stored under id, preserving the record's
// identity and creation timestamp. The overwrite is atomic.
func (s *Store[T]) Update(ctx context.Context, id string, v T) (Record[T], error) {
	old, err := s.Read(ctx, id)
	if err != nil {
		return Record[T]{}, err
	}

	rec := Record[T]{
		ID:        id,
		CreatedAt: old.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Value:     v,
	}

	if err := s.write(s.path(id), rec); err != nil {
		return Record[T]{}, err
	}

	s.logger.Debug("record updated", "id", id)

	return rec, nil
}

// Delete removes the record stored under id.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(id)

	if _, err := s.fsys.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &StorageError{Op: "stat", Path: path, cause: err}
	}
	if err := s.fsys.Remove(path); err != nil {
		return &StorageError{Op: "delete", Path: path, cause: err}
	}

	s.logger.Debug("record deleted", "id", id)

	return nil
}

// List enumerates every record currently on disk, in filesystem order.
// Callers must not rely on the order for anything beyond completeness.
//
// Files that cannot be decoded are logged and skipped so that a full
// enumeration (and therefore an index rebuild) always terminates.
func (s *Store[T]) List(ctx context.Context) ([]Record[T], error) {
	entries, err := s.fsys.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Path: s.dir, cause: err}
	}

	var recs []Record[T]
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, FileExt) {
			continue
		}

		id := strings.TrimSuffix(name, FileExt)
		rec, err := s.Read(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable record", "path", filepath.Join(s.dir, name), "err", err)
			continue
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

func (s *Store[T]) write(path string, rec Record[T]) error {
	data, err := s.codec.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "encode", Path: path, cause: err}
	}
	if err := fs.WriteFile(s.fsys, path, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: path, cause: err}
	}
	return nil
}
