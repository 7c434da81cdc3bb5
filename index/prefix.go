package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/internal/fs"
)

// shortPartition is the second-level partition name for values shorter than
// two runes.
const shortPartition = "_"

// Prefix is a two-level trie-partitioned index for prefix search.
type Prefix struct {
	dir   string
	fsys  fs.FileSystem
	codec codec.Codec
}

// NewPrefix creates a prefix index rooted at dir.
func NewPrefix(dir string, opts ...Option) (*Prefix, error) {
	s := applyOptions(opts)

	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, cause: err}
	}

	return &Prefix{dir: dir, fsys: s.fsys, codec: s.codec}, nil
}

// Name implements Index.
func (p *Prefix) Name() string { return filepath.Base(p.dir) }

// partitionRune maps a rune to a filesystem-safe partition directory/file
// name. Collapsing unsafe runes to "_" only widens a partition, never
// misroutes a key: the full normalized value remains the key inside the file.
func partitionRune(r rune) string {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return string(r)
	}
	return shortPartition
}

// path returns the partition file for a normalized, non-empty value.
func (p *Prefix) path(norm string) string {
	runes := []rune(norm)
	p1 := partitionRune(runes[0])
	p2 := shortPartition
	if len(runes) >= 2 {
		p2 = partitionRune(runes[1])
	}
	return filepath.Join(p.dir, p1, p2+FileExt)
}

// Add implements Index.
func (p *Prefix) Add(ctx context.Context, value, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm := Normalize(value)
	if norm == "" {
		return nil
	}

	path := p.path(norm)
	part, err := loadPartition(p.fsys, p.codec, p.Name(), path)
	if err != nil {
		return err
	}
	if !part.add(norm, id) {
		return nil
	}
	return storePartition(p.fsys, p.codec, path, part)
}

// Remove implements Index.
func (p *Prefix) Remove(ctx context.Context, value, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm := Normalize(value)
	if norm == "" {
		return nil
	}

	path := p.path(norm)
	part, err := loadPartition(p.fsys, p.codec, p.Name(), path)
	if err != nil {
		return err
	}
	if !part.remove(norm, id) {
		return nil
	}
	return storePartition(p.fsys, p.codec, path, part)
}

// Drop implements Index.
func (p *Prefix) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.fsys.RemoveAll(p.dir); err != nil {
		return &StorageError{Op: "drop", Path: p.dir, cause: err}
	}
	if err := p.fsys.MkdirAll(p.dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: p.dir, cause: err}
	}
	return nil
}

// QueryPrefix returns the ids of all postings whose key starts with prefix.
//
// For prefixes of two or more runes exactly one partition file is loaded.
// A single-rune prefix scans the children of its first-level directory, which
// is bounded by the second-level fan-out, not by the dataset size. An empty
// prefix matches nothing.
func (p *Prefix) QueryPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := Normalize(prefix)
	if norm == "" {
		return nil, nil
	}

	if len([]rune(norm)) >= 2 {
		part, err := loadPartition(p.fsys, p.codec, p.Name(), p.path(norm))
		if err != nil {
			return nil, err
		}
		return collectPrefix(part, norm), nil
	}

	// One-rune prefix: union every second-level partition under the single
	// first-level directory, including the short-value partition.
	firstDir := filepath.Join(p.dir, partitionRune([]rune(norm)[0]))
	entries, err := p.fsys.ReadDir(firstDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "readdir", Path: firstDir, cause: err}
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, FileExt) {
			continue
		}
		part, err := loadPartition(p.fsys, p.codec, p.Name(), filepath.Join(firstDir, name))
		if err != nil {
			return nil, err
		}
		ids = append(ids, collectPrefix(part, norm)...)
	}

	return dedupe(ids), nil
}

func collectPrefix(part partition, norm string) []string {
	var ids []string
	for key, posting := range part {
		if strings.HasPrefix(key, norm) {
			ids = append(ids, posting...)
		}
	}
	return dedupe(ids)
}

// dedupe sorts and de-duplicates a result id set.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
