package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/internal/fs"
)

type contact struct {
	FirstName string   `json:"first_name"`
	Phones    []string `json:"phones,omitempty"`
}

func newTestStore(t *testing.T, opts ...Option) *Store[contact] {
	t.Helper()
	s, err := New[contact](filepath.Join(t.TempDir(), "contacts"), opts...)
	require.NoError(t, err)
	return s
}

func TestStore_CreateRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := contact{FirstName: "John", Phones: []string{"+1555"}}

	rec, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())
	require.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	// Exactly one file exists at the expected path.
	path := filepath.Join(s.Dir(), rec.ID+FileExt)
	_, err = os.Stat(path)
	require.NoError(t, err)
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := s.Read(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got.Value)
	assert.Equal(t, rec.ID, got.ID)
}

func TestStore_ReadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReadCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Create(ctx, contact{FirstName: "Mark"})
	require.NoError(t, err)

	path := filepath.Join(s.Dir(), rec.ID+FileExt)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = s.Read(ctx, rec.ID)
	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Path)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Create(ctx, contact{FirstName: "John"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, contact{FirstName: "Johnny"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))

	got, err := s.Read(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", got.Value.FirstName)
}

func TestStore_UpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), "no-such-id", contact{FirstName: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Create(ctx, contact{FirstName: "John"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))

	_, err = s.Read(ctx, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, rec.ID), ErrNotFound)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := map[string]string{}
	for _, name := range []string{"John", "Joan", "Mark"} {
		rec, err := s.Create(ctx, contact{FirstName: name})
		require.NoError(t, err)
		want[rec.ID] = name
	}

	// Dotfiles and foreign files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".DS_Store"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "readme.txt"), []byte("x"), 0o644))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, want[rec.ID], rec.Value.FirstName)
	}
}

func TestStore_ListSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	good, err := s.Create(ctx, contact{FirstName: "John"})
	require.NoError(t, err)
	bad, err := s.Create(ctx, contact{FirstName: "Mark"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), bad.ID+FileExt), []byte("garbage"), 0o644))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, good.ID, recs[0].ID)
}

func TestStore_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() string { return f.id }

func TestStore_CreateDuplicateIDGuard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithIDGenerator(fixedIDs{id: "same-id"}))

	_, err := s.Create(ctx, contact{FirstName: "John"})
	require.NoError(t, err)

	_, err = s.Create(ctx, contact{FirstName: "Joan"})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestStore_CreateInterruptedLeavesNoRecord(t *testing.T) {
	ctx := context.Background()

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 8})

	s := newTestStore(t, WithFileSystem(ffs))

	_, err := s.Create(ctx, contact{FirstName: "John", Phones: []string{"+1555"}})
	var serr *StorageError
	require.ErrorAs(t, err, &serr)

	recs, err2 := s.List(ctx)
	require.NoError(t, err2)
	assert.Empty(t, recs)
}

func TestStore_CompressedCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithCodec(codec.Zstd(codec.GoJSON{})))

	in := contact{FirstName: "Joan", Phones: []string{"+1777"}}
	rec, err := s.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.Read(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got.Value)
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := UUIDGenerator{}
	seen := make(map[string]struct{})
	for n := 0; n < 1000; n++ {
		id := g.NewID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
