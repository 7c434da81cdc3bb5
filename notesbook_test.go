package recgo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/model"
)

func newTestNotesBook(t *testing.T, opts ...Option) (*NotesBook, string) {
	t.Helper()

	dir := t.TempDir()

	book, err := NewNotesBook(Config{BaseDir: dir}, opts...)
	require.NoError(t, err)

	return book, dir
}

func testNote() model.Note {
	return model.Note{
		Title:   "Shopping list",
		Content: "milk, eggs, coffee",
		Tags:    []string{"errands", "weekly"},
	}
}

func TestNotesBook(t *testing.T) {
	ctx := context.Background()

	t.Run("AddAndGet", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())

		got, err := book.Note(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		_, err := book.Note(ctx, "no-such-id")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		n := rec.Value
		n.Content = "milk, eggs, coffee, bread"

		updated, err := book.UpdateNote(ctx, rec.ID, n)
		require.NoError(t, err)
		assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
		assert.Equal(t, n.Content, updated.Value.Content)

		require.NoError(t, book.DeleteNote(ctx, rec.ID))

		_, err = book.Note(ctx, rec.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		for _, title := range []string{"One", "Two", "Three"} {
			_, err := book.AddNote(ctx, model.Note{Title: title})
			require.NoError(t, err)
		}

		recs, err := book.Notes(ctx)
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})
}

func TestNotesBookSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ByTitlePrefix", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		for _, q := range []string{"sh", "SHOP", "shopping l"} {
			got, err := book.SearchByTitle(ctx, q)
			require.NoError(t, err)
			require.Len(t, got, 1, "query %q", q)
			assert.Equal(t, rec.ID, got[0].ID)
		}

		got, err := book.SearchByTitle(ctx, "zz")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ByTag", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		_, err = book.AddNote(ctx, model.Note{Title: "Other", Tags: []string{"work"}})
		require.NoError(t, err)

		got, err := book.SearchByTag(ctx, "errands")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)

		// Tags are matched exactly, case-insensitively.
		got, err = book.SearchByTag(ctx, "ERRANDS")
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = book.SearchByTag(ctx, "err")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TagSharedByManyNotes", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		for _, title := range []string{"A", "B", "C"} {
			_, err := book.AddNote(ctx, model.Note{Title: title, Tags: []string{"shared"}})
			require.NoError(t, err)
		}

		got, err := book.SearchByTag(ctx, "shared")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("ByText", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		got, err := book.SearchByText(ctx, "COFFEE")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)

		got, err = book.SearchByText(ctx, "shopping")
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = book.SearchByText(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = book.SearchByText(ctx, "absent")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ByContact", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		linked, err := book.AddNote(ctx, model.Note{Title: "Call minutes", ContactIDs: []string{"contact-1"}})
		require.NoError(t, err)

		_, err = book.AddNote(ctx, model.Note{Title: "Unrelated"})
		require.NoError(t, err)

		got, err := book.NotesByContact(ctx, "contact-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, linked.ID, got[0].ID)

		got, err = book.NotesByContact(ctx, "contact-2")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UpdateMovesTagPostings", func(t *testing.T) {
		book, _ := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		n := rec.Value
		n.Tags = []string{"archive"}

		_, err = book.UpdateNote(ctx, rec.ID, n)
		require.NoError(t, err)

		got, err := book.SearchByTag(ctx, "errands")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = book.SearchByTag(ctx, "archive")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestNotesBookRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("CorruptTagIndexRepairedOnQuery", func(t *testing.T) {
		book, dir := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		// Clobber every bucket of the tag index; the query path must
		// rebuild and retry.
		tagDir := filepath.Join(dir, "index", "notes", "tag")
		entries, err := os.ReadDir(tagDir)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		for _, e := range entries {
			require.NoError(t, os.WriteFile(filepath.Join(tagDir, e.Name()), []byte("garbage"), 0o600))
		}

		got, err := book.SearchByTag(ctx, "errands")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)
	})

	t.Run("RebuildFromRecords", func(t *testing.T) {
		book, dir := newTestNotesBook(t)

		rec, err := book.AddNote(ctx, testNote())
		require.NoError(t, err)

		require.NoError(t, os.RemoveAll(filepath.Join(dir, "index")))
		require.NoError(t, book.RebuildIndexes(ctx))

		got, err := book.SearchByTitle(ctx, "shop")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)
	})
}

type rejectAllNotes struct{ err error }

func (r rejectAllNotes) ValidateNote(model.Note) error { return r.err }

func TestNotesBookValidation(t *testing.T) {
	ctx := context.Background()

	cause := errors.New("title required")
	book, _ := newTestNotesBook(t, WithNoteValidator(rejectAllNotes{err: cause}))

	_, err := book.AddNote(ctx, model.Note{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notes", verr.Entity)
	require.ErrorIs(t, err, cause)

	recs, err := book.Notes(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
