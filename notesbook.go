package recgo

import (
	"context"
	"strings"

	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/store"
)

// NoteRecord is a stored note together with its identity and timestamps.
type NoteRecord = store.Record[model.Note]

const entityNotes = "notes"

// NotesBook is the note collection facade. It owns the note store and its
// two secondary indexes (prefix on title, exact on tag) and keeps them
// consistent across mutations.
//
// All methods are safe for concurrent use.
type NotesBook struct {
	book[model.Note]

	validator NoteValidator

	title *index.Prefix
	tag   *index.Hash
}

// NewNotesBook opens (or initializes) the note collection under cfg.BaseDir.
func NewNotesBook(cfg Config, opts ...Option) (*NotesBook, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.WithEntity(entityNotes)

	st, err := store.New[model.Note](cfg.dataDir(entityNotes),
		store.WithCodec(o.codec),
		store.WithIDGenerator(o.ids),
		store.WithLogger(logger.Logger),
	)
	if err != nil {
		return nil, translateError(err)
	}

	idxOpts := []index.Option{index.WithCodec(o.codec)}

	title, err := index.NewPrefix(cfg.indexDir(entityNotes, "title"), idxOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	hashOpts := idxOpts
	if o.hashPartitions > 0 {
		hashOpts = append(hashOpts, index.WithPartitions(o.hashPartitions))
	}

	tag, err := index.NewHash(cfg.indexDir(entityNotes, "tag"), hashOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	manager := index.NewManager([]index.Binding[model.Note]{
		{Index: title, Values: func(n model.Note) []string {
			return []string{n.Title}
		}},
		{Index: tag, Values: func(n model.Note) []string {
			return n.Tags
		}},
	},
		index.WithLogger(logger.Logger),
		index.WithRebuildLimiter(o.rebuildLimiter),
	)

	return &NotesBook{
		book: book[model.Note]{
			store:              st,
			manager:            manager,
			logger:             logger,
			metrics:            o.metrics,
			hydrateConcurrency: o.hydrateConcurrency,
		},
		validator: o.noteValidator,
		title:     title,
		tag:       tag,
	}, nil
}

// AddNote validates and stores a new note and indexes its title and tags.
// It returns the stored record with its generated id and timestamps.
func (n *NotesBook) AddNote(ctx context.Context, note model.Note) (NoteRecord, error) {
	if err := n.validate(note); err != nil {
		return NoteRecord{}, err
	}
	return n.create(ctx, note)
}

// Note returns the note with the given id, or ErrNotFound.
func (n *NotesBook) Note(ctx context.Context, id string) (NoteRecord, error) {
	return n.read(ctx, id)
}

// UpdateNote validates and replaces the payload of an existing note and
// moves its index postings to the new field values. CreatedAt is preserved,
// UpdatedAt is refreshed.
func (n *NotesBook) UpdateNote(ctx context.Context, id string, note model.Note) (NoteRecord, error) {
	if err := n.validate(note); err != nil {
		return NoteRecord{}, err
	}
	return n.update(ctx, id, note)
}

// DeleteNote removes the note and purges its index postings.
func (n *NotesBook) DeleteNote(ctx context.Context, id string) error {
	return n.delete(ctx, id)
}

// Notes returns all stored notes in unspecified order. Corrupt record files
// are skipped and logged.
func (n *NotesBook) Notes(ctx context.Context) ([]NoteRecord, error) {
	return n.list(ctx)
}

// SearchByTitle returns the notes whose title starts with prefix, matched
// case-insensitively. An empty result is not an error.
func (n *NotesBook) SearchByTitle(ctx context.Context, prefix string) ([]NoteRecord, error) {
	return n.search(ctx, n.title.Name(), prefix, func(ctx context.Context) ([]string, error) {
		return n.title.QueryPrefix(ctx, prefix)
	})
}

// SearchByTag returns the notes that carry exactly the given tag (after
// normalization).
func (n *NotesBook) SearchByTag(ctx context.Context, tag string) ([]NoteRecord, error) {
	return n.search(ctx, n.tag.Name(), tag, func(ctx context.Context) ([]string, error) {
		return n.tag.QueryExact(ctx, tag)
	})
}

// SearchByText returns the notes whose title or content contains text,
// matched case-insensitively. This is a full scan of the record files, not
// an index lookup; prefer SearchByTitle or SearchByTag where they apply.
func (n *NotesBook) SearchByText(ctx context.Context, text string) ([]NoteRecord, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, nil
	}

	recs, err := n.list(ctx)
	if err != nil {
		return nil, err
	}

	var out []NoteRecord
	for _, rec := range recs {
		if strings.Contains(strings.ToLower(rec.Value.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Value.Content), needle) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// NotesByContact returns the notes linked to the given contact id. Links are
// held in the note payload, so this is a full scan of the record files.
func (n *NotesBook) NotesByContact(ctx context.Context, contactID string) ([]NoteRecord, error) {
	recs, err := n.list(ctx)
	if err != nil {
		return nil, err
	}

	var out []NoteRecord
	for _, rec := range recs {
		for _, id := range rec.Value.ContactIDs {
			if id == contactID {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

// RebuildIndexes drops all note indexes and reconstructs them from the
// record files. Use it to recover from corruption or staleness.
func (n *NotesBook) RebuildIndexes(ctx context.Context) error {
	return n.rebuild(ctx)
}

func (n *NotesBook) validate(note model.Note) error {
	if n.validator == nil {
		return nil
	}
	if err := n.validator.ValidateNote(note); err != nil {
		return &ValidationError{Entity: entityNotes, cause: err}
	}
	return nil
}
