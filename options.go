package recgo

import (
	"golang.org/x/time/rate"

	"github.com/hupe1980/recgo/codec"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/store"
)

// ContactValidator is the external validation collaborator for contacts.
// It runs before any contact mutation touches the store.
type ContactValidator interface {
	ValidateContact(c model.Contact) error
}

// NoteValidator is the external validation collaborator for notes.
type NoteValidator interface {
	ValidateNote(n model.Note) error
}

const defaultHydrateConcurrency = 8

type options struct {
	codec              codec.Codec
	logger             *Logger
	metrics            MetricsCollector
	ids                store.IDGenerator
	hashPartitions     int
	contactValidator   ContactValidator
	noteValidator      NoteValidator
	rebuildLimiter     *rate.Limiter
	hydrateConcurrency int
}

func defaultOptions() options {
	return options{
		codec:              codec.Default,
		logger:             NoopLogger(),
		metrics:            NoopMetricsCollector{},
		ids:                store.UUIDGenerator{},
		hydrateConcurrency: defaultHydrateConcurrency,
	}
}

// Option configures facade constructor behavior.
type Option func(*options)

// WithCodec configures the codec used for record and index partition files.
//
// A directory written with one codec must be reopened with the same codec.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics configures a metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithIDGenerator configures the identifier-generator collaborator used on
// create. The default generates random uuids.
func WithIDGenerator(g store.IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithHashPartitions configures the bucket count of the hash indexes
// (default 256). The count is fixed for the lifetime of the index directory;
// reopening with a different count requires an index rebuild.
func WithHashPartitions(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.hashPartitions = n
		}
	}
}

// WithContactValidator configures the contact validation collaborator.
// Without it, payloads are stored as given.
func WithContactValidator(v ContactValidator) Option {
	return func(o *options) {
		o.contactValidator = v
	}
}

// WithNoteValidator configures the note validation collaborator.
func WithNoteValidator(v NoteValidator) Option {
	return func(o *options) {
		o.noteValidator = v
	}
}

// WithRebuildRateLimit throttles index rebuild I/O to the given records per
// second. Zero or negative disables throttling (the default).
func WithRebuildRateLimit(recordsPerSecond float64) Option {
	return func(o *options) {
		if recordsPerSecond > 0 {
			o.rebuildLimiter = rate.NewLimiter(rate.Limit(recordsPerSecond), 1)
		}
	}
}

// WithHydrateConcurrency bounds the number of concurrent record reads used
// to hydrate search results (default 8).
func WithHydrateConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.hydrateConcurrency = n
		}
	}
}
