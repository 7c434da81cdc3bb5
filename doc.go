// Package recgo provides an embedded, file-backed record store for Go.
//
// Recgo persists small structured records (contacts, notes) as one file per
// record and maintains secondary indexes on disk so common lookups never
// scan the full data set. Everything lives under a single base directory;
// there is no server, no network, no global state.
//
// # Quick Start
//
//	ctx := context.Background()
//	book, _ := recgo.NewAddressBook(recgo.Config{BaseDir: "./data"})
//
//	rec, _ := book.AddContact(ctx, model.Contact{
//	    FirstName: "John",
//	    LastName:  "Smith",
//	    Phones:    []string{"+1-555-0100"},
//	    Emails:    []string{"john@example.com"},
//	})
//
//	matches, _ := book.SearchByFirstName(ctx, "jo")
//	same, _ := book.SearchByPhone(ctx, "+1-555-0100")
//
// Notes work the same way via NewNotesBook, with prefix search on title and
// exact search on tags.
//
// # Durability Model
//
// Every write goes through a temp-file-and-rename protocol, so a record file
// on disk is always either the complete old version or the complete new
// version. Mutations update the record file first and the indexes second: a
// crash in between leaves an index stale, never record data torn. Stale or
// corrupt indexes are repaired by RebuildIndexes, and queries that hit a
// corrupt partition rebuild and retry once automatically.
//
// # Indexing
//
// Two index shapes cover the supported queries:
//
//   - Prefix indexes partition values by their first two characters and
//     answer case-insensitive prefix queries (first name, last name, title).
//   - Hash indexes partition values into a fixed number of buckets and
//     answer exact-match queries (phone, email, tag).
//
// Both store partitions as small files under the index directory, so a
// lookup touches one partition rather than the whole data set.
//
// # Key Features
//
//   - Atomic file persistence (temp file + rename, no torn records)
//   - Trie-partitioned prefix indexes and hash-bucketed exact indexes
//   - Automatic index maintenance on create, update, and delete
//   - Full index rebuild from record files, with optional rate limiting
//   - Pluggable codecs (JSON, go-json, zstd/lz4 compression)
//   - Structured logging (slog) and pluggable metrics (Prometheus included)
package recgo
