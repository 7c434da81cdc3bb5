// Package store implements the file-backed entity store.
//
// Every record lives in its own file, <dir>/<id>.rec, holding a
// self-describing envelope (id, timestamps, payload) encoded with the
// configured codec. All writes go through the atomic write-temp-then-rename
// path, so a record file always contains a complete envelope regardless of
// where the process was interrupted.
//
// The store is generic over the payload type and realized once; entity types
// (contacts, notes) are separate Store instances rooted at separate
// directories rather than subclasses.
//
// The store owns record files exclusively. Indexes reference record ids but
// never touch the data directory.
package store
