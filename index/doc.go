// Package index implements the on-disk search indexes over record fields.
//
// Two strategies are provided:
//
//   - [Prefix]: a two-level trie-partitioned index for prefix search over a
//     string field (names, titles). Partition files live at
//     <dir>/<p1>/<p2>.idx where p1/p2 are the first two runes of the
//     normalized value, so a prefix query of two or more characters loads
//     exactly one partition file regardless of dataset size.
//
//   - [Hash]: a bucket-partitioned index for exact-match search (phones,
//     emails, tags). Partition files live at <dir>/<bucket>.idx with
//     bucket = FNV-1a(normalized value) mod partition count. Keys inside a
//     partition are the exact normalized values, so hash collisions are
//     resolved by key comparison within the single loaded partition.
//
// A partition file maps full index keys to postings (sets of record ids).
// Partitions are written through the atomic write-temp-then-rename path; an
// interrupted write leaves the previous partition content intact.
//
// [Manager] binds indexes to record fields and keeps them in step with store
// mutations. Indexes only ever reference record ids; the record files remain
// the single source of truth, and [Manager.Rebuild] re-derives all partitions
// from them.
package index
