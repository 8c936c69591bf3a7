// Package catalog provides the deduplicated, file-backed name catalog.
//
// The catalog is an append-only text file with one canonical name per line,
// in first-observation order, plus an in-memory set of name hashes used to
// decide whether a name is new.
//
// # Invariants
//
// Every hash in the membership set has exactly one line on disk (unless
// the catalog is degraded, see below) and every line on disk has its hash in
// the set once Load has run.
//
// TryRecord performs check, insert, append and flush inside one mutex
// section. A concurrent reader of the file sees a prefix of the insertions;
// a crash loses at most the entry being written.
//
// The file only grows. Existing lines are never rewritten or removed.
//
// # Degraded mode
//
// When the file cannot be opened for append, or a write fails, the catalog
// keeps deduplicating in memory and stops persisting. This never surfaces as
// an error to the caller because the caller is usually a hook running on a
// host thread.
//
// Dictionary is the offline counterpart: a read-only hash to name map used to
// resolve placeholder names after a capture run.
package catalog
