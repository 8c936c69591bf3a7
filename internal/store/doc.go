// Package store indexes captured asset names in SQLite for offline analysis.
//
// The capture path never touches the database; it only appends to the text
// catalog. The index is built afterwards from one or more catalog files and
// answers hash lookups and per-extension statistics.
//
// # Invariants
//
//   - One row per (algorithm, hash). The first name imported for a hash wins,
//     matching the catalog's own first-wins rule.
//   - seq orders rows by first import. Queries that list names order by seq.
//   - Hashes are stored as their 64-bit pattern reinterpreted as INTEGER.
//
// Connections are opened in WAL mode with a five second busy timeout, and
// the schema version lives in PRAGMA user_version.
package store
