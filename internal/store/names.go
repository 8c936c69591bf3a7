package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/namehash"
)

// ErrNotFound is returned when no name is indexed for a hash.
var ErrNotFound = errors.New("name not found")

// Entry is one indexed name.
type Entry struct {
	Seq       int64         `json:"seq"`
	Algorithm string        `json:"algorithm"`
	Hash      namehash.Hash `json:"hash"`
	Name      string        `json:"name"`
	Extension string        `json:"extension"`
	Source    string        `json:"source"`
}

// ImportStats summarizes one import.
type ImportStats struct {
	Lines      int `json:"lines"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// ImportRecord is one row of the import log.
type ImportRecord struct {
	ID        int64  `json:"id"`
	Source    string `json:"source"`
	Algorithm string `json:"algorithm"`
	Lines     int    `json:"lines"`
	Added     int    `json:"added"`
}

// ExtensionCount is one row of Stats.
type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// Extension returns the lower-cased extension of the last path element of
// name, without the dot, or "" if there is none.
func Extension(name string) string {
	ext := path.Ext(path.Base(strings.ReplaceAll(name, `\`, "/")))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ImportCatalog indexes every name in the catalog file at path.
func (s *Store) ImportCatalog(ctx context.Context, path string, alg namehash.Algorithm) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	names, err := catalog.ReadNames(f)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return s.ImportNames(ctx, path, alg, names)
}

// ImportNames indexes names under alg in one transaction. Names whose hash is
// already indexed are counted as duplicates and left untouched.
func (s *Store) ImportNames(ctx context.Context, source string, alg namehash.Algorithm, names []string) (ImportStats, error) {
	stats := ImportStats{Lines: len(names)}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO names (algorithm, hash, name, extension, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(algorithm, hash) DO NOTHING
	`)
	if err != nil {
		return stats, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		h := namehash.SumString(alg, name)
		res, err := stmt.ExecContext(ctx, alg.Name(), int64(h), name, Extension(name), source)
		if err != nil {
			return stats, fmt.Errorf("insert %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return stats, fmt.Errorf("insert %q: %w", name, err)
		}
		if n == 0 {
			stats.Duplicates++
			continue
		}
		stats.Added++
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (source, algorithm, lines, added)
		VALUES (?, ?, ?, ?)
	`, source, alg.Name(), stats.Lines, stats.Added)
	if err != nil {
		return stats, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

// Lookup returns the name indexed for h under alg.
func (s *Store) Lookup(ctx context.Context, alg namehash.Algorithm, h namehash.Hash) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, algorithm, hash, name, extension, source
		FROM names
		WHERE algorithm = ? AND hash = ?
	`, alg.Name(), int64(h))

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s %s: %w", alg.Name(), namehash.Format(h, alg.Width()), ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup: %w", err)
	}
	return e, nil
}

// Names returns every name indexed under alg, in import order.
func (s *Store) Names(ctx context.Context, alg namehash.Algorithm) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, algorithm, hash, name, extension, source
		FROM names
		WHERE algorithm = ?
		ORDER BY seq ASC
	`, alg.Name())
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns how many names are indexed under alg.
func (s *Store) Count(ctx context.Context, alg namehash.Algorithm) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM names WHERE algorithm = ?`, alg.Name()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count names: %w", err)
	}
	return n, nil
}

// Stats returns per-extension name counts under alg, most common first.
func (s *Store) Stats(ctx context.Context, alg namehash.Algorithm) ([]ExtensionCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT extension, COUNT(*) AS n
		FROM names
		WHERE algorithm = ?
		GROUP BY extension
		ORDER BY n DESC, extension ASC
	`, alg.Name())
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var counts []ExtensionCount
	for rows.Next() {
		var c ExtensionCount
		if err := rows.Scan(&c.Extension, &c.Count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Imports returns the import log, oldest first.
func (s *Store) Imports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, algorithm, lines, added
		FROM imports
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var records []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Algorithm, &r.Lines, &r.Added); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (Entry, error) {
	var e Entry
	var h int64
	if err := r.Scan(&e.Seq, &e.Algorithm, &h, &e.Name, &e.Extension, &e.Source); err != nil {
		return Entry{}, err
	}
	e.Hash = namehash.Hash(uint64(h))
	return e, nil
}
