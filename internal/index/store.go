// Package index provides a DuckDB-backed protein index: protein sequences,
// their MS-BLAST peptide alignments and the coverage precomputed at ingest.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an accession is not in the index.
var ErrNotFound = errors.New("protein not found")

// Store manages a DuckDB connection holding the protein index.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB index at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger used for ingest progress and skipped rows.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for an in-memory index.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS proteins (
			accession VARCHAR PRIMARY KEY,
			description VARCHAR,
			sequence VARCHAR
		)`,
		// seq preserves input order so peptide lists are stable.
		`CREATE TABLE IF NOT EXISTS alignments (
			seq BIGINT,
			accession VARCHAR,
			denovo_id VARCHAR,
			subject_start BIGINT,
			subject_end BIGINT,
			global_score BIGINT,
			including_pos BIGINT,
			excluding_pos BIGINT,
			allowing_one_pos_or_one_minus BIGINT,
			allowing_one_minus BIGINT,
			full_sequence VARCHAR,
			filtered_sequence VARCHAR,
			query_start BIGINT,
			query_end BIGINT,
			query_aligned VARCHAR,
			subject_aligned VARCHAR,
			full_residue_scores VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS protein_coverage (
			accession VARCHAR PRIMARY KEY,
			covered_count BIGINT,
			coverage_percent DOUBLE,
			peptide_count BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			name VARCHAR PRIMARY KEY,
			path VARCHAR,
			size BIGINT,
			mod_time VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all indexed data, including source fingerprints.
func (s *Store) Clear() error {
	return clearTables(context.Background(), s.db)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func clearTables(ctx context.Context, db execer) error {
	for _, table := range []string{"alignments", "protein_coverage", "proteins", "sources"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
