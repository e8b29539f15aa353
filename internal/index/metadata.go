package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Source names recorded in the sources table.
const (
	SourceFASTA   = "fasta"
	SourceResults = "results"
)

// FileFingerprint holds stat-based identity for an ingested source file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Same reports whether two fingerprints describe the same file contents.
// Paths are ignored so a moved but unchanged file is not re-ingested.
func (f FileFingerprint) Same(o FileFingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

// SourceFingerprint returns the fingerprint recorded for the named source.
// ok is false when nothing has been recorded.
func (s *Store) SourceFingerprint(name string) (fp FileFingerprint, ok bool, err error) {
	var modTime string
	err = s.db.QueryRow(`SELECT path, size, mod_time FROM sources WHERE name = ?`, name).
		Scan(&fp.Path, &fp.Size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query source %s: %w", name, err)
	}
	fp.ModTime, err = time.Parse(time.RFC3339Nano, modTime)
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("parse source %s mod time: %w", name, err)
	}
	return fp, true, nil
}

// setSourceFingerprint records the fingerprint of an ingested source.
func (s *Store) setSourceFingerprint(name string, fp FileFingerprint) error {
	if _, err := s.db.Exec(`DELETE FROM sources WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clear source %s: %w", name, err)
	}
	_, err := s.db.Exec(`INSERT INTO sources (name, path, size, mod_time) VALUES (?, ?, ?, ?)`,
		name, fp.Path, fp.Size, fp.ModTime.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record source %s: %w", name, err)
	}
	return nil
}
