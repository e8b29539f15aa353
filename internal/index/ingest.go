package index

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/brownovo/pepmap/internal/coverage"
	"github.com/brownovo/pepmap/internal/filter"
	"github.com/brownovo/pepmap/internal/msblast"
	"github.com/brownovo/pepmap/internal/protein"
)

// IngestStats summarizes one ingest run.
type IngestStats struct {
	Proteins          int
	Alignments        int
	SkippedAlignments int  // unknown accession or invalid interval
	Unchanged         bool // IngestFiles found both sources unchanged
}

// Ingest replaces the index contents with the given proteins and alignments.
// Alignments referencing an unknown accession or with an interval outside
// their protein are skipped. Coverage at zero thresholds is computed for
// every protein and stored alongside.
func (s *Store) Ingest(proteins []*protein.Protein, alignments []protein.Alignment) (IngestStats, error) {
	var stats IngestStats

	byAccession := make(map[string]*protein.Protein, len(proteins))
	unique := make([]*protein.Protein, 0, len(proteins))
	for _, p := range proteins {
		if _, dup := byAccession[p.Accession]; dup {
			s.logger.Warn("duplicate protein accession, keeping first", zap.String("accession", p.Accession))
			continue
		}
		byAccession[p.Accession] = p
		unique = append(unique, p)
	}

	perProtein := make(map[string][]protein.Alignment, len(unique))
	kept := make([]protein.Alignment, 0, len(alignments))
	for _, a := range alignments {
		p, ok := byAccession[a.Accession]
		if !ok {
			s.logger.Warn("skipping alignment for unknown protein",
				zap.String("accession", a.Accession), zap.String("denovo_id", a.DenovoID))
			stats.SkippedAlignments++
			continue
		}
		if err := a.Validate(p.Len()); err != nil {
			s.logger.Warn("skipping alignment", zap.String("accession", a.Accession), zap.Error(err))
			stats.SkippedAlignments++
			continue
		}
		kept = append(kept, a)
		perProtein[a.Accession] = append(perProtein[a.Accession], a)
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return stats, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// Appenders on conn write into tx, so a failure leaves the previous
	// index intact.
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return stats, err
	}

	appendRows := func(table string, fn func(a *goduckdb.Appender) error) error {
		var appender *goduckdb.Appender
		if err := conn.Raw(func(driverConn any) error {
			var err error
			appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
			return err
		}); err != nil {
			return fmt.Errorf("create %s appender: %w", table, err)
		}
		if err := fn(appender); err != nil {
			appender.Close()
			return err
		}
		return appender.Close()
	}

	err = appendRows("proteins", func(app *goduckdb.Appender) error {
		for _, p := range unique {
			if err := app.AppendRow(p.Accession, p.Description, p.Sequence); err != nil {
				return fmt.Errorf("append protein %s: %w", p.Accession, err)
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = appendRows("alignments", func(app *goduckdb.Appender) error {
		for i, a := range kept {
			if err := app.AppendRow(
				int64(i), a.Accession, a.DenovoID,
				int64(a.SubjectStart), int64(a.SubjectEnd),
				int64(a.GlobalScore), int64(a.IncludingPos), int64(a.ExcludingPos),
				int64(a.AllowingOnePosOrOneMinus), int64(a.AllowingOneMinus),
				a.FullSequence, a.FilteredSequence,
				int64(a.QueryStart), int64(a.QueryEnd),
				a.QueryAligned, a.SubjectAligned,
				msblast.FormatScores(a.FullResidueScores),
			); err != nil {
				return fmt.Errorf("append alignment %s/%s: %w", a.Accession, a.DenovoID, err)
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = appendRows("protein_coverage", func(app *goduckdb.Appender) error {
		for _, p := range unique {
			passing := filter.Apply(perProtein[p.Accession], protein.Thresholds{})
			c, err := coverage.Compute(p.Len(), passing)
			if err != nil {
				return fmt.Errorf("compute coverage %s: %w", p.Accession, err)
			}
			if err := app.AppendRow(p.Accession, int64(c.CoveredCount), c.CoveragePercent, int64(c.PeptideCount)); err != nil {
				return fmt.Errorf("append coverage %s: %w", p.Accession, err)
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit ingest: %w", err)
	}

	stats.Proteins = len(unique)
	stats.Alignments = len(kept)
	s.logger.Info("ingested protein index",
		zap.Int("proteins", stats.Proteins),
		zap.Int("alignments", stats.Alignments),
		zap.Int("skipped_alignments", stats.SkippedAlignments))
	return stats, nil
}

// IngestFiles loads a protein FASTA file and an MS-BLAST result table into
// the index. When both files match the fingerprints recorded by the previous
// ingest, nothing is read and stats.Unchanged is set, unless force is true.
func (s *Store) IngestFiles(fastaPath, resultsPath string, force bool) (IngestStats, error) {
	fastaFP, err := StatFile(fastaPath)
	if err != nil {
		return IngestStats{}, fmt.Errorf("stat FASTA file: %w", err)
	}
	resultsFP, err := StatFile(resultsPath)
	if err != nil {
		return IngestStats{}, fmt.Errorf("stat results file: %w", err)
	}

	if !force {
		unchanged, err := s.sourcesUnchanged(fastaFP, resultsFP)
		if err != nil {
			return IngestStats{}, err
		}
		if unchanged {
			s.logger.Info("index up to date", zap.String("fasta", fastaPath), zap.String("results", resultsPath))
			return IngestStats{Unchanged: true}, nil
		}
	}

	proteins, err := protein.LoadFASTA(fastaPath, s.logger)
	if err != nil {
		return IngestStats{}, fmt.Errorf("load proteins: %w", err)
	}

	parser, err := msblast.NewParser(resultsPath)
	if err != nil {
		return IngestStats{}, fmt.Errorf("open results: %w", err)
	}
	defer parser.Close()
	parser.SetLogger(s.logger)

	alignments, malformed, err := parser.ReadAll()
	if err != nil {
		return IngestStats{}, fmt.Errorf("read results: %w", err)
	}

	stats, err := s.Ingest(proteins, alignments)
	if err != nil {
		return stats, err
	}
	stats.SkippedAlignments += malformed

	if err := s.setSourceFingerprint(SourceFASTA, fastaFP); err != nil {
		return stats, err
	}
	if err := s.setSourceFingerprint(SourceResults, resultsFP); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) sourcesUnchanged(fasta, results FileFingerprint) (bool, error) {
	for _, src := range []struct {
		name string
		fp   FileFingerprint
	}{{SourceFASTA, fasta}, {SourceResults, results}} {
		prev, ok, err := s.SourceFingerprint(src.name)
		if err != nil {
			return false, err
		}
		if !ok || !prev.Same(src.fp) {
			return false, nil
		}
	}
	return true, nil
}
