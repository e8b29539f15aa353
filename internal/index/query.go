package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/brownovo/pepmap/internal/msblast"
	"github.com/brownovo/pepmap/internal/protein"
)

// Hit is one search result.
type Hit struct {
	Accession       string  `json:"accession"`
	Description     string  `json:"description"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// Detail is everything needed to render one protein.
type Detail struct {
	Protein  *protein.Protein
	Peptides []protein.Alignment // passing peptides, ordered by subject start then ingest order
	Coverage *protein.Coverage   // precomputed value; nil unless thresholds are zero
}

// Search returns proteins whose accession or description contains query,
// case-insensitively. An exact accession match ranks first, then accession
// prefix matches, then the rest; ties are broken by descending precomputed
// coverage and then accession. An empty query returns every protein.
func (s *Store) Search(query string) ([]Hit, error) {
	rows, err := s.db.Query(`WITH q AS (SELECT CAST($1 AS VARCHAR) AS s)
		SELECT
		p.accession, p.description, COALESCE(c.coverage_percent, 0) AS pct,
		CASE
			WHEN lower(p.accession) = q.s THEN 0
			WHEN starts_with(lower(p.accession), q.s) THEN 1
			ELSE 2
		END AS tier
		FROM proteins p
		CROSS JOIN q
		LEFT JOIN protein_coverage c ON c.accession = p.accession
		WHERE contains(lower(p.accession), q.s)
			OR contains(lower(COALESCE(p.description, '')), q.s)
		ORDER BY tier, pct DESC, p.accession`, strings.ToLower(query))
	if err != nil {
		return nil, fmt.Errorf("search proteins: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h    Hit
			desc sql.NullString
			tier int
		)
		if err := rows.Scan(&h.Accession, &desc, &h.CoveragePercent, &tier); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Description = desc.String
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

// Default returns the accession with the highest precomputed coverage,
// the protein shown when none is requested.
func (s *Store) Default() (string, error) {
	var accession string
	err := s.db.QueryRow(`SELECT p.accession
		FROM proteins p
		LEFT JOIN protein_coverage c ON c.accession = p.accession
		ORDER BY COALESCE(c.coverage_percent, 0) DESC, p.accession
		LIMIT 1`).Scan(&accession)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("default protein: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query default protein: %w", err)
	}
	return accession, nil
}

// Accessions returns every indexed accession in sorted order.
func (s *Store) Accessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT accession FROM proteins ORDER BY accession`)
	if err != nil {
		return nil, fmt.Errorf("query accessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var acc string
		if err := rows.Scan(&acc); err != nil {
			return nil, fmt.Errorf("scan accession: %w", err)
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accessions: %w", err)
	}
	return out, nil
}

// Protein returns the protein record for accession.
func (s *Store) Protein(accession string) (*protein.Protein, error) {
	var (
		p    protein.Protein
		desc sql.NullString
	)
	err := s.db.QueryRow(`SELECT accession, description, sequence FROM proteins WHERE accession = ?`, accession).
		Scan(&p.Accession, &desc, &p.Sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("protein %s: %w", accession, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query protein %s: %w", accession, err)
	}
	p.Description = desc.String
	return &p, nil
}

// Detail returns the protein, its peptides passing every threshold and, when
// th is zero, the coverage precomputed at ingest.
func (s *Store) Detail(accession string, th protein.Thresholds) (*Detail, error) {
	p, err := s.Protein(accession)
	if err != nil {
		return nil, err
	}

	peptides, err := s.peptides(accession, th)
	if err != nil {
		return nil, err
	}

	d := &Detail{Protein: p, Peptides: peptides}
	if th.IsZero() {
		var c protein.Coverage
		var covered, count int64
		err := s.db.QueryRow(`SELECT covered_count, coverage_percent, peptide_count
			FROM protein_coverage WHERE accession = ?`, accession).
			Scan(&covered, &c.CoveragePercent, &count)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("query coverage %s: %w", accession, err)
		default:
			c.CoveredCount = int(covered)
			c.PeptideCount = int(count)
			d.Coverage = &c
		}
	}
	return d, nil
}

// Alignment returns the alignment of denovoID against accession, regardless
// of thresholds.
func (s *Store) Alignment(accession, denovoID string) (*protein.Alignment, error) {
	rows, err := s.db.Query(alignmentSelect+` WHERE accession = ? AND denovo_id = ? ORDER BY seq LIMIT 1`,
		accession, denovoID)
	if err != nil {
		return nil, fmt.Errorf("query alignment: %w", err)
	}
	defer rows.Close()

	out, err := scanAlignments(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("alignment %s/%s: %w", accession, denovoID, ErrNotFound)
	}
	return &out[0], nil
}

const alignmentSelect = `SELECT
	accession, denovo_id, subject_start, subject_end,
	global_score, including_pos, excluding_pos,
	allowing_one_pos_or_one_minus, allowing_one_minus,
	full_sequence, filtered_sequence,
	query_start, query_end, query_aligned, subject_aligned,
	full_residue_scores
	FROM alignments`

func (s *Store) peptides(accession string, th protein.Thresholds) ([]protein.Alignment, error) {
	rows, err := s.db.Query(alignmentSelect+` WHERE accession = ?
		AND global_score >= ?
		AND including_pos >= ?
		AND excluding_pos >= ?
		AND allowing_one_pos_or_one_minus >= ?
		AND allowing_one_minus >= ?
		ORDER BY subject_start, seq`,
		accession, th.MinScore, th.MinIncludingPos, th.MinExcludingPos,
		th.MinAllowingOnePosOrOneMinus, th.MinAllowingOneMinus)
	if err != nil {
		return nil, fmt.Errorf("query peptides %s: %w", accession, err)
	}
	defer rows.Close()
	return scanAlignments(rows)
}

// scanAlignments scans rows produced by alignmentSelect.
func scanAlignments(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]protein.Alignment, error) {
	var out []protein.Alignment
	for rows.Next() {
		var (
			a      protein.Alignment
			scores string
		)
		if err := rows.Scan(
			&a.Accession, &a.DenovoID, &a.SubjectStart, &a.SubjectEnd,
			&a.GlobalScore, &a.IncludingPos, &a.ExcludingPos,
			&a.AllowingOnePosOrOneMinus, &a.AllowingOneMinus,
			&a.FullSequence, &a.FilteredSequence,
			&a.QueryStart, &a.QueryEnd, &a.QueryAligned, &a.SubjectAligned,
			&scores,
		); err != nil {
			return nil, fmt.Errorf("scan alignment: %w", err)
		}
		parsed, err := msblast.ParseScores(scores)
		if err != nil {
			return nil, fmt.Errorf("alignment %s/%s: %w", a.Accession, a.DenovoID, err)
		}
		a.FullResidueScores = parsed
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alignments: %w", err)
	}
	return out, nil
}
