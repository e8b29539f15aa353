// Package protein defines the protein and peptide alignment records consumed
// by the coverage and layout engine.
package protein

import (
	"errors"
	"fmt"
)

// ErrInvalidInterval is returned when a peptide's subject interval does not
// fit inside its protein sequence.
var ErrInvalidInterval = errors.New("invalid interval")

// Protein is a read-only view of an indexed protein sequence.
type Protein struct {
	Accession   string // Unique key (e.g. P69905)
	Description string // Free text, may be empty
	Sequence    string // Amino acid residues, 1-indexed for all derived coordinates
}

// Len returns the sequence length.
func (p *Protein) Len() int {
	return len(p.Sequence)
}

// Alignment is one de novo peptide matched against a protein by the
// MS-BLAST service.
type Alignment struct {
	Accession string // Subject protein accession
	DenovoID  string // Opaque peptide identifier

	SubjectStart int // 1-based, inclusive
	SubjectEnd   int // 1-based, inclusive

	GlobalScore              int
	IncludingPos             int // Max consecutive amino acids including positives
	ExcludingPos             int // Max consecutive amino acids excluding positives
	AllowingOnePosOrOneMinus int // Max consecutive amino acids allowing one positive or one mismatch
	AllowingOneMinus         int // Max consecutive amino acids allowing one mismatch

	FullSequence     string // Raw predicted peptide
	FilteredSequence string // High-confidence substring of FullSequence

	QueryStart     int    // 1-based, inclusive, into FilteredSequence
	QueryEnd       int    // 1-based, inclusive, into FilteredSequence
	QueryAligned   string // Aligned query, '-' for gaps
	SubjectAligned string // Aligned subject, '-' for gaps

	FullResidueScores []float64 // One per FullSequence residue
}

// Validate checks that the subject interval lies within [1, seqLen].
func (a *Alignment) Validate(seqLen int) error {
	if a.SubjectStart < 1 || a.SubjectStart > a.SubjectEnd || a.SubjectEnd > seqLen {
		return fmt.Errorf("peptide %s [%d, %d] on length %d: %w",
			a.DenovoID, a.SubjectStart, a.SubjectEnd, seqLen, ErrInvalidInterval)
	}
	return nil
}

// Start0 returns the 0-based inclusive subject start.
func (a *Alignment) Start0() int { return a.SubjectStart - 1 }

// End0 returns the 0-based inclusive subject end.
func (a *Alignment) End0() int { return a.SubjectEnd - 1 }

// ValidateAll validates every alignment against seqLen, stopping at the first failure.
func ValidateAll(seqLen int, peptides []Alignment) error {
	for i := range peptides {
		if err := peptides[i].Validate(seqLen); err != nil {
			return err
		}
	}
	return nil
}

// Thresholds holds the five minimums a peptide must meet to pass filtering.
type Thresholds struct {
	MinScore                    int `mapstructure:"min_score" json:"min_score"`
	MinIncludingPos             int `mapstructure:"min_including_pos" json:"min_including_pos"`
	MinExcludingPos             int `mapstructure:"min_excluding_pos" json:"min_excluding_pos"`
	MinAllowingOnePosOrOneMinus int `mapstructure:"min_allowing_one_pos_or_one_minus" json:"min_allowing_one_pos_or_one_minus"`
	MinAllowingOneMinus         int `mapstructure:"min_allowing_one_minus" json:"min_allowing_one_minus"`
}

// IsZero reports whether no threshold is set.
func (t Thresholds) IsZero() bool {
	return t == Thresholds{}
}

// Coverage summarizes how much of a protein is spanned by passing peptides.
type Coverage struct {
	CoveredCount    int     `json:"covered_count"`
	CoveragePercent float64 `json:"coverage_percent"`
	PeptideCount    int     `json:"peptide_count"`
	Precalculated   bool    `json:"is_precalculated"`
}
