// Package coverage computes protein sequence coverage from peptide alignments.
package coverage

import (
	"fmt"

	"github.com/biogo/store/step"

	"github.com/brownovo/pepmap/internal/protein"
)

// Compute returns the coverage of a protein of length seqLen by peptides.
// Every residue spanned by at least one peptide is counted once. Peptides must
// already be filtered; an interval outside [1, seqLen] is rejected.
func Compute(seqLen int, peptides []protein.Alignment) (protein.Coverage, error) {
	if err := protein.ValidateAll(seqLen, peptides); err != nil {
		return protein.Coverage{}, err
	}

	covered := make(map[int]struct{})
	for i := range peptides {
		for pos := peptides[i].Start0(); pos <= peptides[i].End0(); pos++ {
			covered[pos] = struct{}{}
		}
	}

	return protein.Coverage{
		CoveredCount:    len(covered),
		CoveragePercent: Percent(len(covered), seqLen),
		PeptideCount:    len(peptides),
	}, nil
}

// Percent returns covered/seqLen*100, or 0 for an empty sequence.
func Percent(covered, seqLen int) float64 {
	if seqLen <= 0 {
		return 0
	}
	return float64(covered) / float64(seqLen) * 100
}

// Segment is a maximal run of covered residues, 1-based and inclusive.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of residues in the segment.
func (s Segment) Len() int { return s.End - s.Start + 1 }

// covered is a bool satisfying the step.Equaler interface.
type covered bool

// Equal returns whether c equals e. Equal assumes the underlying type of e is covered.
func (c covered) Equal(e step.Equaler) bool {
	return c == e.(covered)
}

// Segments returns the covered runs of a protein, in sequence order. The sum
// of segment lengths equals Compute's CoveredCount for the same peptides.
func Segments(seqLen int, peptides []protein.Alignment) ([]Segment, error) {
	if err := protein.ValidateAll(seqLen, peptides); err != nil {
		return nil, err
	}
	if seqLen == 0 || len(peptides) == 0 {
		return nil, nil
	}

	vec, err := step.New(0, seqLen, covered(false))
	if err != nil {
		return nil, fmt.Errorf("create step vector: %w", err)
	}
	for i := range peptides {
		// step ranges are half-open, 0-based.
		vec.SetRange(peptides[i].Start0(), peptides[i].SubjectEnd, covered(true))
	}

	var segs []Segment
	vec.Do(func(start, end int, e step.Equaler) {
		if e.(covered) {
			segs = append(segs, Segment{Start: start + 1, End: end})
		}
	})
	return segs, nil
}
