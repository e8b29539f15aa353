// Package layout arranges peptide alignments on wrapped protein sequence
// lines so that overlapping peptides never collide.
package layout

import (
	"errors"
	"fmt"

	"github.com/brownovo/pepmap/internal/protein"
)

// DefaultResiduesPerLine is the display line width in residues.
const DefaultResiduesPerLine = 50

// ErrInvalidWidth is returned for a non-positive residues-per-line value.
var ErrInvalidWidth = errors.New("residues per line must be positive")

// Span is the visible part of one peptide on one display line.
type Span struct {
	Peptide int `json:"peptide"` // Index into the layout's peptide list
	Start   int `json:"start"`   // 0-based offset within the line, inclusive
	End     int `json:"end"`     // 0-based offset within the line, inclusive
	Lane    int `json:"lane"`    // Vertical slot, 0 is closest to the sequence
	Bar     Bar `json:"bar"`     // Placement, filled in by Build
}

// Overlaps reports whether s and o share at least one column.
func (s Span) Overlaps(o Span) bool {
	return !(s.End < o.Start || s.Start > o.End)
}

// Line is one fixed-width row of the wrapped protein sequence.
type Line struct {
	Index    int    `json:"index"`    // 0-based line number
	Start    int    `json:"start"`    // 0-based residue offset of the first residue
	End      int    `json:"end"`      // 0-based residue offset one past the last residue
	Residues string `json:"residues"` // Sequence[Start:End]
	Spans    []Span `json:"spans"`    // Intersecting peptides, input order
	Layers   int    `json:"layers"`   // Number of lanes used, 0 if no spans
}

// Label returns the 1-based number of the first residue on the line.
func (l *Line) Label() int {
	return l.Start + 1
}

// Wrap splits sequence into lines of residuesPerLine residues and, for each
// line, lists the peptides that intersect it clipped to the line. Lanes are
// not assigned.
func Wrap(sequence string, residuesPerLine int, peptides []protein.Alignment) ([]Line, error) {
	if residuesPerLine <= 0 {
		return nil, fmt.Errorf("wrap %d: %w", residuesPerLine, ErrInvalidWidth)
	}
	if err := protein.ValidateAll(len(sequence), peptides); err != nil {
		return nil, err
	}

	n := (len(sequence) + residuesPerLine - 1) / residuesPerLine
	lines := make([]Line, n)
	idx := buildSpanIndex(peptides)

	for i := range lines {
		lineStart := i * residuesPerLine
		lineEnd := lineStart + residuesPerLine
		if lineEnd > len(sequence) {
			lineEnd = len(sequence)
		}

		line := Line{
			Index:    i,
			Start:    lineStart,
			End:      lineEnd,
			Residues: sequence[lineStart:lineEnd],
		}
		for _, p := range idx.overlapping(lineStart, lineEnd) {
			start, end := peptides[p].Start0(), peptides[p].End0()
			line.Spans = append(line.Spans, Span{
				Peptide: p,
				Start:   max(start, lineStart) - lineStart,
				End:     min(end, lineEnd-1) - lineStart,
			})
		}
		lines[i] = line
	}

	return lines, nil
}
