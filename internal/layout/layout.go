package layout

import (
	"fmt"

	"github.com/brownovo/pepmap/internal/protein"
)

// Options controls line wrapping and geometry.
type Options struct {
	ResiduesPerLine int
	Geometry        Geometry
}

// DefaultOptions returns 50 residues per line with the default geometry.
func DefaultOptions() Options {
	return Options{
		ResiduesPerLine: DefaultResiduesPerLine,
		Geometry:        DefaultGeometry(),
	}
}

// Layout is the complete, immutable description of one protein render.
type Layout struct {
	Accession       string              `json:"accession"`
	Length          int                 `json:"length"`
	ResiduesPerLine int                 `json:"residues_per_line"`
	Peptides        []protein.Alignment `json:"-"`
	Lines           []Line              `json:"lines"`
}

// Build wraps p's sequence, assigns lanes per line and places every span.
// peptides should already be filtered; span Peptide fields index into it.
// A new Layout is produced on every call; lanes are order-dependent, so a
// previous layout must be replaced rather than patched.
func Build(p *protein.Protein, peptides []protein.Alignment, opts Options) (*Layout, error) {
	lines, err := Wrap(p.Sequence, opts.ResiduesPerLine, peptides)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", p.Accession, err)
	}

	for i := range lines {
		spans, layers := AssignLanes(lines[i].Spans)
		for j := range spans {
			spans[j].Bar = opts.Geometry.Place(spans[j], lines[i].Start)
		}
		lines[i].Spans = spans
		lines[i].Layers = layers
	}

	return &Layout{
		Accession:       p.Accession,
		Length:          p.Len(),
		ResiduesPerLine: opts.ResiduesPerLine,
		Peptides:        peptides,
		Lines:           lines,
	}, nil
}

// MaxLayers returns the largest lane count over all lines.
func (l *Layout) MaxLayers() int {
	best := 0
	for i := range l.Lines {
		if l.Lines[i].Layers > best {
			best = l.Lines[i].Layers
		}
	}
	return best
}

// SpansOf returns the spans drawn for one peptide, in line order.
func (l *Layout) SpansOf(peptide int) []Span {
	var spans []Span
	for i := range l.Lines {
		for _, s := range l.Lines[i].Spans {
			if s.Peptide == peptide {
				spans = append(spans, s)
			}
		}
	}
	return spans
}
