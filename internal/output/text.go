package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/brownovo/pepmap/internal/classify"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/protein"
)

// TextRenderer draws layouts as lane diagrams and alignments as residue tables.
//
// A lane diagram prints each wrapped line as a numbered sequence row followed
// by one row per lane, with '=' under the residues a peptide covers:
//
//	 1 MVLSPADKTNVKAAWGKVGA
//	   =====
//	      ============
type TextRenderer struct {
	w *bufio.Writer
}

// NewTextRenderer creates a text renderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: bufio.NewWriter(w)}
}

// RenderLayout writes a coverage summary line and the lane diagram.
func (r *TextRenderer) RenderLayout(l *layout.Layout, c protein.Coverage) error {
	source := "computed"
	if c.Precalculated {
		source = "precomputed"
	}
	fmt.Fprintf(r.w, "%s\tlength %d\tcovered %d (%.2f%%, %s)\tpeptides %d\tlayers %d\n",
		l.Accession, l.Length, c.CoveredCount, c.CoveragePercent, source, c.PeptideCount, l.MaxLayers())

	labelWidth := 1
	if n := len(l.Lines); n > 0 {
		labelWidth = len(strconv.Itoa(l.Lines[n-1].Label()))
	}
	indent := strings.Repeat(" ", labelWidth+1)

	for i := range l.Lines {
		line := &l.Lines[i]
		fmt.Fprintf(r.w, "%*d %s\n", labelWidth, line.Label(), line.Residues)
		for _, row := range laneRows(line) {
			fmt.Fprintf(r.w, "%s%s\n", indent, row)
		}
	}

	_, err := r.w.WriteString("\n")
	return err
}

// laneRows draws one row per lane; trailing spaces are trimmed.
func laneRows(line *layout.Line) []string {
	rows := make([][]byte, line.Layers)
	width := line.End - line.Start
	for i := range rows {
		rows[i] = []byte(strings.Repeat(" ", width))
	}
	for _, s := range line.Spans {
		for c := s.Start; c <= s.End; c++ {
			rows[s.Lane][c] = '='
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

// RenderAlignment writes one row per peptide residue and per-class totals.
func (r *TextRenderer) RenderAlignment(a *classify.Annotation) error {
	fmt.Fprintf(r.w, "%s on %s\n", a.DenovoID, a.Accession)

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Pos\tResidue\tClass\tScore")
	for i, res := range a.Residues {
		fmt.Fprintf(tw, "%d\t%c\t%s\t%s\n", i+1, res.Letter, res.Class, res.ScoreText())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := a.Counts()
	classes := make([]classify.Class, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, c := range classes {
		fmt.Fprintf(r.w, "  %-20s%d\n", c, counts[c])
	}

	_, err := r.w.WriteString("\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (r *TextRenderer) Flush() error {
	return r.w.Flush()
}
