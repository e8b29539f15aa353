package output

import (
	"encoding/json"
	"io"

	"github.com/brownovo/pepmap/internal/classify"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/protein"
)

// JSONRenderer writes one JSON document per rendered item.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer creates a JSON renderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

type layoutDoc struct {
	Coverage protein.Coverage `json:"coverage"`
	Peptides []string         `json:"peptides"` // denovo ids, indexed by span peptide
	*layout.Layout
}

// RenderLayout encodes the layout with its coverage.
func (r *JSONRenderer) RenderLayout(l *layout.Layout, c protein.Coverage) error {
	ids := make([]string, len(l.Peptides))
	for i := range l.Peptides {
		ids[i] = l.Peptides[i].DenovoID
	}
	return r.enc.Encode(layoutDoc{Coverage: c, Peptides: ids, Layout: l})
}

type residueDoc struct {
	Position int    `json:"position"`
	Letter   string `json:"residue"`
	classify.Residue
}

type alignmentDoc struct {
	*classify.Annotation
	Residues []residueDoc           `json:"residues"`
	Counts   map[classify.Class]int `json:"counts"`
}

// RenderAlignment encodes the annotation with per-residue letters and class totals.
func (r *JSONRenderer) RenderAlignment(a *classify.Annotation) error {
	residues := make([]residueDoc, len(a.Residues))
	for i, res := range a.Residues {
		residues[i] = residueDoc{Position: i + 1, Letter: string(res.Letter), Residue: res}
	}
	return r.enc.Encode(alignmentDoc{Annotation: a, Residues: residues, Counts: a.Counts()})
}

// Flush is a no-op; every document is written as it is rendered.
func (r *JSONRenderer) Flush() error {
	return nil
}
