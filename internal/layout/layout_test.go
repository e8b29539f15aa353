package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownovo/pepmap/internal/protein"
)

func testProtein(n int) *protein.Protein {
	return &protein.Protein{Accession: "P12345", Sequence: strings.Repeat("ACDEFGHIKLMNPQRSTVWY", n)[:n]}
}

func TestBuild(t *testing.T) {
	p := testProtein(120)
	peps := []protein.Alignment{pep(5, 15), pep(10, 20), pep(45, 60), pep(101, 120)}

	l, err := Build(p, peps, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "P12345", l.Accession)
	assert.Equal(t, 120, l.Length)
	require.Len(t, l.Lines, 3)

	first := l.Lines[0]
	require.Len(t, first.Spans, 3)
	assert.Equal(t, 2, first.Layers)
	assert.Equal(t, []int{0, 1, 0}, lanesOf(first.Spans))
	assert.Equal(t, Bar{Offset: 18 + 4*12, Width: 11*12 - 2, Top: 0}, first.Spans[0].Bar)
	assert.Equal(t, 6.0, first.Spans[1].Bar.Top)

	second := l.Lines[1]
	require.Len(t, second.Spans, 1)
	assert.Equal(t, Span{Peptide: 2, Start: 0, End: 9, Lane: 0, Bar: Bar{Offset: 26, Width: 118}}, second.Spans[0])

	third := l.Lines[2]
	require.Len(t, third.Spans, 1)
	assert.Equal(t, 3, third.Spans[0].Peptide)
	assert.Equal(t, 1, third.Layers)

	assert.Equal(t, 2, l.MaxLayers())
	assert.Len(t, l.SpansOf(2), 2)
}

func TestBuild_Reproducible(t *testing.T) {
	p := testProtein(300)
	peps := []protein.Alignment{pep(1, 80), pep(40, 41), pep(40, 200), pep(150, 300), pep(151, 152)}

	a, err := Build(p, peps, DefaultOptions())
	require.NoError(t, err)
	b, err := Build(p, peps, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_Errors(t *testing.T) {
	p := testProtein(40)

	_, err := Build(p, []protein.Alignment{pep(30, 41)}, DefaultOptions())
	assert.ErrorIs(t, err, protein.ErrInvalidInterval)

	_, err = Build(p, nil, Options{ResiduesPerLine: -1})
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestBuild_NoPeptides(t *testing.T) {
	l, err := Build(testProtein(10), nil, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, l.Lines, 1)
	assert.Equal(t, 0, l.Lines[0].Layers)
	assert.Equal(t, 0, l.MaxLayers())
}
