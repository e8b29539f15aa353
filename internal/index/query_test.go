package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownovo/pepmap/internal/protein"
)

func accessions(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Accession
	}
	return out
}

func TestSearch_Ranking(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	// P6990 is the exact match, P69905 the prefix match.
	hits, err := s.Search("p6990")
	require.NoError(t, err)
	assert.Equal(t, []string{"P6990", "P69905"}, accessions(hits))

	// P69905 covers 15/30 = 50%, P68871 covers 3/30 = 10%.
	hits, err = s.Search("hemoglobin")
	require.NoError(t, err)
	assert.Equal(t, []string{"P69905", "P68871"}, accessions(hits))
	assert.InDelta(t, 50.0, hits[0].CoveragePercent, 1e-9)
	assert.Equal(t, "Hemoglobin subunit alpha", hits[0].Description)
}

func TestSearch_PrefixBeforeSubstring(t *testing.T) {
	s := openInMemory(t)
	_, err := s.Ingest([]*protein.Protein{
		{Accession: "XAB1", Sequence: "AAAA"},
		{Accession: "AB2", Sequence: "AAAA"},
	}, []protein.Alignment{alignment("XAB1", "d", 1, 4, 1)})
	require.NoError(t, err)

	hits, err := s.Search("ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"AB2", "XAB1"}, accessions(hits))
}

func TestSearch_EmptyQueryReturnsAllByCoverage(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	hits, err := s.Search("")
	require.NoError(t, err)
	// P6990 100%, P69905 50%, P68871 10%, Q00001 0%
	assert.Equal(t, []string{"P6990", "P69905", "P68871", "Q00001"}, accessions(hits))
}

func TestSearch_NoMatch(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	hits, err := s.Search("kinase")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDefault(t *testing.T) {
	s := openInMemory(t)

	_, err := s.Default()
	assert.ErrorIs(t, err, ErrNotFound)

	ingestSample(t, s)
	acc, err := s.Default()
	require.NoError(t, err)
	assert.Equal(t, "P6990", acc)
}

func TestDetail_ZeroThresholds(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	d, err := s.Detail("P69905", protein.Thresholds{})
	require.NoError(t, err)
	assert.Equal(t, "MVLSPADKTNVKAAWGKVGAHAGEYGAEAL", d.Protein.Sequence)
	require.Len(t, d.Peptides, 2)
	assert.Equal(t, "scan_1", d.Peptides[0].DenovoID)
	assert.Equal(t, "scan_2", d.Peptides[1].DenovoID)
	assert.Equal(t, []float64{0.9, 0.8, 0.7, 0.6, 0.5}, d.Peptides[0].FullResidueScores)
	assert.Nil(t, d.Peptides[1].FullResidueScores)

	require.NotNil(t, d.Coverage)
	assert.Equal(t, 15, d.Coverage.CoveredCount)
	assert.Equal(t, 2, d.Coverage.PeptideCount)
	assert.InDelta(t, 50.0, d.Coverage.CoveragePercent, 1e-9)
}

func TestDetail_ThresholdsFilterConjunctively(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	d, err := s.Detail("P69905", protein.Thresholds{MinScore: 20})
	require.NoError(t, err)
	require.Len(t, d.Peptides, 1)
	assert.Equal(t, "scan_1", d.Peptides[0].DenovoID)
	assert.Nil(t, d.Coverage)

	// scan_1 passes the score but fails the run length.
	d, err = s.Detail("P69905", protein.Thresholds{MinScore: 10, MinIncludingPos: 6})
	require.NoError(t, err)
	require.Len(t, d.Peptides, 1)
	assert.Equal(t, "scan_2", d.Peptides[0].DenovoID)
}

func TestDetail_PeptidesOrderedBySubjectStart(t *testing.T) {
	s := openInMemory(t)
	_, err := s.Ingest(sampleProteins(), []protein.Alignment{
		alignment("Q00001", "late", 4, 5, 10),
		alignment("Q00001", "early", 1, 2, 10),
		alignment("Q00001", "middle_b", 2, 3, 10),
		alignment("Q00001", "middle_a", 2, 4, 10),
	})
	require.NoError(t, err)

	d, err := s.Detail("Q00001", protein.Thresholds{})
	require.NoError(t, err)
	var ids []string
	for _, a := range d.Peptides {
		ids = append(ids, a.DenovoID)
	}
	// Equal starts keep file order.
	assert.Equal(t, []string{"early", "middle_b", "middle_a", "late"}, ids)
}

func TestDetail_NotFound(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	_, err := s.Detail("NOPE", protein.Thresholds{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAlignment(t *testing.T) {
	s := openInMemory(t)
	ingestSample(t, s)

	a, err := s.Alignment("P69905", "scan_1")
	require.NoError(t, err)
	assert.Equal(t, "MVLSP", a.FullSequence)
	assert.Equal(t, 1, a.SubjectStart)

	_, err = s.Alignment("P69905", "scan_4")
	assert.ErrorIs(t, err, ErrNotFound)
}
