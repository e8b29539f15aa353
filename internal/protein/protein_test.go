package protein

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignmentValidate(t *testing.T) {
	a := Alignment{DenovoID: "scan_12", SubjectStart: 10, SubjectEnd: 30}
	assert.NoError(t, a.Validate(100))
	assert.NoError(t, a.Validate(30), "end on last residue")

	err := a.Validate(29)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInterval))
	assert.Contains(t, err.Error(), "scan_12")

	zero := Alignment{SubjectStart: 0, SubjectEnd: 5}
	assert.ErrorIs(t, zero.Validate(100), ErrInvalidInterval)

	reversed := Alignment{SubjectStart: 20, SubjectEnd: 10}
	assert.ErrorIs(t, reversed.Validate(100), ErrInvalidInterval)
}

func TestAlignmentZeroBased(t *testing.T) {
	a := Alignment{SubjectStart: 5, SubjectEnd: 15}
	assert.Equal(t, 4, a.Start0())
	assert.Equal(t, 14, a.End0())
}

func TestValidateAll(t *testing.T) {
	peps := []Alignment{
		{DenovoID: "a", SubjectStart: 1, SubjectEnd: 3},
		{DenovoID: "b", SubjectStart: 8, SubjectEnd: 11},
	}
	assert.NoError(t, ValidateAll(11, peps))

	err := ValidateAll(10, peps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peptide b")
}

func TestThresholdsIsZero(t *testing.T) {
	assert.True(t, Thresholds{}.IsZero())
	assert.False(t, Thresholds{MinAllowingOneMinus: 1}.IsZero())
}
