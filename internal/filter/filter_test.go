package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brownovo/pepmap/internal/protein"
)

func strong() protein.Alignment {
	return protein.Alignment{
		DenovoID:                 "strong",
		SubjectStart:             1,
		SubjectEnd:               10,
		GlobalScore:              80,
		IncludingPos:             6,
		ExcludingPos:             5,
		AllowingOnePosOrOneMinus: 7,
		AllowingOneMinus:         6,
	}
}

var thresholds = protein.Thresholds{
	MinScore:                    60,
	MinIncludingPos:             5,
	MinExcludingPos:             4,
	MinAllowingOnePosOrOneMinus: 6,
	MinAllowingOneMinus:         5,
}

func TestPasses_AllMet(t *testing.T) {
	a := strong()
	assert.True(t, Passes(&a, thresholds))
	assert.Empty(t, Failed(&a, thresholds))
}

func TestPasses_EqualIsEnough(t *testing.T) {
	a := protein.Alignment{
		GlobalScore:              60,
		IncludingPos:             5,
		ExcludingPos:             4,
		AllowingOnePosOrOneMinus: 6,
		AllowingOneMinus:         5,
	}
	assert.True(t, Passes(&a, thresholds))
}

func TestPasses_EachMetricIndependently(t *testing.T) {
	lower := map[Metric]func(*protein.Alignment){
		MetricGlobalScore:              func(a *protein.Alignment) { a.GlobalScore = 59 },
		MetricIncludingPos:             func(a *protein.Alignment) { a.IncludingPos = 4 },
		MetricExcludingPos:             func(a *protein.Alignment) { a.ExcludingPos = 3 },
		MetricAllowingOnePosOrOneMinus: func(a *protein.Alignment) { a.AllowingOnePosOrOneMinus = 5 },
		MetricAllowingOneMinus:         func(a *protein.Alignment) { a.AllowingOneMinus = 4 },
	}
	for m, fn := range lower {
		t.Run(m.String(), func(t *testing.T) {
			a := strong()
			fn(&a)
			assert.False(t, Passes(&a, thresholds))
			assert.Equal(t, []Metric{m}, Failed(&a, thresholds))
			assert.Empty(t, Apply([]protein.Alignment{a}, thresholds))
		})
	}
}

func TestPasses_ZeroThresholds(t *testing.T) {
	a := protein.Alignment{}
	assert.True(t, Passes(&a, protein.Thresholds{}))
}

func TestFailed_ReportsEveryShortfall(t *testing.T) {
	a := strong()
	a.GlobalScore = 12
	a.ExcludingPos = 2
	assert.Equal(t, []Metric{MetricGlobalScore, MetricExcludingPos}, Failed(&a, thresholds))
	assert.Equal(t, "global_score 12 < 60, max_aa_excluding_pos 2 < 4", Explain(&a, thresholds))
}

func TestExplain_Passing(t *testing.T) {
	a := strong()
	assert.Empty(t, Explain(&a, thresholds))
}

func TestApply_StableOrder(t *testing.T) {
	weak := strong()
	weak.DenovoID = "weak"
	weak.GlobalScore = 10

	a, b := strong(), strong()
	a.DenovoID, b.DenovoID = "a", "b"

	got := Apply([]protein.Alignment{a, weak, b}, thresholds)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].DenovoID)
		assert.Equal(t, "b", got[1].DenovoID)
	}
}

func TestApply_Empty(t *testing.T) {
	assert.Empty(t, Apply(nil, thresholds))
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "global_score", MetricGlobalScore.String())
	assert.Equal(t, "max_aa_allowing_one_minus", MetricAllowingOneMinus.String())
	assert.Equal(t, "unknown", Metric(42).String())
}
