// Package filter selects peptide alignments that meet every confidence threshold.
package filter

import (
	"fmt"
	"strings"

	"github.com/brownovo/pepmap/internal/protein"
)

// Metric names one thresholded peptide measure.
type Metric int

const (
	MetricGlobalScore Metric = iota
	MetricIncludingPos
	MetricExcludingPos
	MetricAllowingOnePosOrOneMinus
	MetricAllowingOneMinus
)

var metricNames = [...]string{
	"global_score",
	"max_aa_including_pos",
	"max_aa_excluding_pos",
	"max_aa_allowing_one_pos_or_one_minus",
	"max_aa_allowing_one_minus",
}

// String returns the metric's column name.
func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return "unknown"
	}
	return metricNames[m]
}

// Metrics lists every metric in evaluation order.
var Metrics = []Metric{
	MetricGlobalScore,
	MetricIncludingPos,
	MetricExcludingPos,
	MetricAllowingOnePosOrOneMinus,
	MetricAllowingOneMinus,
}

// pair returns the peptide value and the threshold for m.
func pair(a *protein.Alignment, th protein.Thresholds, m Metric) (value, minimum int) {
	switch m {
	case MetricGlobalScore:
		return a.GlobalScore, th.MinScore
	case MetricIncludingPos:
		return a.IncludingPos, th.MinIncludingPos
	case MetricExcludingPos:
		return a.ExcludingPos, th.MinExcludingPos
	case MetricAllowingOnePosOrOneMinus:
		return a.AllowingOnePosOrOneMinus, th.MinAllowingOnePosOrOneMinus
	case MetricAllowingOneMinus:
		return a.AllowingOneMinus, th.MinAllowingOneMinus
	}
	return 0, 0
}

// Passes reports whether a meets or exceeds all five thresholds.
func Passes(a *protein.Alignment, th protein.Thresholds) bool {
	return a.GlobalScore >= th.MinScore &&
		a.IncludingPos >= th.MinIncludingPos &&
		a.ExcludingPos >= th.MinExcludingPos &&
		a.AllowingOnePosOrOneMinus >= th.MinAllowingOnePosOrOneMinus &&
		a.AllowingOneMinus >= th.MinAllowingOneMinus
}

// Failed returns the metrics for which a is below threshold, in evaluation order.
func Failed(a *protein.Alignment, th protein.Thresholds) []Metric {
	var failed []Metric
	for _, m := range Metrics {
		if v, minimum := pair(a, th, m); v < minimum {
			failed = append(failed, m)
		}
	}
	return failed
}

// Explain describes each failed metric as "name value < minimum", joined by
// commas. It returns "" when a passes.
func Explain(a *protein.Alignment, th protein.Thresholds) string {
	failed := Failed(a, th)
	parts := make([]string, len(failed))
	for i, m := range failed {
		v, minimum := pair(a, th, m)
		parts[i] = fmt.Sprintf("%s %d < %d", m, v, minimum)
	}
	return strings.Join(parts, ", ")
}

// Apply returns the peptides that pass th, preserving input order.
// The input slice is not modified.
func Apply(peptides []protein.Alignment, th protein.Thresholds) []protein.Alignment {
	passing := make([]protein.Alignment, 0, len(peptides))
	for i := range peptides {
		if Passes(&peptides[i], th) {
			passing = append(passing, peptides[i])
		}
	}
	return passing
}
