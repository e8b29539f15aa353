package coverage

import (
	"math"

	"go.uber.org/zap"

	"github.com/brownovo/pepmap/internal/protein"
)

// percentTolerance bounds the disagreement allowed between a precomputed
// percentage and one derived from its own covered count.
const percentTolerance = 1e-6

// Resolver picks between a coverage value supplied by the protein detail
// service and a local computation.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver that logs nothing.
func NewResolver() *Resolver {
	return &Resolver{logger: zap.NewNop()}
}

// SetLogger sets the logger used to report fallbacks.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve returns pre when it is well-formed and describes the same peptide
// set, otherwise the coverage computed from peptides.
func (r *Resolver) Resolve(seqLen int, peptides []protein.Alignment, pre *protein.Coverage) (protein.Coverage, error) {
	if pre != nil {
		reason := malformed(seqLen, len(peptides), *pre)
		if reason == "" {
			c := *pre
			c.Precalculated = true
			return c, nil
		}
		r.logger.Warn("discarding precomputed coverage",
			zap.String("reason", reason),
			zap.Int("covered", pre.CoveredCount),
			zap.Float64("percent", pre.CoveragePercent),
			zap.Int("peptides", pre.PeptideCount))
	}
	return Compute(seqLen, peptides)
}

// malformed returns a non-empty reason when c cannot be trusted.
func malformed(seqLen, peptideCount int, c protein.Coverage) string {
	switch {
	case math.IsNaN(c.CoveragePercent) || math.IsInf(c.CoveragePercent, 0):
		return "percent not finite"
	case c.CoveragePercent < 0 || c.CoveragePercent > 100:
		return "percent out of range"
	case c.CoveredCount < 0 || c.CoveredCount > seqLen:
		return "covered count out of range"
	case c.PeptideCount != peptideCount:
		return "peptide count mismatch"
	case math.Abs(Percent(c.CoveredCount, seqLen)-c.CoveragePercent) > percentTolerance:
		return "percent disagrees with covered count"
	}
	return ""
}
