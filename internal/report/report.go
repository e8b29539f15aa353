// Package report computes coverage and layouts for many proteins in parallel.
package report

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/brownovo/pepmap/internal/coverage"
	"github.com/brownovo/pepmap/internal/index"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/output"
	"github.com/brownovo/pepmap/internal/protein"
)

// Lookup fetches a protein and its passing peptides.
type Lookup interface {
	Detail(accession string, th protein.Thresholds) (*index.Detail, error)
}

// WorkItem is one protein to report on.
type WorkItem struct {
	Seq       int
	Accession string
}

// WorkResult holds the report for a single protein.
type WorkResult struct {
	Seq         int
	Accession   string
	Description string
	Coverage    protein.Coverage
	Layout      *layout.Layout
	Err         error
}

// Row converts the result to a report table row.
func (r WorkResult) Row() output.ReportRow {
	row := output.ReportRow{
		Accession:   r.Accession,
		Description: r.Description,
		Err:         r.Err,
	}
	if r.Err == nil {
		row.Length = r.Layout.Length
		row.Peptides = r.Coverage.PeptideCount
		row.Covered = r.Coverage.CoveredCount
		row.CoveragePercent = r.Coverage.CoveragePercent
		row.MaxLayers = r.Layout.MaxLayers()
	}
	return row
}

// Reporter builds per-protein coverage and layouts.
type Reporter struct {
	lookup     Lookup
	thresholds protein.Thresholds
	opts       layout.Options
	resolver   *coverage.Resolver
	logger     *zap.Logger
}

// NewReporter creates a reporter that filters peptides with th and lays
// proteins out with opts.
func NewReporter(lookup Lookup, th protein.Thresholds, opts layout.Options) *Reporter {
	return &Reporter{
		lookup:     lookup,
		thresholds: th,
		opts:       opts,
		resolver:   coverage.NewResolver(),
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for per-protein failures and coverage fallbacks.
func (r *Reporter) SetLogger(l *zap.Logger) {
	r.logger = l
	r.resolver.SetLogger(l)
}

// Report computes the result for one protein. Failures are returned in
// WorkResult.Err.
func (r *Reporter) Report(accession string) WorkResult {
	res := WorkResult{Accession: accession}

	d, err := r.lookup.Detail(accession, r.thresholds)
	if err != nil {
		res.Err = err
		return res
	}
	res.Description = d.Protein.Description

	res.Coverage, err = r.resolver.Resolve(d.Protein.Len(), d.Peptides, d.Coverage)
	if err != nil {
		res.Err = err
		return res
	}

	res.Layout, err = layout.Build(d.Protein, d.Peptides, r.opts)
	if err != nil {
		res.Err = err
	}
	return res
}

// Parallel reports on work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Reporter) Parallel(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res := r.Report(item.Accession)
				res.Seq = item.Seq
				if res.Err != nil {
					r.logger.Warn("report failed",
						zap.String("accession", item.Accession), zap.Error(res.Err))
				}
				results <- res
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Run reports on every accession and calls fn with the results in input
// order. Per-protein failures are delivered to fn; Run only returns an error
// when fn does.
func (r *Reporter) Run(accessions []string, workers int, fn func(WorkResult) error) error {
	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, acc := range accessions {
			items <- WorkItem{Seq: i, Accession: acc}
		}
	}()
	return OrderedCollect(r.Parallel(items, workers), fn)
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for res := range results {
		pending[res.Seq] = res

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
