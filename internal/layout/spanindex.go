package layout

import (
	"sort"

	"github.com/brownovo/pepmap/internal/protein"
)

// spanIndex answers range-overlap queries over peptide intervals using a
// sorted-slice approach. It is built once per layout and never modified.
type spanIndex struct {
	intervals []interval
	maxEnd    []int // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start   int // 0-based, inclusive
	end     int // 0-based, inclusive
	peptide int // index into the input peptide slice
}

// buildSpanIndex creates an index over the 0-based subject intervals of peptides.
func buildSpanIndex(peptides []protein.Alignment) *spanIndex {
	if len(peptides) == 0 {
		return &spanIndex{}
	}

	intervals := make([]interval, len(peptides))
	for i := range peptides {
		intervals[i] = interval{start: peptides[i].Start0(), end: peptides[i].End0(), peptide: i}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Prefix-max array: maxEnd[i] = max(end) for intervals[:i+1]
	maxEnd := make([]int, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &spanIndex{intervals: intervals, maxEnd: maxEnd}
}

// overlapping returns the indices of peptides whose interval intersects the
// half-open range [lo, hi), i.e. start < hi and end >= lo, in ascending
// peptide index order.
func (t *spanIndex) overlapping(lo, hi int) []int {
	if len(t.intervals) == 0 {
		return nil
	}

	// Candidates are [0, n) where n is the first interval with start >= hi.
	n := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start >= hi
	})

	var result []int
	for i := n - 1; i >= 0; i-- {
		// No interval in intervals[:i+1] reaches lo.
		if t.maxEnd[i] < lo {
			break
		}
		if t.intervals[i].end >= lo {
			result = append(result, t.intervals[i].peptide)
		}
	}

	sort.Ints(result)
	return result
}
