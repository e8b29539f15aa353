// Package classify labels every residue of a de novo peptide against its
// reported protein alignment.
package classify

import (
	"strconv"
	"strings"

	"github.com/brownovo/pepmap/internal/protein"
)

// Gap is the alignment gap character.
const Gap = '-'

// Class is the category of one raw peptide residue.
type Class int

const (
	// UnmatchedRaw lies outside the filtered subsequence.
	UnmatchedRaw Class = iota
	// FilteredUnmatched lies in the filtered subsequence but outside the matched region.
	FilteredUnmatched
	// Matched lies in the matched region with identical or gapped aligned characters.
	Matched
	// Mismatched lies in the matched region with differing, non-gap aligned characters.
	Mismatched
)

var classNames = [...]string{"unmatched_raw", "filtered_unmatched", "matched", "mismatched"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Residue is one classified position of the raw peptide.
type Residue struct {
	Letter   byte    `json:"-"`
	Class    Class   `json:"class"`
	Score    float64 `json:"score"`
	HasScore bool    `json:"has_score"`
}

// ScoreText returns the score for display, or "unavailable".
func (r Residue) ScoreText() string {
	if !r.HasScore {
		return "unavailable"
	}
	return strconv.FormatFloat(r.Score, 'f', -1, 64)
}

// Annotation is the residue-level classification of one alignment.
type Annotation struct {
	DenovoID      string    `json:"denovo_id"`
	Accession     string    `json:"accession"`
	FullSequence  string    `json:"full_sequence"`
	FilteredStart int       `json:"filtered_start"` // 0-based, -1 if the filtered sequence was not found
	MatchStart    int       `json:"match_start"`    // 0-based into FullSequence, -1 if none
	MatchEnd      int       `json:"match_end"`      // 0-based inclusive into FullSequence, -1 if none
	Residues      []Residue `json:"residues"`
}

// Classify assigns exactly one Class to every position of a.FullSequence.
// If the filtered sequence is empty or absent from the full sequence, every
// position is UnmatchedRaw.
func Classify(a *protein.Alignment) *Annotation {
	full := a.FullSequence
	ann := &Annotation{
		DenovoID:      a.DenovoID,
		Accession:     a.Accession,
		FullSequence:  full,
		FilteredStart: -1,
		MatchStart:    -1,
		MatchEnd:      -1,
		Residues:      make([]Residue, len(full)),
	}

	filteredStart := -1
	if a.FilteredSequence != "" {
		filteredStart = strings.Index(full, a.FilteredSequence)
	}
	ann.FilteredStart = filteredStart

	var filteredEnd, matchStart, matchEnd int
	if filteredStart >= 0 {
		filteredEnd = filteredStart + len(a.FilteredSequence) - 1
		matchStart = filteredStart + a.QueryStart - 1
		matchEnd = filteredStart + a.QueryEnd - 1
		if a.QueryStart >= 1 && a.QueryEnd >= a.QueryStart {
			ann.MatchStart, ann.MatchEnd = matchStart, matchEnd
		}
	}

	for i := 0; i < len(full); i++ {
		r := Residue{Letter: full[i], Class: UnmatchedRaw}
		if i < len(a.FullResidueScores) {
			r.Score, r.HasScore = a.FullResidueScores[i], true
		}

		switch {
		case filteredStart < 0 || i < filteredStart || i > filteredEnd:
			// outside the filtered subsequence
		case ann.MatchStart < 0 || i < matchStart || i > matchEnd:
			r.Class = FilteredUnmatched
		default:
			r.Class = alignedClass(a, (i-filteredStart)-(a.QueryStart-1))
		}
		ann.Residues[i] = r
	}

	return ann
}

// alignedClass compares the aligned characters at offset. Offsets outside the
// alignment strings default to Matched.
func alignedClass(a *protein.Alignment, offset int) Class {
	if offset < 0 || offset >= len(a.QueryAligned) || offset >= len(a.SubjectAligned) {
		return Matched
	}
	q, s := a.QueryAligned[offset], a.SubjectAligned[offset]
	if q != s && q != Gap && s != Gap {
		return Mismatched
	}
	return Matched
}

// Counts returns the number of residues in each class.
func (a *Annotation) Counts() map[Class]int {
	counts := make(map[Class]int, len(classNames))
	for _, r := range a.Residues {
		counts[r.Class]++
	}
	return counts
}
