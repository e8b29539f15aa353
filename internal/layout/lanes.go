package layout

import "sort"

// AssignLanes places each span in the lowest-numbered lane where it overlaps
// no span already placed there, processing spans in input order. It returns
// a copy of spans with Lane set and the number of lanes used.
//
// The result depends on input order. Spans sorted by Start use exactly
// MaxDepth lanes; any other order may use more.
func AssignLanes(spans []Span) ([]Span, int) {
	placed := make([]Span, len(spans))
	var lanes [][]Span

	for i, s := range spans {
		lane := -1
		for l, occupants := range lanes {
			if fits(s, occupants) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(lanes)
			lanes = append(lanes, nil)
		}
		s.Lane = lane
		lanes[lane] = append(lanes[lane], s)
		placed[i] = s
	}

	return placed, len(lanes)
}

func fits(s Span, occupants []Span) bool {
	for _, o := range occupants {
		if s.Overlaps(o) {
			return false
		}
	}
	return true
}

// MaxDepth returns the largest number of spans covering any single column.
func MaxDepth(spans []Span) int {
	type event struct {
		pos   int
		delta int
	}
	events := make([]event, 0, 2*len(spans))
	for _, s := range spans {
		events = append(events, event{s.Start, 1}, event{s.End + 1, -1})
	}
	// Closing events sort before opening ones at the same column.
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].delta < events[j].delta
	})

	depth, best := 0, 0
	for _, e := range events {
		depth += e.delta
		if depth > best {
			best = depth
		}
	}
	return best
}
