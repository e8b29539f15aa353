package layout

import "strconv"

// Geometry converts line-local residue offsets and lanes to drawing
// coordinates. All values share one unit, typically pixels.
type Geometry struct {
	ResidueCellWidth float64 `mapstructure:"residue_cell_width" json:"residue_cell_width"`
	DigitWidth       float64 `mapstructure:"digit_width" json:"digit_width"`
	GutterPadding    float64 `mapstructure:"gutter_padding" json:"gutter_padding"`
	BarMargin        float64 `mapstructure:"bar_margin" json:"bar_margin"`
	LaneHeight       float64 `mapstructure:"lane_height" json:"lane_height"`
}

// DefaultGeometry returns the standard monospace layout metrics.
func DefaultGeometry() Geometry {
	return Geometry{
		ResidueCellWidth: 12,
		DigitWidth:       8,
		GutterPadding:    10,
		BarMargin:        2,
		LaneHeight:       6,
	}
}

// Bar is the drawing rectangle of one span.
type Bar struct {
	Offset float64 `json:"offset"` // Horizontal start, including the gutter
	Width  float64 `json:"width"`
	Top    float64 `json:"top"` // Vertical offset below the sequence row
}

// GutterWidth returns the width of the line-number label for a line whose
// first residue is at 0-based offset lineStart.
func (g Geometry) GutterWidth(lineStart int) float64 {
	digits := len(strconv.Itoa(lineStart + 1))
	return float64(digits)*g.DigitWidth + g.GutterPadding
}

// Place returns the bar for s on a line starting at lineStart.
func (g Geometry) Place(s Span, lineStart int) Bar {
	return Bar{
		Offset: g.GutterWidth(lineStart) + float64(s.Start)*g.ResidueCellWidth,
		Width:  float64(s.End-s.Start+1)*g.ResidueCellWidth - g.BarMargin,
		Top:    float64(s.Lane) * g.LaneHeight,
	}
}
