// Package output renders protein coverage layouts, alignment annotations and
// batch reports.
package output

import (
	"fmt"
	"io"

	"github.com/brownovo/pepmap/internal/classify"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/protein"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Renderer draws layouts and alignment annotations.
type Renderer interface {
	RenderLayout(l *layout.Layout, c protein.Coverage) error
	RenderAlignment(a *classify.Annotation) error
	Flush() error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format string, w io.Writer) (Renderer, error) {
	switch format {
	case FormatText, "":
		return NewTextRenderer(w), nil
	case FormatJSON:
		return NewJSONRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}
