package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ReportRow is one protein in a batch coverage report.
type ReportRow struct {
	Accession       string
	Description     string
	Length          int
	Peptides        int
	Covered         int
	CoveragePercent float64
	MaxLayers       int
	Err             error
}

// TabWriter writes report rows in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#accession",
			"description",
			"length",
			"peptides",
			"covered",
			"coverage_percent",
			"max_layers",
			"error",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single row. Rows carrying an error leave the numeric
// columns as "-".
func (tw *TabWriter) Write(r ReportRow) error {
	description := r.Description
	if description == "" {
		description = "-"
	}
	// Tabs or newlines in free text would break the row.
	description = strings.Map(func(c rune) rune {
		if c == '\t' || c == '\n' || c == '\r' {
			return ' '
		}
		return c
	}, description)

	values := []string{r.Accession, description, "-", "-", "-", "-", "-", "-"}
	if r.Err != nil {
		values[7] = r.Err.Error()
	} else {
		values[2] = strconv.Itoa(r.Length)
		values[3] = strconv.Itoa(r.Peptides)
		values[4] = strconv.Itoa(r.Covered)
		values[5] = strconv.FormatFloat(r.CoveragePercent, 'f', 2, 64)
		values[6] = strconv.Itoa(r.MaxLayers)
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
