// Package msblast reads MS-BLAST peptide-to-protein alignment tables.
package msblast

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brownovo/pepmap/internal/protein"
)

// MS-BLAST result column names
const (
	ColAccession                = "accession"
	ColDenovoID                 = "denovo_id"
	ColSubjectStart             = "subject_start"
	ColSubjectEnd               = "subject_end"
	ColGlobalScore              = "global_score"
	ColIncludingPos             = "max_aa_including_pos"
	ColExcludingPos             = "max_aa_excluding_pos"
	ColAllowingOnePosOrOneMinus = "max_aa_allowing_one_pos_or_one_minus"
	ColAllowingOneMinus         = "max_aa_allowing_one_minus"
	ColFullSequence             = "full_sequence"
	ColFilteredSequence         = "filtered_sequence"
	ColQueryStart               = "query_start"
	ColQueryEnd                 = "query_end"
	ColQueryAligned             = "query_aligned"
	ColSubjectAligned           = "subject_aligned"
	ColFullResidueScores        = "full_residue_scores"
)

// Columns lists every column in canonical order.
var Columns = []string{
	ColAccession, ColDenovoID, ColSubjectStart, ColSubjectEnd,
	ColGlobalScore, ColIncludingPos, ColExcludingPos,
	ColAllowingOnePosOrOneMinus, ColAllowingOneMinus,
	ColFullSequence, ColFilteredSequence,
	ColQueryStart, ColQueryEnd, ColQueryAligned, ColSubjectAligned,
	ColFullResidueScores,
}

// required columns; the rest may be absent.
var required = []string{
	ColAccession, ColDenovoID, ColSubjectStart, ColSubjectEnd,
	ColGlobalScore, ColIncludingPos, ColExcludingPos,
	ColAllowingOnePosOrOneMinus, ColAllowingOneMinus,
}

// Parser reads alignments from a tab-delimited MS-BLAST result file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    map[string]int
	logger     *zap.Logger
}

// NewParser creates a parser for the given file. Gzipped input is detected
// from its magic bytes.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open msblast file: %w", err)
	}

	p := &Parser{file: file, logger: zap.NewNop()}

	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read msblast header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek msblast file: %w", err)
	}

	// gzip magic number (0x1f, 0x8b)
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r), logger: zap.NewNop()}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// SetLogger sets the logger used to report skipped rows.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// parseHeader reads lines up to the first non-comment line and indexes its columns.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{Line: p.lineNumber, Message: "no header line found"}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.columns = make(map[string]int)
		for i, col := range strings.Split(line, "\t") {
			p.columns[strings.TrimSpace(col)] = i
		}
		for _, col := range required {
			if _, ok := p.columns[col]; !ok {
				return &ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("required column '%s' not found in header", col),
				}
			}
		}
		return nil
	}
}

// Next reads the next alignment. Returns nil, nil when there are no more rows.
// A malformed row yields a *ParseError; reading may continue after it.
func (p *Parser) Next() (*protein.Alignment, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read alignment line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// ReadAll reads every alignment, skipping malformed rows with a warning.
// It returns the alignments and the number of rows skipped.
func (p *Parser) ReadAll() ([]protein.Alignment, int, error) {
	var (
		alignments []protein.Alignment
		skipped    int
	)
	for {
		a, err := p.Next()
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				p.logger.Warn("skipping malformed msblast row",
					zap.Int("line", pe.Line),
					zap.String("reason", pe.Message))
				skipped++
				continue
			}
			return nil, skipped, err
		}
		if a == nil {
			return alignments, skipped, nil
		}
		alignments = append(alignments, *a)
	}
}

func (p *Parser) parseLine(line string) (*protein.Alignment, error) {
	fields := strings.Split(line, "\t")

	str := func(col string) string {
		i, ok := p.columns[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var firstErr error
	num := func(col string) int {
		s := str(col)
		if s == "" {
			if firstErr == nil {
				firstErr = &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("missing %s", col)}
			}
			return 0
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			// Scores are sometimes written as floats; truncate them.
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				if firstErr == nil {
					firstErr = &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid %s: %s", col, s)}
				}
				return 0
			}
			v = int(f)
		}
		return v
	}
	optNum := func(col string) int {
		if str(col) == "" {
			return 0
		}
		return num(col)
	}

	a := &protein.Alignment{
		Accession:                str(ColAccession),
		DenovoID:                 str(ColDenovoID),
		SubjectStart:             num(ColSubjectStart),
		SubjectEnd:               num(ColSubjectEnd),
		GlobalScore:              num(ColGlobalScore),
		IncludingPos:             num(ColIncludingPos),
		ExcludingPos:             num(ColExcludingPos),
		AllowingOnePosOrOneMinus: num(ColAllowingOnePosOrOneMinus),
		AllowingOneMinus:         num(ColAllowingOneMinus),
		FullSequence:             str(ColFullSequence),
		FilteredSequence:         str(ColFilteredSequence),
		QueryStart:               optNum(ColQueryStart),
		QueryEnd:                 optNum(ColQueryEnd),
		QueryAligned:             str(ColQueryAligned),
		SubjectAligned:           str(ColSubjectAligned),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if a.Accession == "" {
		return nil, &ParseError{Line: p.lineNumber, Message: "empty accession"}
	}

	scores, err := ParseScores(str(ColFullResidueScores))
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}
	a.FullResidueScores = scores

	return a, nil
}

// ParseScores parses a comma-separated list of residue scores.
func ParseScores(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	scores := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid residue score %q", part)
		}
		scores[i] = v
	}
	return scores, nil
}

// FormatScores is the inverse of ParseScores.
func FormatScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, v := range scores {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MS-BLAST parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("msblast parse error at line %d: %s", e.Line, e.Message)
}
