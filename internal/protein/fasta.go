package protein

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"
)

// residues is the IUPAC protein alphabet extended with selenocysteine (U) and
// pyrrolysine (O), both of which occur in UniProt proteomes.
var residues = alphabet.Must(alphabet.NewAlphabet("-abcdefghijklmnopqrstuvwxyz*", feat.Protein, '-', 'x', !alphabet.CaseSensitive))

// LoadFASTA reads protein records from a FASTA file. Files ending in .gz are
// decompressed transparently.
func LoadFASTA(path string, logger *zap.Logger) ([]*Protein, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ReadFASTA(reader, logger)
}

// ReadFASTA parses protein FASTA content. Residues are upper-cased. A record
// containing a letter outside the protein alphabet is skipped with a warning
// on logger, which may be nil.
func ReadFASTA(r io.Reader, logger *zap.Logger) ([]*Protein, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := linear.NewSeq("", nil, residues)
	sc := seqio.NewScanner(fasta.NewReader(r, t))

	var proteins []*Protein
	seen := make(map[string]bool)
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		accession, description := parseHeader(s.Name(), s.Desc)
		if accession == "" {
			return nil, fmt.Errorf("FASTA record %d: empty header", len(proteins)+1)
		}
		if seen[accession] {
			return nil, fmt.Errorf("FASTA record %s: duplicate accession", accession)
		}
		seen[accession] = true

		sequence := strings.ToUpper(string(alphabet.LettersToBytes(s.Seq)))
		if i := invalidResidue(sequence); i >= 0 {
			logger.Warn("skipping FASTA record with invalid residue",
				zap.String("accession", accession),
				zap.String("residue", string(sequence[i])),
				zap.Int("position", i+1))
			continue
		}

		proteins = append(proteins, &Protein{
			Accession:   accession,
			Description: description,
			Sequence:    sequence,
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	return proteins, nil
}

// invalidResidue returns the index of the first byte of seq outside the
// protein alphabet, or -1.
func invalidResidue(seq string) int {
	for i := 0; i < len(seq); i++ {
		if !residues.IsValid(alphabet.Letter(seq[i])) {
			return i
		}
	}
	return -1
}

// parseHeader extracts the accession and description from a FASTA header.
// UniProt headers look like:
// >sp|P69905|HBA_HUMAN Hemoglobin subunit alpha OS=Homo sapiens
// Anything else uses the first token as the accession.
func parseHeader(id, desc string) (accession, description string) {
	description = strings.TrimSpace(desc)
	parts := strings.Split(id, "|")
	if len(parts) >= 2 && (parts[0] == "sp" || parts[0] == "tr") {
		return parts[1], description
	}
	return id, description
}
