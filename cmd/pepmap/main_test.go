package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brownovo/pepmap/internal/index"
)

const testFASTA = `>sp|P69905|HBA_HUMAN Hemoglobin subunit alpha
MVLSPADKTNVKAAWGKVGAHAGEYGAEAL
>sp|P68871|HBB_HUMAN Hemoglobin subunit beta
MVHLTPEEKSAVTALWGKVNVDEVGGEALG
`

const testResults = "accession\tdenovo_id\tsubject_start\tsubject_end\tglobal_score\t" +
	"max_aa_including_pos\tmax_aa_excluding_pos\tmax_aa_allowing_one_pos_or_one_minus\t" +
	"max_aa_allowing_one_minus\tfull_sequence\tfiltered_sequence\tquery_start\tquery_end\t" +
	"query_aligned\tsubject_aligned\tfull_residue_scores\n" +
	"P69905\tscan_1\t1\t5\t30\t5\t4\t5\t4\tKMVLSP\tMVLSP\t1\t5\tMVLSP\tMVLSP\t0.1,0.9,0.9,0.8,0.9,0.7\n" +
	"P69905\tscan_2\t4\t15\t12\t12\t11\t12\t11\t\t\t\t\t\t\t\n" +
	"P68871\tscan_3\t1\t3\t40\t3\t3\t3\t3\t\t\t\t\t\t\t\n"

type testEnv struct {
	dir     string
	config  string
	index   string
	fasta   string
	results string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "pepmap.yaml"),
		index:   filepath.Join(dir, "index.duckdb"),
		fasta:   filepath.Join(dir, "proteins.fasta"),
		results: filepath.Join(dir, "results.tsv"),
	}
	require.NoError(t, os.WriteFile(env.fasta, []byte(testFASTA), 0o644))
	require.NoError(t, os.WriteFile(env.results, []byte(testResults), 0o644))
	return env
}

// run executes the CLI against the env's config and index.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", e.config, "--index", e.index}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) build(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "index", "build", "--fasta", e.fasta, "--results", e.results)
	require.NoError(t, err)
	require.Contains(t, out, "Indexed 2 proteins, 3 alignments (0 skipped)")
}

func TestIndexBuild_SkipsUnchanged(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "index", "build", "--fasta", env.fasta, "--results", env.results)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = env.run(t, "index", "build", "--fasta", env.fasta, "--results", env.results, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 proteins")
}

func TestIndexBuild_RequiresInputs(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "index", "build", "--fasta", env.fasta)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "search", "hemoglobin")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "P69905"))
	assert.Contains(t, lines[1], "50.00%")
	assert.True(t, strings.HasPrefix(lines[2], "P68871"))

	out, err = env.run(t, "search", "P68871", "--format", "json")
	require.NoError(t, err)
	var hits []index.Hit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Hemoglobin subunit beta", hits[0].Description)

	out, err = env.run(t, "search", "--limit", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 2)
}

func TestShow_DefaultProtein(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "P69905\tlength 30\tcovered 15 (50.00%, precomputed)\tpeptides 2\tlayers 2")
	assert.Contains(t, out, "1 MVLSPADKTNVKAAWGKVGAHAGEYGAEAL\n  =====\n     ============\n")
}

func TestShow_FilterRecomputesCoverage(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "show", "P69905", "--min-score", "20", "--segments")
	require.NoError(t, err)
	assert.Contains(t, out, "covered 5 (16.67%, computed)\tpeptides 1\tlayers 1")
	assert.Contains(t, out, "Covered: 1-5")
}

func TestShow_FilterFromConfig(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	_, err := env.run(t, "config", "set", "filter.min_score", "20")
	require.NoError(t, err)

	out, err := env.run(t, "show", "P69905")
	require.NoError(t, err)
	assert.Contains(t, out, "peptides 1")
}

func TestShow_Wrapping(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "show", "P69905", "--residues-per-line", "10")
	require.NoError(t, err)
	assert.Contains(t, out, " 1 MVLSPADKTN\n")
	assert.Contains(t, out, "11 VKAAWGKVGA\n")
	assert.Contains(t, out, "21 HAGEYGAEAL\n")
}

func TestShow_Expand(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "show", "P69905", "--expand", "scan_1")
	require.NoError(t, err)
	assert.Contains(t, out, "scan_1 on P69905")
	assert.Regexp(t, `1\s+K\s+unmatched_raw\s+0\.1`, out)
	assert.Regexp(t, `2\s+M\s+matched\s+0\.9`, out)

	// Expanding another peptide replaces the open one.
	out, err = env.run(t, "show", "P69905", "--expand", "scan_1", "--expand", "scan_2")
	require.NoError(t, err)
	assert.NotContains(t, out, "scan_1 on")
	assert.Contains(t, out, "scan_2 on P69905")

	// Expanding the open peptide again closes it.
	out, err = env.run(t, "show", "P69905", "--expand", "scan_1", "--expand", "scan_1")
	require.NoError(t, err)
	assert.NotContains(t, out, " on P69905")

	// Any peptide's close control collapses the open view.
	out, err = env.run(t, "show", "P69905", "--expand", "scan_1", "--close", "scan_2")
	require.NoError(t, err)
	assert.NotContains(t, out, " on P69905")
}

func TestShow_ExpandFilteredPeptide(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	_, err := env.run(t, "show", "P69905", "--min-score", "20", "--expand", "scan_2")
	assert.ErrorContains(t, err, `peptide "scan_2" is filtered out: global_score 12 < 20`)

	_, err = env.run(t, "show", "P69905", "--min-score", "20", "--min-including-pos", "13", "--expand", "scan_2")
	assert.ErrorContains(t, err, "global_score 12 < 20, max_aa_including_pos 12 < 13")

	_, err = env.run(t, "show", "P69905", "--expand", "scan_3")
	assert.ErrorContains(t, err, `peptide "scan_3" is not aligned to this protein`)

	_, err = env.run(t, "show", "P69905", "--close", "nope")
	assert.ErrorContains(t, err, `peptide "nope" is not aligned to this protein`)
}

func TestShow_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "show", "P68871", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Accession string   `json:"accession"`
		Peptides  []string `json:"peptides"`
		Coverage  struct {
			Covered       int  `json:"covered_count"`
			Precalculated bool `json:"is_precalculated"`
		} `json:"coverage"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "P68871", doc.Accession)
	assert.Equal(t, []string{"scan_3"}, doc.Peptides)
	assert.Equal(t, 3, doc.Coverage.Covered)
	assert.True(t, doc.Coverage.Precalculated)
}

func TestShow_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	_, err := env.run(t, "show", "NOPE")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestShow_EmptyIndex(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "show")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestAlign(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "align", "P69905", "scan_1", "-f", "json")
	require.NoError(t, err)

	var doc struct {
		DenovoID string         `json:"denovo_id"`
		Counts   map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "scan_1", doc.DenovoID)
	assert.Equal(t, 1, doc.Counts["unmatched_raw"])
	assert.Equal(t, 5, doc.Counts["matched"])

	_, err = env.run(t, "align", "P69905", "scan_3")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	env.build(t)

	out, err := env.run(t, "report", "-j", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#accession"))
	assert.Equal(t, "P68871\tHemoglobin subunit beta\t30\t1\t3\t10.00\t1\t-", lines[1])
	assert.Equal(t, "P69905\tHemoglobin subunit alpha\t30\t2\t15\t50.00\t2\t-", lines[2])

	out, err = env.run(t, "report", "P69905", "NOPE")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "NOPE\t-\t-"))
	assert.Contains(t, lines[2], "protein not found")
}

func TestConfigSetGet(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "set", "layout.residues_per_line", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Set layout.residues_per_line = 60 in "+env.config)

	out, err = env.run(t, "config", "get", "layout.residues_per_line")
	require.NoError(t, err)
	assert.Equal(t, "60\n", out)

	out, err = env.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "residues_per_line: 60")

	_, err = env.run(t, "config", "get", "no.such.key")
	assert.Error(t, err)
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "min-score", flagName("filter.min_score"))
	assert.Equal(t, "residues-per-line", flagName("layout.residues_per_line"))
	assert.Equal(t, "format", flagName("output.format"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.duckdb"), expandHome("~/x.duckdb"))
	assert.Equal(t, "/tmp/x.duckdb", expandHome("/tmp/x.duckdb"))
}
