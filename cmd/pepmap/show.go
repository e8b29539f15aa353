package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brownovo/pepmap/internal/classify"
	"github.com/brownovo/pepmap/internal/coverage"
	"github.com/brownovo/pepmap/internal/filter"
	"github.com/brownovo/pepmap/internal/index"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/output"
	"github.com/brownovo/pepmap/internal/protein"
	"github.com/brownovo/pepmap/internal/selection"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		expand   []string
		closeIDs []string
		segments bool
	)

	cmd := &cobra.Command{
		Use:   "show [accession]",
		Short: "Show peptide coverage of a protein",
		Long: `Draw the protein sequence wrapped into lines with every passing peptide
as a bar beneath the residues it covers. Without an accession the protein
with the highest coverage is shown.

Each --expand toggles the detail view of a peptide, like clicking its bar:
expanding a different peptide replaces the open one, expanding the open one
closes it. Each --close presses the close control of a peptide's detail
view, which collapses whatever is open. Closes apply after all expands.
The peptide left open is printed residue by residue.`,
		Example: `  pepmap show P69905
  pepmap show P69905 --min-score 20 --residues-per-line 60
  pepmap show P69905 --expand scan_1234`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openIndex()
			if err != nil {
				return err
			}
			defer store.Close()

			var accession string
			if len(args) == 1 {
				accession = args[0]
			} else if accession, err = store.Default(); err != nil {
				return err
			}

			th := thresholds()
			d, err := store.Detail(accession, th)
			if err != nil {
				return err
			}

			resolver := coverage.NewResolver()
			resolver.SetLogger(a.logger)
			cov, err := resolver.Resolve(d.Protein.Len(), d.Peptides, d.Coverage)
			if err != nil {
				return err
			}

			l, err := layout.Build(d.Protein, d.Peptides, layoutOptions())
			if err != nil {
				return err
			}

			r, err := output.NewRenderer(viper.GetString("output.format"), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := r.RenderLayout(l, cov); err != nil {
				return err
			}

			if segments {
				segs, err := coverage.Segments(d.Protein.Len(), d.Peptides)
				if err != nil {
					return err
				}
				if err := r.Flush(); err != nil {
					return err
				}
				if viper.GetString("output.format") == output.FormatJSON {
					err = json.NewEncoder(cmd.OutOrStdout()).Encode(map[string][]coverage.Segment{"segments": segs})
				} else {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Covered: %s\n\n", formatSegments(segs))
				}
				if err != nil {
					return err
				}
			}

			state, err := applyClicks(selection.Collapsed(), d.Peptides, expand, closeIDs)
			var missing *missingPeptideError
			if errors.As(err, &missing) {
				return explainMissing(store, accession, missing.id, th)
			}
			if err != nil {
				return err
			}
			if p, ok := state.Peptide(); ok {
				if err := r.RenderAlignment(classify.Classify(&d.Peptides[p])); err != nil {
					return err
				}
			}
			return r.Flush()
		},
	}

	addFilterFlags(cmd)
	addLayoutFlags(cmd)
	cmd.Flags().StringArrayVar(&expand, "expand", nil, "Toggle the detail view of a peptide by de novo id (repeatable)")
	cmd.Flags().StringArrayVar(&closeIDs, "close", nil, "Press the close control of a peptide's detail view by de novo id (repeatable)")
	cmd.Flags().BoolVar(&segments, "segments", false, "List covered residue ranges")

	return cmd
}

// missingPeptideError names a peptide that has no bar on the current view.
type missingPeptideError struct{ id string }

func (e *missingPeptideError) Error() string {
	return fmt.Sprintf("peptide %q is not among the passing peptides", e.id)
}

// applyClicks clicks each expanded peptide in turn, then presses each close
// control.
func applyClicks(state selection.State, peptides []protein.Alignment, expand, closeIDs []string) (selection.State, error) {
	find := func(id string) (int, error) {
		for i := range peptides {
			if peptides[i].DenovoID == id {
				return i, nil
			}
		}
		return -1, &missingPeptideError{id: id}
	}

	for _, id := range expand {
		idx, err := find(id)
		if err != nil {
			return state, err
		}
		state = state.Click(idx)
	}
	for _, id := range closeIDs {
		idx, err := find(id)
		if err != nil {
			return state, err
		}
		state = state.Close(idx)
	}
	return state, nil
}

// explainMissing reports why a peptide has no bar: either it is not aligned
// to the protein at all or it falls short of some thresholds.
func explainMissing(store *index.Store, accession, id string, th protein.Thresholds) error {
	aln, err := store.Alignment(accession, id)
	if errors.Is(err, index.ErrNotFound) {
		return fmt.Errorf("%s: peptide %q is not aligned to this protein", accession, id)
	}
	if err != nil {
		return err
	}
	if reason := filter.Explain(aln, th); reason != "" {
		return fmt.Errorf("%s: peptide %q is filtered out: %s", accession, id, reason)
	}
	return fmt.Errorf("%s: %w", accession, &missingPeptideError{id: id})
}

func formatSegments(segs []coverage.Segment) string {
	if len(segs) == 0 {
		return "none"
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		if s.Start == s.End {
			parts[i] = fmt.Sprintf("%d", s.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", s.Start, s.End)
		}
	}
	return strings.Join(parts, ", ")
}

func newAlignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <accession> <denovo_id>",
		Short: "Show residue classes of one peptide alignment",
		Long: `Classify every residue of a de novo peptide as unmatched, filtered but
unmatched, matched or mismatched against its alignment to the protein,
with the per-residue confidence score when available.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openIndex()
			if err != nil {
				return err
			}
			defer store.Close()

			aln, err := store.Alignment(args[0], args[1])
			if err != nil {
				return err
			}

			r, err := output.NewRenderer(viper.GetString("output.format"), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := r.RenderAlignment(classify.Classify(aln)); err != nil {
				return err
			}
			return r.Flush()
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text, json (default text)")

	return cmd
}
