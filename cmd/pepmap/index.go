package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the protein index",
	}
	cmd.AddCommand(newIndexBuildCmd(a))
	return cmd
}

func newIndexBuildCmd(a *app) *cobra.Command {
	var (
		fastaPath   string
		resultsPath string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the protein index from a FASTA file and MS-BLAST results",
		Long: `Load protein sequences and MS-BLAST peptide alignments into the index,
replacing its contents. Coverage at zero thresholds is computed for every
protein. The build is skipped when neither input changed since the last one.`,
		Example: `  pepmap index build --fasta uniprot_human.fasta.gz --results msblast.tsv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openIndex()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.IngestFiles(fastaPath, resultsPath, force)
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			out := cmd.OutOrStdout()
			if stats.Unchanged {
				fmt.Fprintln(out, "Index is up to date (use --force to rebuild)")
				return nil
			}
			a.logger.Debug("index built", zap.String("path", store.Path()))
			fmt.Fprintf(out, "Indexed %d proteins, %d alignments (%d skipped)\n",
				stats.Proteins, stats.Alignments, stats.SkippedAlignments)
			return nil
		},
	}

	cmd.Flags().StringVar(&fastaPath, "fasta", "", "Protein FASTA file (optionally gzipped)")
	cmd.Flags().StringVar(&resultsPath, "results", "", "MS-BLAST results TSV (optionally gzipped)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even if inputs are unchanged")
	cmd.MarkFlagRequired("fasta")
	cmd.MarkFlagRequired("results")

	return cmd
}
