package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brownovo/pepmap/internal/output"
	"github.com/brownovo/pepmap/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [accession...]",
		Short: "Tabulate coverage for many proteins",
		Long: `Compute coverage and lane usage for the given proteins, or for every
indexed protein, in parallel. Results are written in accession order as a
tab-delimited table; proteins that fail are listed with their error.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openIndex()
			if err != nil {
				return err
			}
			defer store.Close()

			accessions := args
			if len(accessions) == 0 {
				if accessions, err = store.Accessions(); err != nil {
					return err
				}
			}

			r := report.NewReporter(store, thresholds(), layoutOptions())
			r.SetLogger(a.logger)

			tw := output.NewTabWriter(cmd.OutOrStdout())
			if err := tw.WriteHeader(); err != nil {
				return err
			}
			err = r.Run(accessions, viper.GetInt("report.workers"), func(res report.WorkResult) error {
				return tw.Write(res.Row())
			})
			if err != nil {
				return err
			}
			return tw.Flush()
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Int("residues-per-line", 0, "Residues per display line (default 50)")
	cmd.Flags().IntP("workers", "j", 0, "Worker count (0 for one per CPU)")

	return cmd
}
