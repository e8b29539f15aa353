package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brownovo/pepmap/internal/output"
)

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search proteins by accession or description",
		Long: `List proteins whose accession or description contains the query. Exact
accession matches come first, then accession prefixes, then other matches,
each ordered by coverage. Without a query every protein is listed.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}

			store, err := a.openIndex()
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.Search(query)
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			if limit > 0 && len(hits) > limit {
				hits = hits[:limit]
			}

			out := cmd.OutOrStdout()
			switch format := viper.GetString("output.format"); format {
			case output.FormatJSON:
				return json.NewEncoder(out).Encode(hits)
			case output.FormatText:
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "Accession\tCoverage\tDescription")
				for _, h := range hits {
					fmt.Fprintf(tw, "%s\t%.2f%%\t%s\n", h.Accession, h.CoveragePercent, h.Description)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum number of results (0 for all)")
	cmd.Flags().StringP("format", "f", "", "Output format: text, json (default text)")

	return cmd
}
