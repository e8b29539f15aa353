package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brownovo/pepmap/internal/index"
	"github.com/brownovo/pepmap/internal/layout"
	"github.com/brownovo/pepmap/internal/protein"
)

// Filter config keys, in the order of protein.Thresholds.
var filterKeys = []string{
	"filter.min_score",
	"filter.min_including_pos",
	"filter.min_excluding_pos",
	"filter.min_allowing_one_pos_or_one_minus",
	"filter.min_allowing_one_minus",
}

// flagName turns a config key into its flag name: filter.min_score -> min-score.
func flagName(key string) string {
	_, name, _ := strings.Cut(key, ".")
	return strings.ReplaceAll(name, "_", "-")
}

// addFilterFlags registers one flag per filter threshold.
func addFilterFlags(cmd *cobra.Command) {
	help := []string{
		"Minimum global alignment score",
		"Minimum consecutive amino acids including positives",
		"Minimum consecutive amino acids excluding positives",
		"Minimum consecutive amino acids allowing one positive or one mismatch",
		"Minimum consecutive amino acids allowing one mismatch",
	}
	for i, key := range filterKeys {
		cmd.Flags().Int(flagName(key), 0, help[i])
	}
}

// addLayoutFlags registers flags for layout and output settings.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Int("residues-per-line", 0, "Residues per display line (default 50)")
	cmd.Flags().StringP("format", "f", "", "Output format: text, json (default text)")
}

// bindFlags binds the command's flags to their config keys. Binding happens
// at run time so that commands sharing a key do not steal each other's flag.
func bindFlags(cmd *cobra.Command) error {
	keys := append([]string{}, filterKeys...)
	keys = append(keys, "layout.residues_per_line", "output.format", "report.workers")
	for _, key := range keys {
		f := cmd.Flags().Lookup(flagName(key))
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	}
	return nil
}

// thresholds reads the filter settings.
func thresholds() protein.Thresholds {
	return protein.Thresholds{
		MinScore:                    viper.GetInt(filterKeys[0]),
		MinIncludingPos:             viper.GetInt(filterKeys[1]),
		MinExcludingPos:             viper.GetInt(filterKeys[2]),
		MinAllowingOnePosOrOneMinus: viper.GetInt(filterKeys[3]),
		MinAllowingOneMinus:         viper.GetInt(filterKeys[4]),
	}
}

// layoutOptions reads the layout settings.
func layoutOptions() layout.Options {
	return layout.Options{
		ResiduesPerLine: viper.GetInt("layout.residues_per_line"),
		Geometry: layout.Geometry{
			ResidueCellWidth: viper.GetFloat64("layout.residue_cell_width"),
			DigitWidth:       viper.GetFloat64("layout.digit_width"),
			GutterPadding:    viper.GetFloat64("layout.gutter_padding"),
			BarMargin:        viper.GetFloat64("layout.bar_margin"),
			LaneHeight:       viper.GetFloat64("layout.lane_height"),
		},
	}
}

// openIndex opens the configured protein index.
func (a *app) openIndex() (*index.Store, error) {
	path := expandHome(viper.GetString("index.path"))
	s, err := index.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	s.SetLogger(a.logger)
	return s, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
