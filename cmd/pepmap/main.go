// Package main provides the pepmap command-line tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "pepmap",
		Short: "Peptide-to-protein coverage and alignment viewer",
		Long: `pepmap indexes protein sequences together with MS-BLAST alignments of
de novo peptides, and shows how much of each protein the peptides cover.`,
		Version:      fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default ~/.pepmap.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")
	flags.String("index", "", "Protein index database (default ~/.pepmap/index.duckdb)")
	viper.BindPFlag("index.path", flags.Lookup("index"))

	setDefaults()

	cmd.AddCommand(newIndexCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newAlignCmd(a))
	cmd.AddCommand(newReportCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func setDefaults() {
	viper.SetDefault("index.path", defaultIndexPath())
	viper.SetDefault("layout.residues_per_line", 50)
	viper.SetDefault("layout.residue_cell_width", 12.0)
	viper.SetDefault("layout.digit_width", 8.0)
	viper.SetDefault("layout.gutter_padding", 10.0)
	viper.SetDefault("layout.bar_margin", 2.0)
	viper.SetDefault("layout.lane_height", 6.0)
	for _, key := range filterKeys {
		viper.SetDefault(key, 0)
	}
	viper.SetDefault("output.format", "text")
	viper.SetDefault("report.workers", 0)
}

func defaultIndexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pepmap", "index.duckdb")
	}
	return filepath.Join(home, ".pepmap", "index.duckdb")
}

// configPath returns the config file in use, or the default location.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".pepmap.yaml"), nil
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		viper.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".pepmap")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("pepmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) initLogger() error {
	var (
		l   *zap.Logger
		err error
	)
	if a.verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = l
	return nil
}
