// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the spire-tally CLI.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/spire-tally/internal/config"
	"github.com/pdiddy/spire-tally/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is replaced in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()

	// runID tags every deck ID issued by this invocation.
	runID string

	// appConfig is resolved from defaults, the config file and the environment.
	appConfig types.Config
)

// rootCmd tallies one deck file and writes its report.
var rootCmd = &cobra.Command{
	Use:   "spire-tally [deck-file]",
	Short: "Validate a Slay the Spire deck and emit a PDF cost report",
	Long: `spire-tally reads a deck file of "name:cost" lines, tallies the energy cost
of every card and writes a PDF report next to the input file.

The report is SpireDeck_<id>.pdf with the total cost, the rejected lines and a
per-card histogram. A deck with more than 1000 lines or more than 10 invalid
lines yields SpireDeck_<id>(VOID).pdf instead. Each report gets a fresh 9-digit
deck ID that is recorded so later runs never reuse it.

When no deck file is given on the command line, the path is read from stdin.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		runID = uuid.NewString()
		logger = l.With(zap.String("run_id", runID))

		cfgFile, _ := cmd.Flags().GetString("config")
		return loadConfig(cmd, cfgFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runTally,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./spire-tally.yaml or ~/.config/spire-tally/spire-tally.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// loadConfig resolves appConfig on a fresh viper instance so repeated
// executions do not see each other's settings.
func loadConfig(cmd *cobra.Command, cfgFile string) error {
	v := viper.New()
	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}
	if used != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger.Debug("config loaded",
		zap.String("file", used),
		zap.String("id_store", string(cfg.IDStore.Backend)),
		zap.Bool("whitelist", cfg.Parse.Whitelist))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
