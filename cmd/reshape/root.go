package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set by goreleaser at build time.
var version = "dev"

var (
	projectRoot string
	verbose     bool
	logger      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reshape",
	Short: "Structural refactoring engine for TypeScript projects",
	Long: `reshape applies batches of structural refactoring operations (remove,
rename, move) to a TypeScript source tree while keeping every import, named
export, re-export, and namespace-qualified usage consistent.

Operations run strictly in order with fail-fast semantics: the first failing
operation stops the batch, and operations already applied stay applied.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("reshape version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", ".", "path to the project to refactor")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
}
