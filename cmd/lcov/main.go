package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/log"
)

var (
	// Global flags
	logLevel string
	logDir   string

	logger *log.Logger

	// Root command
	rootCmd = &cobra.Command{
		Use:   "lcov",
		Short: "Parse, merge, and report LCOV coverage tracefiles",
		Long: `lcov is a toolkit for LCOV coverage tracefiles. It parses .info
files into a canonical model, merges coverage from multiple test runs,
summarizes line/function/branch rates against configurable thresholds,
and renders static HTML reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger, err = log.New(level, logDir)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (error, info, debug, trace)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for log files (disabled if empty)")
}

// reportWarningTally prints the end-of-run warning count so that runs with
// recoverable issues are visible without failing the command.
func reportWarningTally() {
	if n := logger.WarningCount(); n > 0 {
		fmt.Printf("\n%d warning(s) emitted during this run\n", n)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
