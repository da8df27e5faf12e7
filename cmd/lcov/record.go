package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/covdb"
	"github.com/karpierz/lcov/pkg/summary"
	"github.com/karpierz/lcov/pkg/tracefile"
)

var (
	recordDB         string
	recordLabel      string
	recordSourceRoot string

	recordCmd = &cobra.Command{
		Use:   "record [tracefiles...]",
		Short: "Record a coverage snapshot in the history database",
		Long: `Record the summarized coverage of one or more tracefiles in an
SQLite history database, so coverage can be tracked across runs without
keeping the tracefiles around. The database is created on first use.`,
		Example: `  # Record a run under a label
  lcov record --db coverage-history.db --label nightly coverage.info

  # Record a merged snapshot of several runs
  lcov record --db coverage-history.db --label release-1.4 run1.info run2.info`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecord,
	}
)

func init() {
	recordCmd.Flags().StringVar(&recordDB, "db", "coverage-history.db", "Path to the history database")
	recordCmd.Flags().StringVar(&recordLabel, "label", "", "Label for this snapshot (required)")
	recordCmd.Flags().StringVar(&recordSourceRoot, "source-root", ".", "Directory source file paths are resolved against")
	recordCmd.MarkFlagRequired("label")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	models, err := parseInputs(args)
	if err != nil {
		return err
	}

	var result tracefile.MergeResult
	merged := tracefile.MergeAll(models, false, &result)
	for _, mm := range result.Mismatches {
		logger.Warning("%v", mm)
	}
	for _, w := range result.Warnings {
		logger.Warning("%s", w)
	}

	tree := summary.Build(merged, recordSourceRoot, summary.DefaultConfig())

	store, err := covdb.Open(recordDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.RecordRun(recordLabel, time.Now(), tree)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	logger.Success("Recorded run %d (%s): %s line coverage across %d file(s)",
		runID, recordLabel, formatCounts(tree.Lines), len(merged.Files))
	reportWarningTally()
	return nil
}
