package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/tracefile"
)

var (
	mergeOutput string
	mergeStrict bool

	mergeCmd = &cobra.Command{
		Use:   "merge [tracefiles...]",
		Short: "Merge coverage tracefiles into one",
		Long: `Merge one or more LCOV tracefiles into a single tracefile.

Counts for the same line, function, or branch add across inputs.
Checksum conflicts on a line fail the merge of that file only: in
strict mode the file is dropped from the output, otherwise the first
input's counts are kept. All other files merge normally either way.`,
		Example: `  # Merge two test runs
  lcov merge -o total.info run1.info run2.info

  # Strict checksum handling
  lcov merge --strict -o total.info run1.info run2.info`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMerge,
	}
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output tracefile path (required)")
	mergeCmd.Flags().BoolVar(&mergeStrict, "strict", false, "Drop files with checksum conflicts instead of keeping the first input's counts")
	mergeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(mergeCmd)
}

// parseInputs reads each tracefile, logging parse warnings as it goes.
func parseInputs(paths []string) ([]*tracefile.Model, error) {
	models := make([]*tracefile.Model, 0, len(paths))
	for _, path := range paths {
		logger.Progress("Reading %s", path)
		m, warnings, err := tracefile.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		for _, w := range warnings {
			logger.Warning("%s", w.String())
		}
		logger.Debug("%s: %d source file(s)", path, len(m.Files))
		models = append(models, m)
	}
	return models, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	models, err := parseInputs(args)
	if err != nil {
		return err
	}

	var result tracefile.MergeResult
	merged := tracefile.MergeAll(models, mergeStrict, &result)

	for _, mm := range result.Mismatches {
		if mergeStrict {
			logger.Warning("%s dropped: %v", mm.Path, mm)
		} else {
			logger.Warning("%s: %v (kept first input's counts)", mm.Path, mm)
		}
	}
	for _, w := range result.Warnings {
		logger.Warning("%s", w)
	}

	if err := tracefile.WriteFile(mergeOutput, merged); err != nil {
		return fmt.Errorf("write %s: %w", mergeOutput, err)
	}

	logger.Success("Merged %d tracefile(s) into %s (%d source files)",
		len(args), mergeOutput, len(merged.Files))
	reportWarningTally()
	return nil
}
