package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/covprofile"
	"github.com/karpierz/lcov/pkg/tracefile"
)

var (
	convertOutput string

	convertCmd = &cobra.Command{
		Use:   "convert [profiles...]",
		Short: "Convert Go cover profiles to a tracefile",
		Long: `Convert one or more Go cover profiles (the output of 'go test
-coverprofile' or 'go tool covdata textfmt') into an LCOV tracefile.

Cover profiles track statement blocks, so the conversion emits line
records only. Multiple profiles merge before writing.`,
		Example: `  # Convert a single profile
  lcov convert -o coverage.info coverage.out

  # Combine profiles from several packages
  lcov convert -o coverage.info pkg1.out pkg2.out`,
		Args: cobra.MinimumNArgs(1),
		RunE: runConvert,
	}
)

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output tracefile path (required)")
	convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	models := make([]*tracefile.Model, 0, len(args))
	for _, path := range args {
		logger.Progress("Converting %s", path)
		m, err := covprofile.Convert(path)
		if err != nil {
			return fmt.Errorf("convert %s: %w", path, err)
		}
		models = append(models, m)
	}

	var result tracefile.MergeResult
	merged := tracefile.MergeAll(models, false, &result)
	for _, w := range result.Warnings {
		logger.Warning("%s", w)
	}

	if err := tracefile.WriteFile(convertOutput, merged); err != nil {
		return fmt.Errorf("write %s: %w", convertOutput, err)
	}

	logger.Success("Converted %d profile(s) into %s (%d source files)",
		len(args), convertOutput, len(merged.Files))
	reportWarningTally()
	return nil
}
