package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/report"
	"github.com/karpierz/lcov/pkg/summary"
	"github.com/karpierz/lcov/pkg/tracefile"
)

var (
	reportOutputDir   string
	reportSourceRoot  string
	reportTitle       string
	reportHigh        float64
	reportMedium      float64
	reportNoFunctions bool
	reportNoBranches  bool
	reportStrict      bool

	reportCmd = &cobra.Command{
		Use:   "report [tracefiles...]",
		Short: "Generate an HTML coverage report",
		Long: `Generate a static HTML coverage report from one or more tracefiles.

Multiple inputs are merged before reporting. The report has a project
index, one index per source directory, and one annotated page per
source file. Source text is read relative to --source-root; files that
cannot be found get a placeholder page and a warning, their coverage
counts still appear in the indexes.`,
		Example: `  # Report a single tracefile
  lcov report -o htmlcov --source-root . coverage.info

  # Merge runs and report with custom thresholds
  lcov report -o htmlcov --source-root . --high 95 --medium 80 run1.info run2.info`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReport,
	}
)

func init() {
	reportCmd.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "htmlcov", "Output directory for HTML pages")
	reportCmd.Flags().StringVar(&reportSourceRoot, "source-root", ".", "Directory source file paths are resolved against")
	reportCmd.Flags().StringVar(&reportTitle, "title", "Coverage Report", "Report title")
	reportCmd.Flags().Float64Var(&reportHigh, "high", 90, "Minimum rate (percent) classified as high coverage")
	reportCmd.Flags().Float64Var(&reportMedium, "medium", 75, "Minimum rate (percent) classified as medium coverage")
	reportCmd.Flags().BoolVar(&reportNoFunctions, "no-functions", false, "Omit function coverage from the report")
	reportCmd.Flags().BoolVar(&reportNoBranches, "no-branches", false, "Omit branch coverage from the report")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "Drop files with checksum conflicts when merging inputs")
	rootCmd.AddCommand(reportCmd)
}

func reportConfig() (summary.Config, error) {
	cfg := summary.DefaultConfig()
	cfg.HighThreshold = reportHigh
	cfg.MediumThreshold = reportMedium
	cfg.ShowFunctions = !reportNoFunctions
	cfg.ShowBranches = !reportNoBranches
	cfg.StrictChecksum = reportStrict
	if cfg.MediumThreshold > cfg.HighThreshold {
		return cfg, fmt.Errorf("--medium (%g) must not exceed --high (%g)", cfg.MediumThreshold, cfg.HighThreshold)
	}
	return cfg, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := reportConfig()
	if err != nil {
		return err
	}

	models, err := parseInputs(args)
	if err != nil {
		return err
	}

	var result tracefile.MergeResult
	merged := tracefile.MergeAll(models, cfg.StrictChecksum, &result)
	for _, mm := range result.Mismatches {
		logger.Warning("%v", mm)
	}
	for _, w := range result.Warnings {
		logger.Warning("%s", w)
	}

	tree := summary.Build(merged, reportSourceRoot, cfg)

	logger.Progress("Writing HTML report to %s", reportOutputDir)
	warnings, err := report.Generate(merged, tree, report.Options{
		Config:      cfg,
		SourceRoot:  reportSourceRoot,
		OutputDir:   reportOutputDir,
		Title:       reportTitle,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	for _, w := range warnings {
		logger.Warning("%s", w.String())
	}

	logger.Info("Overall line coverage: %s", formatCounts(tree.Lines))
	if cfg.ShowFunctions {
		logger.Info("Overall function coverage: %s", formatCounts(tree.Funcs))
	}
	if cfg.ShowBranches {
		logger.Info("Overall branch coverage: %s", formatCounts(tree.Branches))
	}

	logger.Success("Report written to %s/index.html", reportOutputDir)
	reportWarningTally()
	return nil
}

func formatCounts(c summary.Counts) string {
	return fmt.Sprintf("%.1f%% (%d of %d)", c.Rate(), c.Hit, c.Total)
}
