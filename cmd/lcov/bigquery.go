package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/cobra"

	"github.com/karpierz/lcov/pkg/covdb"
)

// BigQuery command flags
var (
	bqProject string
	bqDataset string
	bqDB      string
	bqLabels  []string
)

// BigQuery row types

type RunSummaryRow struct {
	IngestionTime time.Time `bigquery:"ingestion_time"`
	RunID         int64     `bigquery:"run_id"`
	Label         string    `bigquery:"label"`
	RecordedAt    time.Time `bigquery:"recorded_at"`
	FileCount     int       `bigquery:"file_count"`
	LinesHit      int       `bigquery:"lines_hit"`
	LinesTotal    int       `bigquery:"lines_total"`
	FuncsHit      int       `bigquery:"funcs_hit"`
	FuncsTotal    int       `bigquery:"funcs_total"`
	BranchesHit   int       `bigquery:"branches_hit"`
	BranchesTotal int       `bigquery:"branches_total"`
}

type FileSummaryRow struct {
	IngestionTime time.Time `bigquery:"ingestion_time"`
	RunID         int64     `bigquery:"run_id"`
	Label         string    `bigquery:"label"`
	FilePath      string    `bigquery:"file_path"`
	LinesHit      int       `bigquery:"lines_hit"`
	LinesTotal    int       `bigquery:"lines_total"`
	FuncsHit      int       `bigquery:"funcs_hit"`
	FuncsTotal    int       `bigquery:"funcs_total"`
	BranchesHit   int       `bigquery:"branches_hit"`
	BranchesTotal int       `bigquery:"branches_total"`
}

var bigqueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "BigQuery operations",
	Long:  `Export recorded coverage history to Google BigQuery for cross-project analysis.`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest recorded coverage runs into BigQuery",
	Long: `Ingest runs from a coverage history database into BigQuery.

Creates two tables in the specified dataset:
  - coverage_runs:  One row per recorded run with overall counts
  - coverage_files: Per-file counts for each run

The dataset and tables are created if they don't exist.`,
	Example: `  # Ingest all recorded runs
  lcov bigquery --project my-project --dataset coverage \
    ingest --db coverage-history.db

  # Ingest only nightly runs
  lcov bigquery --project my-project --dataset coverage \
    ingest --db coverage-history.db --label 'nightly*'`,
	RunE: runBQIngest,
}

func init() {
	bigqueryCmd.PersistentFlags().StringVar(&bqProject, "project", "", "GCP project ID (required)")
	bigqueryCmd.PersistentFlags().StringVar(&bqDataset, "dataset", "", "BigQuery dataset name (required)")
	bigqueryCmd.MarkPersistentFlagRequired("project")
	bigqueryCmd.MarkPersistentFlagRequired("dataset")

	ingestCmd.Flags().StringVar(&bqDB, "db", "coverage-history.db", "Path to the history database")
	ingestCmd.Flags().StringArrayVar(&bqLabels, "label", []string{"*"}, "Run label glob patterns (repeatable, OR logic)")

	bigqueryCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(bigqueryCmd)
}

func runBQIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ingestionTime := time.Now().UTC()

	logger.Info("Ingesting coverage history from %s", bqDB)
	logger.Info("BigQuery target: %s.%s", bqProject, bqDataset)

	store, err := covdb.Open(bqDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}

	var filtered []covdb.Run
	for _, r := range runs {
		if matchesAnyGlob(r.Label, bqLabels) {
			filtered = append(filtered, r)
		}
	}
	logger.Info("Loaded %d run(s), %d match label filter %v", len(runs), len(filtered), bqLabels)
	if len(filtered) == 0 {
		logger.Info("Nothing to ingest")
		return nil
	}

	bqClient, err := bigquery.NewClient(ctx, bqProject)
	if err != nil {
		return fmt.Errorf("create BigQuery client: %w", err)
	}
	defer bqClient.Close()

	if err := ensureBQDatasetAndTables(ctx, bqClient); err != nil {
		return fmt.Errorf("setup BigQuery: %w", err)
	}

	dataset := bqClient.Dataset(bqDataset)
	runsInserter := dataset.Table("coverage_runs").Inserter()
	filesInserter := dataset.Table("coverage_files").Inserter()

	var totalRunRows, totalFileRows int

	for i, r := range filtered {
		logger.Progress("[%d/%d] run %d (%s)", i+1, len(filtered), r.ID, r.Label)

		runRow := RunSummaryRow{
			IngestionTime: ingestionTime,
			RunID:         r.ID,
			Label:         r.Label,
			RecordedAt:    r.RecordedAt,
			FileCount:     r.FileCount,
			LinesHit:      r.Lines.Hit,
			LinesTotal:    r.Lines.Total,
			FuncsHit:      r.Funcs.Hit,
			FuncsTotal:    r.Funcs.Total,
			BranchesHit:   r.Branches.Hit,
			BranchesTotal: r.Branches.Total,
		}
		if err := runsInserter.Put(ctx, &runRow); err != nil {
			logger.Warning("failed to insert run %d: %v", r.ID, err)
			continue
		}
		totalRunRows++

		files, err := store.RunFiles(r.ID)
		if err != nil {
			logger.Warning("failed to load files for run %d: %v", r.ID, err)
			continue
		}

		fileRows := make([]*FileSummaryRow, 0, len(files))
		for _, f := range files {
			fileRows = append(fileRows, &FileSummaryRow{
				IngestionTime: ingestionTime,
				RunID:         r.ID,
				Label:         r.Label,
				FilePath:      f.Path,
				LinesHit:      f.Lines.Hit,
				LinesTotal:    f.Lines.Total,
				FuncsHit:      f.Funcs.Hit,
				FuncsTotal:    f.Funcs.Total,
				BranchesHit:   f.Branches.Hit,
				BranchesTotal: f.Branches.Total,
			})
		}

		const batchSize = 500
		for start := 0; start < len(fileRows); start += batchSize {
			end := start + batchSize
			if end > len(fileRows) {
				end = len(fileRows)
			}
			if err := filesInserter.Put(ctx, fileRows[start:end]); err != nil {
				logger.Warning("batch insert failed for run %d at offset %d: %v", r.ID, start, err)
			}
		}
		totalFileRows += len(fileRows)
	}

	logger.Success("Ingestion complete: %d run row(s), %d file row(s)", totalRunRows, totalFileRows)
	reportWarningTally()
	return nil
}

// matchesAnyGlob returns true if value matches any of the glob patterns (OR logic).
func matchesAnyGlob(value string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, value); matched {
			return true
		}
	}
	return false
}

// ensureBQDatasetAndTables creates the dataset and tables if they don't exist.
func ensureBQDatasetAndTables(ctx context.Context, client *bigquery.Client) error {
	dataset := client.Dataset(bqDataset)

	if err := dataset.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create dataset: %w", err)
		}
	} else {
		logger.Info("Created dataset %s.%s", bqProject, bqDataset)
	}

	countColumns := bigquery.Schema{
		{Name: "lines_hit", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "lines_total", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "funcs_hit", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "funcs_total", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "branches_hit", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "branches_total", Type: bigquery.IntegerFieldType, Required: true},
	}

	runsSchema := append(bigquery.Schema{
		{Name: "ingestion_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "run_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "label", Type: bigquery.StringFieldType, Required: true},
		{Name: "recorded_at", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "file_count", Type: bigquery.IntegerFieldType, Required: true},
	}, countColumns...)

	runsTable := dataset.Table("coverage_runs")
	if err := runsTable.Create(ctx, &bigquery.TableMetadata{
		Schema: runsSchema,
		TimePartitioning: &bigquery.TimePartitioning{
			Field: "ingestion_time",
		},
		Clustering: &bigquery.Clustering{
			Fields: []string{"label"},
		},
	}); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create coverage_runs table: %w", err)
		}
	} else {
		logger.Info("Created table coverage_runs")
	}

	filesSchema := append(bigquery.Schema{
		{Name: "ingestion_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "run_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "label", Type: bigquery.StringFieldType, Required: true},
		{Name: "file_path", Type: bigquery.StringFieldType, Required: true},
	}, countColumns...)

	filesTable := dataset.Table("coverage_files")
	if err := filesTable.Create(ctx, &bigquery.TableMetadata{
		Schema: filesSchema,
		TimePartitioning: &bigquery.TimePartitioning{
			Field: "ingestion_time",
		},
		Clustering: &bigquery.Clustering{
			Fields: []string{"label", "file_path"},
		},
	}); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create coverage_files table: %w", err)
		}
	} else {
		logger.Info("Created table coverage_files")
	}

	return nil
}

func isAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "Already Exists") ||
		strings.Contains(err.Error(), "alreadyExists") ||
		strings.Contains(err.Error(), "409")
}
