package iocache

import (
	"errors"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/prpulse/prpulse/schema"
)

// runParquetRow is the columnar layout for one exported run.
type runParquetRow struct {
	RunID       int64  `parquet:"run_id"`
	Owner       string `parquet:"owner"`
	Scope       string `parquet:"scope"`
	PeriodStart int64  `parquet:"period_start"`
	PeriodEnd   int64  `parquet:"period_end"`
	StartedAt   int64  `parquet:"started_at"`
	FinishedAt  int64  `parquet:"finished_at"`
	TotalPRs    int32  `parquet:"total_prs"`
	AssistedPRs int32  `parquet:"assisted_prs"`
}

// ExecuteRunsExport exports the recorded run history to a Parquet file.
func ExecuteRunsExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	rows := convertRunRecords(runs)
	if err := writeRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write run history: %w", err)
	}

	fmt.Printf("Exported %d runs to: %s\n", len(rows), outputFile)
	return nil
}

// convertRunRecords maps run records to their Parquet representation.
func convertRunRecords(runs []schema.RunRecord) []runParquetRow {
	rows := make([]runParquetRow, 0, len(runs))
	for _, run := range runs {
		row := runParquetRow{
			RunID:       run.ID,
			Owner:       run.Owner,
			Scope:       run.Scope,
			PeriodStart: run.PeriodStart.Unix(),
			PeriodEnd:   run.PeriodEnd.Unix(),
			StartedAt:   run.StartedAt.Unix(),
			TotalPRs:    int32(run.TotalPRs),
			AssistedPRs: int32(run.AssistedPRs),
		}
		if !run.FinishedAt.IsZero() {
			row.FinishedAt = run.FinishedAt.Unix()
		}
		rows = append(rows, row)
	}
	return rows
}

// writeRunsParquet writes the rows to a Parquet file on disk.
func writeRunsParquet(rows []runParquetRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := parquet.NewGenericWriter[runParquetRow](f)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		_ = f.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
