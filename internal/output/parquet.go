package output

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/prpulse/prpulse/schema"
)

// weekParquetRow is the flattened weekly record written to parquet.
type weekParquetRow struct {
	Week                string  `parquet:"week,snappy"`
	TotalPRs            int32   `parquet:"total_prs,snappy"`
	AgentPRs            int32   `parquet:"agent_prs,snappy"`
	ReviewPRs           int32   `parquet:"review_prs,snappy"`
	AssistedPRs         int32   `parquet:"copilot_assisted_prs,snappy"`
	AssistedPercentage  float64 `parquet:"copilot_percentage,snappy"`
	UniqueCollaborators int32   `parquet:"unique_collaborators,snappy"`
	WorkflowRuns        int32   `parquet:"workflow_runs,snappy"`
	WorkflowMinutes     int32   `parquet:"workflow_minutes,snappy"`
}

// writeReportParquet writes one parquet row per week.
func writeReportParquet(report *schema.AnalysisReport, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("parquet output requires an output file")
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the weekParquetRow struct tags.
	writer := parquet.NewGenericWriter[weekParquetRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(convertWeeklyRows(report)); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// convertWeeklyRows flattens the weekly map in chronological order.
func convertWeeklyRows(report *schema.AnalysisReport) []weekParquetRow {
	keys := schema.SortedWeekKeys(report.Weekly)
	rows := make([]weekParquetRow, 0, len(keys))
	for _, key := range keys {
		week := report.Weekly[key]
		row := weekParquetRow{
			Week:                key,
			TotalPRs:            int32(week.TotalPRs),
			AgentPRs:            int32(week.AgentPRs),
			ReviewPRs:           int32(week.ReviewPRs),
			AssistedPRs:         int32(week.AssistedPRs),
			AssistedPercentage:  week.AssistedPercentage,
			UniqueCollaborators: int32(week.UniqueCollaborators),
		}
		if week.Workflow != nil {
			row.WorkflowRuns = int32(week.Workflow.TotalRuns)
			row.WorkflowMinutes = int32(week.Workflow.TotalMinutes)
		}
		rows = append(rows, row)
	}
	return rows
}
