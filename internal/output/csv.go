package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// writeReportCSV writes one row per week, chronologically ordered.
func writeReportCSV(w io.Writer, report *schema.AnalysisReport) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	header := []string{
		"week",
		"total_prs",
		"agent_prs",
		"review_prs",
		"copilot_assisted_prs",
		"copilot_percentage",
		"label",
		"unique_collaborators",
		"collaborators",
	}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, key := range schema.SortedWeekKeys(report.Weekly) {
		week := report.Weekly[key]
		rec := []string{
			key,
			strconv.Itoa(week.TotalPRs),
			strconv.Itoa(week.AgentPRs),
			strconv.Itoa(week.ReviewPRs),
			strconv.Itoa(week.AssistedPRs),
			fmt.Sprintf("%.2f", week.AssistedPercentage),
			contract.GetPlainLabel(week.AssistedPercentage),
			strconv.Itoa(week.UniqueCollaborators),
			strings.Join(week.Collaborators, "|"),
		}
		if err := csvWriter.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
