package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// writeReportTable generates and writes the human-readable weekly table.
func writeReportTable(w io.Writer, report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	fmt.Fprintf(w, "PR analysis for %s (%s)\n", report.AnalyzedOwner, report.AnalyzedRepository)
	fmt.Fprintf(w, "Window: %s to %s\n\n",
		report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Week", "Total", "Agent", "Review", "Assisted", "Usage %", "Label", "Collaborators"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	maxCollab := maxCollaboratorWidth(cfg)

	var data [][]string
	for _, key := range schema.SortedWeekKeys(report.Weekly) {
		week := report.Weekly[key]
		data = append(data, []string{
			key,
			strconv.Itoa(week.TotalPRs),
			strconv.Itoa(week.AgentPRs),
			strconv.Itoa(week.ReviewPRs),
			strconv.Itoa(week.AssistedPRs),
			fmt.Sprintf("%.2f", week.AssistedPercentage),
			label(week.AssistedPercentage),
			truncate(strings.Join(week.Collaborators, ", "), maxCollab),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	overall := schema.Percentage(report.TotalAssistedPRs, report.TotalPRs)
	fmt.Fprintf(w, "Total PRs: %d, assisted: %d (%.2f%%), dependency bots: %d\n",
		report.TotalPRs, report.TotalAssistedPRs, overall, report.TotalDependencyPRs)
	if report.WorkflowRuns > 0 {
		fmt.Fprintf(w, "Copilot workflow runs: %d (%d minutes)\n", report.WorkflowRuns, report.WorkflowMinutes)
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

// maxCollaboratorWidth calculates the width available for the
// collaborator column based on terminal width and the fixed columns.
func maxCollaboratorWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Week + count columns + label with borders and padding.
	const baseWidth = 70
	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
