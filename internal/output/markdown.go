package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prpulse/prpulse/schema"
)

// topRepoChartLimit caps the repository breakdown chart.
const topRepoChartLimit = 10

// writeReportMarkdown writes a summary plus mermaid xychart blocks,
// suitable for a GitHub step summary or README section.
func writeReportMarkdown(w io.Writer, report *schema.AnalysisReport) error {
	writeSummaryStats(w, report)

	fmt.Fprintln(w, "## 📈 Pull Request Trends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, trendChart(report.Weekly))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## 🤖 GitHub Copilot Usage Trends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, percentageChart(report.Weekly))
	fmt.Fprintln(w)

	// Per-repository breakdown only makes sense across all repositories.
	if report.AnalyzedRepository == schema.AllRepositoriesScope {
		fmt.Fprintln(w, "## 📚 Repository Activity Breakdown")
		fmt.Fprintln(w)
		fmt.Fprintln(w, repoBreakdownChart(report.Weekly))
		fmt.Fprintln(w)
	}
	return nil
}

func writeSummaryStats(w io.Writer, report *schema.AnalysisReport) {
	fmt.Fprintln(w, "## 📊 Analysis Summary")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "**Analysis Period:** %s to %s\n",
		report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(w, "**Analyzed User:** %s\n", report.AnalyzedOwner)
	fmt.Fprintf(w, "**Scope:** %s\n", report.AnalyzedRepository)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- **Total PRs:** %d\n", report.TotalPRs)
	fmt.Fprintf(w, "- **Copilot-Assisted PRs:** %d\n", report.TotalAssistedPRs)
	fmt.Fprintf(w, "- **Overall Copilot Usage:** %.1f%%\n",
		schema.Percentage(report.TotalAssistedPRs, report.TotalPRs))
	fmt.Fprintf(w, "- **Dependency-Bot PRs:** %d\n", report.TotalDependencyPRs)
	if report.WorkflowRuns > 0 {
		fmt.Fprintf(w, "- **Copilot Workflow Runs:** %d (%d minutes)\n",
			report.WorkflowRuns, report.WorkflowMinutes)
	}
	fmt.Fprintln(w)
}

// trendChart renders a line chart of total versus assisted PRs per week.
func trendChart(weekly map[string]*schema.WeekStats) string {
	if len(weekly) == 0 {
		return "No data available for trend chart"
	}
	keys := schema.SortedWeekKeys(weekly)

	maxTotal := 0
	totals := make([]string, 0, len(keys))
	assisted := make([]string, 0, len(keys))
	for _, key := range keys {
		week := weekly[key]
		if week.TotalPRs > maxTotal {
			maxTotal = week.TotalPRs
		}
		totals = append(totals, fmt.Sprintf("%d", week.TotalPRs))
		assisted = append(assisted, fmt.Sprintf("%d", week.AssistedPRs))
	}

	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("xychart-beta\n")
	b.WriteString("    title \"Pull Request Trends Over Time\"\n")
	fmt.Fprintf(&b, "    x-axis [%s]\n", quoteJoin(keys))
	fmt.Fprintf(&b, "    y-axis \"Number of PRs\" 0 --> %d\n", maxTotal+5)
	fmt.Fprintf(&b, "    line \"Total PRs\" [%s]\n", strings.Join(totals, ", "))
	fmt.Fprintf(&b, "    line \"Copilot-Assisted PRs\" [%s]\n", strings.Join(assisted, ", "))
	b.WriteString("```")
	return b.String()
}

// percentageChart renders the assisted percentage per week on a fixed
// 0-100 axis.
func percentageChart(weekly map[string]*schema.WeekStats) string {
	if len(weekly) == 0 {
		return "No data available for percentage chart"
	}
	keys := schema.SortedWeekKeys(weekly)

	percentages := make([]string, 0, len(keys))
	for _, key := range keys {
		percentages = append(percentages, fmt.Sprintf("%g", weekly[key].AssistedPercentage))
	}

	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("xychart-beta\n")
	b.WriteString("    title \"GitHub Copilot Usage Percentage Over Time\"\n")
	fmt.Fprintf(&b, "    x-axis [%s]\n", quoteJoin(keys))
	b.WriteString("    y-axis \"Percentage (%)\" 0 --> 100\n")
	fmt.Fprintf(&b, "    line \"Copilot Usage %%\" [%s]\n", strings.Join(percentages, ", "))
	b.WriteString("```")
	return b.String()
}

// repoBreakdownChart renders a bar chart of the busiest repositories.
func repoBreakdownChart(weekly map[string]*schema.WeekStats) string {
	counts := make(map[string]int)
	for _, week := range weekly {
		for _, pr := range week.PullRequests {
			counts[pr.Repository]++
		}
	}
	if len(counts) == 0 {
		return "No repository data available"
	}

	type repoCount struct {
		name  string
		count int
	}
	repos := make([]repoCount, 0, len(counts))
	for name, count := range counts {
		repos = append(repos, repoCount{name, count})
	}
	sort.Slice(repos, func(i, j int) bool {
		if repos[i].count != repos[j].count {
			return repos[i].count > repos[j].count
		}
		return repos[i].name < repos[j].name
	})
	if len(repos) > topRepoChartLimit {
		repos = repos[:topRepoChartLimit]
	}

	names := make([]string, 0, len(repos))
	values := make([]string, 0, len(repos))
	maxCount := 0
	for _, rc := range repos {
		names = append(names, rc.name)
		values = append(values, fmt.Sprintf("%d", rc.count))
		if rc.count > maxCount {
			maxCount = rc.count
		}
	}

	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("xychart-beta\n")
	b.WriteString("    title \"Top Repositories by PR Count\"\n")
	fmt.Fprintf(&b, "    x-axis [%s]\n", quoteJoin(names))
	fmt.Fprintf(&b, "    y-axis \"Number of PRs\" 0 --> %d\n", maxCount+5)
	fmt.Fprintf(&b, "    bar [%s]\n", strings.Join(values, ", "))
	b.WriteString("```")
	return b.String()
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
