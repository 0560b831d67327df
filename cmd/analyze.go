package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prpulse/prpulse/core"
	"github.com/prpulse/prpulse/internal/contract"
)

// analyzeCmd performs the weekly PR-history analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner>",
	Short: "Analyze an owner's pull requests for Copilot collaboration.",
	Long: `Walk the pull-request history of a user or organization and bucket
results by ISO week.

For every PR in the lookback window the analysis:
- Classifies it as agent-authored, Copilot-reviewed, or unassisted
- Separates dependency-bot noise (Dependabot, Renovate) from real work
- Splits commits between you and Copilot on assisted PRs
- Sums line additions/deletions per PR
- Measures Copilot-triggered workflow runs and their billable minutes

Examples:
  # Analyze the last 90 days across all repositories
  prpulse analyze octocat

  # Single repository, shorter window
  prpulse analyze octocat --repo hello-world --days 30

  # Export weekly stats for dashboards
  prpulse analyze octocat --output csv --output-file weekly.csv

  # Markdown summary with mermaid charts for a step summary
  prpulse analyze octocat --output markdown --output-file summary.md`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalysis(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
