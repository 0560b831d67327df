// Package schema defines the data model shared between the fetch,
// classification, aggregation and output layers.
package schema

import "time"

// PullRequestRecord is the per-PR detail stored inside a week bucket.
// It is created once during aggregation and never mutated afterwards.
type PullRequestRecord struct {
	Number        int              `json:"number"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Repository    string           `json:"repository"`
	URL           string           `json:"url"`
	CreatedAt     time.Time        `json:"created_at"`
	Category      AssistCategory   `json:"assist_category"`
	DependencyBot bool             `json:"dependency_bot"`
	Commits       *CommitBreakdown `json:"commits,omitempty"`
	Lines         *LineBreakdown   `json:"lines,omitempty"`
	Collaborators []string         `json:"collaborators"`
}

// Assisted reports whether the PR was classified as Copilot-assisted,
// i.e. either agent-authored or Copilot-reviewed.
func (r *PullRequestRecord) Assisted() bool {
	return r.Category == AgentAssist || r.Category == ReviewAssist
}

// CommitBreakdown splits a PR's commits between the user and Copilot.
// A commit counts as a Copilot commit when its author identity carries
// the bot name or its message has a Copilot co-authorship trailer.
type CommitBreakdown struct {
	Total   int `json:"total_commits"`
	User    int `json:"user_commits"`
	Copilot int `json:"copilot_commits"`
}

// LineBreakdown sums the file-diff stats of a PR.
type LineBreakdown struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Changes      int `json:"changes"`
	FilesChanged int `json:"files_changed"`
}

// WorkflowRunDetail is the per-run detail stored inside a week's
// workflow usage sub-record.
type WorkflowRunDetail struct {
	RunID      int64     `json:"run_id"`
	Name       string    `json:"name"`
	Repository string    `json:"repository"`
	CreatedAt  time.Time `json:"created_at"`
	Minutes    int       `json:"minutes"`
	Copilot    bool      `json:"copilot_triggered"`
}

// WorkflowUsage aggregates workflow runs that landed in a single week.
type WorkflowUsage struct {
	TotalRuns    int                 `json:"total_runs"`
	TotalMinutes int                 `json:"total_minutes"`
	Runs         []WorkflowRunDetail `json:"runs"`
}

// WeekStats is a finalized week bucket. Category counts cover only
// agent and review PRs; PRs classified as none contribute to TotalPRs
// but to no category bucket, so AgentPRs+ReviewPRs <= TotalPRs.
type WeekStats struct {
	TotalPRs            int                 `json:"total_prs"`
	AgentPRs            int                 `json:"agent_prs"`
	ReviewPRs           int                 `json:"review_prs"`
	AssistedPRs         int                 `json:"copilot_assisted_prs"`
	DependencyPRs       int                 `json:"dependency_prs"`
	AgentPercentage     float64             `json:"agent_percentage"`
	ReviewPercentage    float64             `json:"review_percentage"`
	AssistedPercentage  float64             `json:"copilot_percentage"`
	UniqueCollaborators int                 `json:"unique_collaborators"`
	Collaborators       []string            `json:"collaborators"`
	Repositories        []string            `json:"repositories"`
	PullRequests        []PullRequestRecord `json:"pull_requests"`
	Workflow            *WorkflowUsage      `json:"workflow_usage,omitempty"`
}

// AnalysisReport is the top-level result of a full analysis run.
// It is constructed once at the end of aggregation and never mutated.
type AnalysisReport struct {
	AnalysisDate       time.Time             `json:"analysis_date"`
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
	AnalyzedOwner      string                `json:"analyzed_user"`
	AnalyzedRepository string                `json:"analyzed_repository"`
	TotalPRs           int                   `json:"total_prs"`
	TotalAgentPRs      int                   `json:"total_agent_prs"`
	TotalReviewPRs     int                   `json:"total_review_prs"`
	TotalAssistedPRs   int                   `json:"total_copilot_prs"`
	TotalDependencyPRs int                   `json:"total_dependency_prs"`
	WorkflowRuns       int                   `json:"workflow_runs"`
	WorkflowMinutes    int                   `json:"workflow_minutes"`
	Repositories       []string              `json:"repositories"`
	Collaborators      []string              `json:"collaborators"`
	Weekly             map[string]*WeekStats `json:"weekly_analysis"`
}

// AllRepositoriesScope is the AnalyzedRepository value used when the
// analysis covered every discoverable repository of the owner.
const AllRepositoriesScope = "all_repositories"
