package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/prpulse/prpulse/core/classify"
	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// Aggregator walks the configured repositories and folds pull requests
// and workflow runs into weekly buckets. Repository discovery failures
// are fatal; a failure inside a single repository is logged and the
// remaining repositories are still analyzed.
type Aggregator struct {
	cfg        *contract.Config
	service    contract.PRService
	classifier *classify.Classifier
	now        func() time.Time
}

// NewAggregator returns an Aggregator over the given service.
func NewAggregator(cfg *contract.Config, service contract.PRService) *Aggregator {
	return &Aggregator{
		cfg:        cfg,
		service:    service,
		classifier: classify.New(service),
		now:        time.Now,
	}
}

// weekAccum is the mutable shape of a week bucket during aggregation.
// Collaborator and repository sets keep insertion order so finalized
// lists are deterministic.
type weekAccum struct {
	stats         *schema.WeekStats
	collaborators *schema.OrderedSet
	repositories  *schema.OrderedSet
}

// reportAccum collects cross-week state alongside the report itself.
type reportAccum struct {
	report        *schema.AnalysisReport
	weeks         map[string]*weekAccum
	collaborators *schema.OrderedSet
	repositories  *schema.OrderedSet
}

func (a *reportAccum) week(key string) *weekAccum {
	if w, ok := a.weeks[key]; ok {
		return w
	}
	w := &weekAccum{
		stats:         &schema.WeekStats{},
		collaborators: schema.NewOrderedSet(),
		repositories:  schema.NewOrderedSet(),
	}
	a.weeks[key] = w
	return w
}

// Run performs the full analysis and returns the finalized report.
func (a *Aggregator) Run(ctx context.Context) (*schema.AnalysisReport, error) {
	repos, err := a.resolveRepositories(ctx)
	if err != nil {
		return nil, err
	}

	acc := &reportAccum{
		report: &schema.AnalysisReport{
			AnalysisDate:       a.now().UTC(),
			PeriodStart:        a.cfg.StartTime,
			PeriodEnd:          a.cfg.EndTime,
			AnalyzedOwner:      a.cfg.Owner,
			AnalyzedRepository: a.cfg.Scope(),
		},
		weeks:         make(map[string]*weekAccum),
		collaborators: schema.NewOrderedSet(),
		repositories:  schema.NewOrderedSet(),
	}

	for _, repo := range repos {
		contract.LogProgress(a.cfg.Verbose, "Analyzing %s/%s", a.cfg.Owner, repo)
		if err := a.analyzeRepository(ctx, acc, repo); err != nil {
			contract.LogWarn(fmt.Sprintf("skipping pull requests of %s/%s", a.cfg.Owner, repo), err)
		}
		if err := a.analyzeWorkflows(ctx, acc, repo); err != nil {
			contract.LogWarn(fmt.Sprintf("skipping workflow runs of %s/%s", a.cfg.Owner, repo), err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	a.finalize(acc)
	return acc.report, nil
}

// resolveRepositories returns the repository names to analyze. With an
// explicit --repo the list has exactly one entry; otherwise every
// non-archived, non-disabled repository of the owner is included,
// minus anything the org filter excludes.
func (a *Aggregator) resolveRepositories(ctx context.Context) ([]string, error) {
	if a.cfg.Repo != "" {
		return []string{a.cfg.Repo}, nil
	}

	all, err := a.service.ListRepositories(ctx, a.cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("discover repositories of %s: %w", a.cfg.Owner, err)
	}

	names := make([]string, 0, len(all))
	for _, repo := range all {
		if repo.GetArchived() || repo.GetDisabled() {
			continue
		}
		owner := repo.GetOwner().GetLogin()
		if owner == "" {
			owner = a.cfg.Owner
		}
		if a.cfg.OrgFilter != nil && a.cfg.OrgFilter.ShouldSkip(owner, repo.GetName()) {
			contract.LogProgress(a.cfg.Verbose, "Filtered out %s/%s", owner, repo.GetName())
			continue
		}
		names = append(names, repo.GetName())
	}
	return names, nil
}

// analyzeRepository folds one repository's pull requests into the
// accumulator. Dependency-bot PRs only bump per-week and global
// counters and never become detail records.
func (a *Aggregator) analyzeRepository(ctx context.Context, acc *reportAccum, repo string) error {
	prs, err := a.service.ListPullRequests(ctx, a.cfg.Owner, repo, a.cfg.StartTime)
	if err != nil {
		return err
	}

	for _, pr := range prs {
		if classify.IsDependencyBot(pr) {
			// Dependency PRs count per week and globally, but never enter
			// the detail records or category buckets.
			acc.week(schema.WeekKey(pr.GetCreatedAt().Time)).stats.DependencyPRs++
			acc.report.TotalDependencyPRs++
			continue
		}

		result := a.classifier.ClassifyPullRequest(ctx, a.cfg.Owner, repo, pr)
		if !a.ownerInvolved(pr, result.Reviewers) {
			continue
		}

		week := acc.week(schema.WeekKey(pr.GetCreatedAt().Time))
		record := a.buildRecord(ctx, repo, pr, result)

		week.stats.TotalPRs++
		acc.report.TotalPRs++
		switch record.Category {
		case schema.AgentAssist:
			week.stats.AgentPRs++
			acc.report.TotalAgentPRs++
		case schema.ReviewAssist:
			week.stats.ReviewPRs++
			acc.report.TotalReviewPRs++
		}

		for _, login := range record.Collaborators {
			week.collaborators.Add(login)
			acc.collaborators.Add(login)
		}
		week.repositories.Add(repo)
		acc.repositories.Add(repo)
		week.stats.PullRequests = append(week.stats.PullRequests, record)
	}
	return nil
}

// buildRecord assembles the per-PR detail record. Commit breakdowns are
// fetched for assisted PRs only; line breakdowns for every PR. Both are
// enrichments and may be absent when the fetch degraded.
func (a *Aggregator) buildRecord(ctx context.Context, repo string, pr *github.PullRequest, result classify.Result) schema.PullRequestRecord {
	record := schema.PullRequestRecord{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Author:     pr.GetUser().GetLogin(),
		Repository: repo,
		URL:        pr.GetHTMLURL(),
		CreatedAt:  pr.GetCreatedAt().Time,
		Category:   result.Category,
	}

	if record.Assisted() {
		commits := a.service.ListCommits(ctx, a.cfg.Owner, repo, pr.GetNumber())
		if !commits.IsDegraded() {
			record.Commits = classify.CommitBreakdown(commits.Items)
		}
	}

	files := a.service.ListFiles(ctx, a.cfg.Owner, repo, pr.GetNumber())
	if !files.IsDegraded() {
		record.Lines = classify.LineBreakdown(files.Items)
	}

	collaborators := schema.NewOrderedSet()
	collaborators.Add(record.Author)
	for _, assignee := range pr.Assignees {
		collaborators.Add(assignee.GetLogin())
	}
	for _, reviewer := range pr.RequestedReviewers {
		collaborators.Add(reviewer.GetLogin())
	}
	for _, login := range result.Reviewers {
		collaborators.Add(login)
	}
	record.Collaborators = collaborators.Values()
	return record
}

// ownerInvolved reports whether the analyzed owner took part in the PR
// as author, assignee or reviewer. Comparison is case-insensitive.
func (a *Aggregator) ownerInvolved(pr *github.PullRequest, reviewers []string) bool {
	owner := a.cfg.Owner
	if strings.EqualFold(pr.GetUser().GetLogin(), owner) {
		return true
	}
	for _, assignee := range pr.Assignees {
		if strings.EqualFold(assignee.GetLogin(), owner) {
			return true
		}
	}
	for _, reviewer := range pr.RequestedReviewers {
		if strings.EqualFold(reviewer.GetLogin(), owner) {
			return true
		}
	}
	for _, login := range reviewers {
		if strings.EqualFold(login, owner) {
			return true
		}
	}
	return false
}

// analyzeWorkflows folds assistant-triggered workflow runs into the
// accumulator. Runs by other actors are ignored entirely.
func (a *Aggregator) analyzeWorkflows(ctx context.Context, acc *reportAccum, repo string) error {
	runs, err := a.service.ListWorkflowRuns(ctx, a.cfg.Owner, repo, a.cfg.StartTime)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if !classify.IsAssistantRun(run) {
			continue
		}

		minutes := 0
		jobs := a.service.ListWorkflowJobs(ctx, a.cfg.Owner, repo, run.GetID())
		if !jobs.IsDegraded() {
			minutes = classify.WorkflowMinutes(jobs.Items)
		}

		week := acc.week(schema.WeekKey(run.GetCreatedAt().Time))
		if week.stats.Workflow == nil {
			week.stats.Workflow = &schema.WorkflowUsage{}
		}
		week.stats.Workflow.TotalRuns++
		week.stats.Workflow.TotalMinutes += minutes
		week.stats.Workflow.Runs = append(week.stats.Workflow.Runs, schema.WorkflowRunDetail{
			RunID:      run.GetID(),
			Name:       run.GetName(),
			Repository: repo,
			CreatedAt:  run.GetCreatedAt().Time,
			Minutes:    minutes,
			Copilot:    true,
		})

		acc.report.WorkflowRuns++
		acc.report.WorkflowMinutes += minutes
	}
	return nil
}

// finalize derives percentages and converts accumulator sets into the
// report's ordered lists.
func (a *Aggregator) finalize(acc *reportAccum) {
	report := acc.report
	report.Weekly = make(map[string]*schema.WeekStats, len(acc.weeks))

	for key, week := range acc.weeks {
		stats := week.stats
		stats.AssistedPRs = stats.AgentPRs + stats.ReviewPRs
		stats.AgentPercentage = schema.Percentage(stats.AgentPRs, stats.TotalPRs)
		stats.ReviewPercentage = schema.Percentage(stats.ReviewPRs, stats.TotalPRs)
		stats.AssistedPercentage = schema.Percentage(stats.AssistedPRs, stats.TotalPRs)
		stats.Collaborators = week.collaborators.Values()
		stats.UniqueCollaborators = week.collaborators.Len()
		stats.Repositories = week.repositories.Values()
		report.Weekly[key] = stats
	}

	report.TotalAssistedPRs = report.TotalAgentPRs + report.TotalReviewPRs
	report.Collaborators = acc.collaborators.Values()
	report.Repositories = acc.repositories.Values()
}
