package classify

import (
	"context"
	"math"
	"strings"

	"github.com/google/go-github/v62/github"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// Classifier decides assistance categories for pull requests and
// workflow runs. Review and commit data is fetched lazily: cheap
// author/assignee signals short-circuit before any network call.
type Classifier struct {
	service contract.PRService
}

// New returns a Classifier backed by the given service.
func New(service contract.PRService) *Classifier {
	return &Classifier{service: service}
}

// Result is the outcome of classifying one pull request. Reviewers
// holds the reviewer logins observed while classifying, which is empty
// when an earlier signal short-circuited the review fetch.
type Result struct {
	Category  schema.AssistCategory
	Reviewers []string
}

// ClassifyPullRequest runs the priority-ordered assistance checks.
// The ordering is load-bearing: author and assignee signals are
// authoritative and must win before reviews or commits are consulted.
func (c *Classifier) ClassifyPullRequest(ctx context.Context, owner, repo string, pr *github.PullRequest) Result {
	// 1. Author is the assistant bot.
	if strings.EqualFold(pr.GetUser().GetLogin(), CopilotLogin) {
		return Result{Category: schema.AgentAssist}
	}

	// 2. Any assignee is the assistant bot.
	for _, assignee := range pr.Assignees {
		if strings.EqualFold(assignee.GetLogin(), CopilotLogin) {
			return Result{Category: schema.AgentAssist}
		}
	}

	// 3. An assistant bot reviewed the PR.
	reviews := c.service.ListReviews(ctx, owner, repo, pr.GetNumber())
	reviewers := make([]string, 0, len(reviews.Items))
	matched := false
	for _, review := range reviews.Items {
		login := review.GetUser().GetLogin()
		if login != "" {
			reviewers = append(reviewers, login)
		}
		if IsAssistantReviewer(login) {
			matched = true
		}
	}
	if matched {
		return Result{Category: schema.ReviewAssist, Reviewers: reviewers}
	}

	// 4. Commit messages carry assistant markers. First match wins.
	commits := c.service.ListCommits(ctx, owner, repo, pr.GetNumber())
	for _, commit := range commits.Items {
		msg := strings.ToLower(commit.GetCommit().GetMessage())
		switch {
		case strings.Contains(msg, CoAuthorMarker) && strings.Contains(msg, CopilotLogin):
			return Result{Category: schema.AgentAssist, Reviewers: reviewers}
		case containsAny(msg, AssistantKeywords) && containsAny(msg, ReviewContextKeywords):
			return Result{Category: schema.ReviewAssist, Reviewers: reviewers}
		case containsAny(msg, AssistantKeywords):
			return Result{Category: schema.AgentAssist, Reviewers: reviewers}
		}
	}

	// 5. Fall back to title and body keywords.
	text := strings.ToLower(pr.GetTitle() + " " + pr.GetBody())
	if containsAny(text, AssistantKeywords) {
		switch {
		case containsAny(text, ReviewContextKeywords):
			return Result{Category: schema.ReviewAssist, Reviewers: reviewers}
		case containsAny(text, GenerationContextKeywords):
			return Result{Category: schema.AgentAssist, Reviewers: reviewers}
		default:
			// A bare mention still means the assistant helped produce
			// the change.
			return Result{Category: schema.AgentAssist, Reviewers: reviewers}
		}
	}

	return Result{Category: schema.NoAssist, Reviewers: reviewers}
}

// IsAssistantReviewer reports whether a reviewer login belongs to the
// assistant. A login that merely contains "copilot" is not enough; it
// must be a known reviewer bot, the bare bot name, or carry both a
// "copilot" and a "review" substring.
func IsAssistantReviewer(login string) bool {
	if _, ok := ReviewerBotLogins[login]; ok {
		return true
	}
	lower := strings.ToLower(login)
	if lower == CopilotLogin {
		return true
	}
	return strings.Contains(lower, "copilot") && strings.Contains(lower, "review")
}

// IsDependencyBot reports whether the PR comes from a dependency-update
// bot, by author login or title phrasing. No network calls.
func IsDependencyBot(pr *github.PullRequest) bool {
	author := strings.ToLower(pr.GetUser().GetLogin())
	if _, ok := DependencyBotLogins[author]; ok {
		return true
	}
	title := strings.ToLower(pr.GetTitle())
	return containsAny(title, DependencyTitleMarkers)
}

// IsAssistantRun reports whether a workflow run was triggered by the
// assistant, by actor allow-list or by keyword in the run's name,
// display title or head-commit message.
func IsAssistantRun(run *github.WorkflowRun) bool {
	if _, ok := WorkflowActorAllowList[run.GetActor().GetLogin()]; ok {
		return true
	}
	if _, ok := WorkflowActorAllowList[run.GetTriggeringActor().GetLogin()]; ok {
		return true
	}
	text := strings.ToLower(run.GetName() + " " + run.GetDisplayTitle() + " " + run.GetHeadCommit().GetMessage())
	return strings.Contains(text, CopilotLogin)
}

// CommitBreakdown counts how many of a PR's commits were authored or
// co-authored by the assistant.
func CommitBreakdown(commits []*github.RepositoryCommit) *schema.CommitBreakdown {
	breakdown := &schema.CommitBreakdown{Total: len(commits)}
	for _, commit := range commits {
		if isAssistantCommit(commit) {
			breakdown.Copilot++
		} else {
			breakdown.User++
		}
	}
	return breakdown
}

func isAssistantCommit(commit *github.RepositoryCommit) bool {
	if strings.EqualFold(commit.GetAuthor().GetLogin(), CopilotLogin) {
		return true
	}
	if strings.Contains(strings.ToLower(commit.GetCommit().GetAuthor().GetName()), CopilotLogin) {
		return true
	}
	msg := strings.ToLower(commit.GetCommit().GetMessage())
	return strings.Contains(msg, CoAuthorMarker) && strings.Contains(msg, CopilotLogin)
}

// LineBreakdown sums line and file change counts across a PR's diff.
func LineBreakdown(files []*github.CommitFile) *schema.LineBreakdown {
	breakdown := &schema.LineBreakdown{FilesChanged: len(files)}
	for _, file := range files {
		breakdown.Additions += file.GetAdditions()
		breakdown.Deletions += file.GetDeletions()
		breakdown.Changes += file.GetChanges()
	}
	return breakdown
}

// WorkflowMinutes sums billable minutes across a run's jobs. Each job's
// wall-clock duration is rounded up to the next whole minute; jobs
// without both timestamps contribute nothing.
func WorkflowMinutes(jobs []*github.WorkflowJob) int {
	minutes := 0
	for _, job := range jobs {
		started := job.GetStartedAt().Time
		completed := job.GetCompletedAt().Time
		if started.IsZero() || completed.IsZero() || completed.Before(started) {
			continue
		}
		minutes += int(math.Ceil(completed.Sub(started).Minutes()))
	}
	return minutes
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
