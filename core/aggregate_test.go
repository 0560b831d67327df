package core

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prpulse/prpulse/core/classify"
	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/internal/ghapi"
	"github.com/prpulse/prpulse/schema"
)

func classifyResult(category schema.AssistCategory, reviewers ...string) classify.Result {
	return classify.Result{Category: category, Reviewers: reviewers}
}

var windowStart = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // a Monday

func testConfig(repo string) *contract.Config {
	return &contract.Config{
		Owner:     "octocat",
		Repo:      repo,
		StartTime: windowStart,
		EndTime:   windowStart.Add(90 * 24 * time.Hour),
		OrgFilter: contract.NewOrgFilter(),
	}
}

func makePR(number int, author, title string, created time.Time, assignees ...string) *github.PullRequest {
	pr := &github.PullRequest{
		Number:    github.Int(number),
		Title:     github.String(title),
		Body:      github.String(""),
		User:      &github.User{Login: github.String(author)},
		CreatedAt: &github.Timestamp{Time: created},
	}
	for _, a := range assignees {
		pr.Assignees = append(pr.Assignees, &github.User{Login: github.String(a)})
	}
	return pr
}

// stubEnrichments wires empty happy-path responses for everything the
// aggregator may fetch beyond the PR list itself.
func stubEnrichments(svc *ghapi.MockPRService) {
	svc.On("ListReviews", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(contract.Ok[*github.PullRequestReview](nil)).Maybe()
	svc.On("ListCommits", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(contract.Ok[*github.RepositoryCommit](nil)).Maybe()
	svc.On("ListFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(contract.Ok[*github.CommitFile](nil)).Maybe()
	svc.On("ListWorkflowRuns", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*github.WorkflowRun(nil), nil).Maybe()
	svc.On("ListWorkflowJobs", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(contract.Ok[*github.WorkflowJob](nil)).Maybe()
}

func TestRunBucketsByWeekAndFinalizes(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListPullRequests", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.PullRequest{
			makePR(1, "Copilot", "Add parser", windowStart.Add(24*time.Hour), "octocat"),
			makePR(2, "octocat", "Fix docs", windowStart.Add(48*time.Hour)),
			makePR(3, "octocat", "Refactor", windowStart.Add(8*24*time.Hour)),
		}, nil)
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig("hello-world"), svc).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Weekly, 2)
	week1 := report.Weekly[schema.WeekKey(windowStart.Add(24*time.Hour))]
	require.NotNil(t, week1)
	assert.Equal(t, 2, week1.TotalPRs)
	assert.Equal(t, 1, week1.AgentPRs)
	assert.Equal(t, 1, week1.AssistedPRs)
	assert.Equal(t, 50.0, week1.AssistedPercentage)
	assert.Equal(t, []string{"hello-world"}, week1.Repositories)

	week2 := report.Weekly[schema.WeekKey(windowStart.Add(8*24*time.Hour))]
	require.NotNil(t, week2)
	assert.Equal(t, 1, week2.TotalPRs)
	assert.Equal(t, 0.0, week2.AssistedPercentage)

	assert.Equal(t, 3, report.TotalPRs)
	assert.Equal(t, 1, report.TotalAgentPRs)
	assert.Equal(t, 1, report.TotalAssistedPRs)
	assert.Equal(t, []string{"hello-world"}, report.Repositories)
	assert.Equal(t, "hello-world", report.AnalyzedRepository)
}

func TestRunExcludesDependencyPRsFromBuckets(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListPullRequests", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.PullRequest{
			makePR(1, "dependabot[bot]", "Bump axios from 1.0.0 to 1.6.0", windowStart.Add(time.Hour)),
			makePR(2, "octocat", "Fix docs", windowStart.Add(time.Hour)),
		}, nil)
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig("hello-world"), svc).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalDependencyPRs)
	assert.Equal(t, 1, report.TotalPRs)
	week := report.Weekly[schema.WeekKey(windowStart.Add(time.Hour))]
	require.NotNil(t, week)
	assert.Equal(t, 1, week.TotalPRs)
	assert.Equal(t, 1, week.DependencyPRs)
	// No dependency PR appears in the week's detail records.
	require.Len(t, week.PullRequests, 1)
	assert.Equal(t, "octocat", week.PullRequests[0].Author)
}

func TestRunSkipsUninvolvedPRs(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListPullRequests", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.PullRequest{
			makePR(1, "stranger", "Drive-by fix", windowStart.Add(time.Hour)),
			makePR(2, "stranger", "Assigned work", windowStart.Add(time.Hour), "octocat"),
		}, nil)
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig("hello-world"), svc).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalPRs)
	week := report.Weekly[schema.WeekKey(windowStart.Add(time.Hour))]
	require.NotNil(t, week)
	require.Len(t, week.PullRequests, 1)
	assert.Equal(t, 2, week.PullRequests[0].Number)
}

func TestRunNonePRsCountWithoutCategory(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListPullRequests", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.PullRequest{
			makePR(1, "octocat", "Plain change", windowStart.Add(time.Hour)),
		}, nil)
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig("hello-world"), svc).Run(context.Background())
	require.NoError(t, err)

	week := report.Weekly[schema.WeekKey(windowStart.Add(time.Hour))]
	require.NotNil(t, week)
	assert.Equal(t, 1, week.TotalPRs)
	assert.Equal(t, 0, week.AgentPRs)
	assert.Equal(t, 0, week.ReviewPRs)
	assert.Equal(t, 0, week.AssistedPRs)
	assert.Equal(t, schema.NoAssist, week.PullRequests[0].Category)
}

func TestRunFoldsAssistantWorkflowRuns(t *testing.T) {
	base := windowStart.Add(time.Hour)
	job := &github.WorkflowJob{
		StartedAt:   &github.Timestamp{Time: base},
		CompletedAt: &github.Timestamp{Time: base.Add(150 * time.Second)},
	}

	svc := &ghapi.MockPRService{}
	svc.On("ListPullRequests", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.PullRequest(nil), nil)
	svc.On("ListWorkflowRuns", mock.Anything, "octocat", "hello-world", windowStart).
		Return([]*github.WorkflowRun{
			{
				ID:        github.Int64(101),
				Name:      github.String("CI"),
				Actor:     &github.User{Login: github.String("copilot-swe-agent[bot]")},
				CreatedAt: &github.Timestamp{Time: base},
			},
			{
				ID:        github.Int64(102),
				Name:      github.String("CI"),
				Actor:     &github.User{Login: github.String("octocat")},
				CreatedAt: &github.Timestamp{Time: base},
			},
		}, nil)
	svc.On("ListWorkflowJobs", mock.Anything, "octocat", "hello-world", int64(101)).
		Return(contract.Ok([]*github.WorkflowJob{job}))
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig("hello-world"), svc).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.WorkflowRuns)
	assert.Equal(t, 3, report.WorkflowMinutes)

	week := report.Weekly[schema.WeekKey(base)]
	require.NotNil(t, week)
	require.NotNil(t, week.Workflow)
	assert.Equal(t, 1, week.Workflow.TotalRuns)
	assert.Equal(t, 3, week.Workflow.TotalMinutes)
	require.Len(t, week.Workflow.Runs, 1)
	assert.Equal(t, int64(101), week.Workflow.Runs[0].RunID)
	assert.True(t, week.Workflow.Runs[0].Copilot)
	svc.AssertNotCalled(t, "ListWorkflowJobs", mock.Anything, mock.Anything, mock.Anything, int64(102))
}

func TestRunToleratesSingleRepositoryFailure(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListRepositories", mock.Anything, "octocat").
		Return([]*github.Repository{
			{Name: github.String("broken")},
			{Name: github.String("healthy")},
		}, nil)
	svc.On("ListPullRequests", mock.Anything, "octocat", "broken", windowStart).
		Return([]*github.PullRequest(nil), assert.AnError)
	svc.On("ListPullRequests", mock.Anything, "octocat", "healthy", windowStart).
		Return([]*github.PullRequest{
			makePR(1, "octocat", "Fix docs", windowStart.Add(time.Hour)),
		}, nil)
	stubEnrichments(svc)

	report, err := NewAggregator(testConfig(""), svc).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalPRs)
	assert.Equal(t, []string{"healthy"}, report.Repositories)
}

func TestRunDiscoveryFailureIsFatal(t *testing.T) {
	svc := &ghapi.MockPRService{}
	svc.On("ListRepositories", mock.Anything, "octocat").
		Return([]*github.Repository(nil), assert.AnError)

	_, err := NewAggregator(testConfig(""), svc).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover repositories")
}

func TestResolveRepositoriesFiltersArchivedAndExcluded(t *testing.T) {
	cfg := testConfig("")
	filter, err := contract.ParseOrgFilter("octocat/active")
	require.NoError(t, err)
	cfg.OrgFilter = filter

	svc := &ghapi.MockPRService{}
	svc.On("ListRepositories", mock.Anything, "octocat").
		Return([]*github.Repository{
			{Name: github.String("active")},
			{Name: github.String("old"), Archived: github.Bool(true)},
			{Name: github.String("dead"), Disabled: github.Bool(true)},
			{Name: github.String("unlisted")},
		}, nil)

	// octocat is allow-listed to "active", so "unlisted" is dropped along
	// with the archived and disabled repositories.
	repos, err := NewAggregator(cfg, svc).resolveRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, repos)
}

func TestBuildRecordCollectsBreakdownsAndCollaborators(t *testing.T) {
	cfg := testConfig("hello-world")
	pr := makePR(7, "octocat", "Add exporter", windowStart.Add(time.Hour), "hubot")
	pr.RequestedReviewers = []*github.User{{Login: github.String("reviewer1")}}
	pr.HTMLURL = github.String("https://github.com/octocat/hello-world/pull/7")

	svc := &ghapi.MockPRService{}
	svc.On("ListCommits", mock.Anything, "octocat", "hello-world", 7).
		Return(contract.Ok([]*github.RepositoryCommit{
			{Commit: &github.Commit{Message: github.String("Fix\n\nCo-authored-by: Copilot <copilot@github.com>")}},
			{Commit: &github.Commit{Message: github.String("Plain")}},
		}))
	svc.On("ListFiles", mock.Anything, "octocat", "hello-world", 7).
		Return(contract.Ok([]*github.CommitFile{
			{Additions: github.Int(5), Deletions: github.Int(2), Changes: github.Int(7)},
		}))

	agg := NewAggregator(cfg, svc)
	record := agg.buildRecord(context.Background(), "hello-world", pr,
		classifyResult(schema.AgentAssist, "reviewer2"))

	require.NotNil(t, record.Commits)
	assert.Equal(t, 2, record.Commits.Total)
	assert.Equal(t, 1, record.Commits.Copilot)
	require.NotNil(t, record.Lines)
	assert.Equal(t, 5, record.Lines.Additions)
	assert.Equal(t, 1, record.Lines.FilesChanged)
	assert.Equal(t, []string{"octocat", "hubot", "reviewer1", "reviewer2"}, record.Collaborators)
	assert.Equal(t, "https://github.com/octocat/hello-world/pull/7", record.URL)
}

func TestBuildRecordSkipsDegradedBreakdowns(t *testing.T) {
	cfg := testConfig("hello-world")
	pr := makePR(8, "octocat", "Plain change", windowStart.Add(time.Hour))

	svc := &ghapi.MockPRService{}
	svc.On("ListFiles", mock.Anything, "octocat", "hello-world", 8).
		Return(contract.DegradedResult[*github.CommitFile](assert.AnError))

	agg := NewAggregator(cfg, svc)
	record := agg.buildRecord(context.Background(), "hello-world", pr,
		classifyResult(schema.NoAssist))

	assert.Nil(t, record.Commits)
	assert.Nil(t, record.Lines)
	svc.AssertNotCalled(t, "ListCommits")
}
