package ghapi

import (
	"context"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/mock"

	"github.com/prpulse/prpulse/internal/contract"
)

// MockPRService is a mock implementation of PRService for testing.
type MockPRService struct {
	mock.Mock
}

var _ contract.PRService = &MockPRService{} // Compile-time check

// ListRepositories implements the PRService interface.
func (m *MockPRService) ListRepositories(ctx context.Context, owner string) ([]*github.Repository, error) {
	args := m.Called(ctx, owner)
	repos, _ := args.Get(0).([]*github.Repository)
	return repos, args.Error(1)
}

// ListPullRequests implements the PRService interface.
func (m *MockPRService) ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]*github.PullRequest, error) {
	args := m.Called(ctx, owner, repo, since)
	prs, _ := args.Get(0).([]*github.PullRequest)
	return prs, args.Error(1)
}

// ListWorkflowRuns implements the PRService interface.
func (m *MockPRService) ListWorkflowRuns(ctx context.Context, owner, repo string, since time.Time) ([]*github.WorkflowRun, error) {
	args := m.Called(ctx, owner, repo, since)
	runs, _ := args.Get(0).([]*github.WorkflowRun)
	return runs, args.Error(1)
}

// ListReviews implements the PRService interface.
func (m *MockPRService) ListReviews(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.PullRequestReview] {
	args := m.Called(ctx, owner, repo, number)
	return args.Get(0).(contract.EnrichmentResult[*github.PullRequestReview])
}

// ListCommits implements the PRService interface.
func (m *MockPRService) ListCommits(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.RepositoryCommit] {
	args := m.Called(ctx, owner, repo, number)
	return args.Get(0).(contract.EnrichmentResult[*github.RepositoryCommit])
}

// ListFiles implements the PRService interface.
func (m *MockPRService) ListFiles(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.CommitFile] {
	args := m.Called(ctx, owner, repo, number)
	return args.Get(0).(contract.EnrichmentResult[*github.CommitFile])
}

// ListWorkflowJobs implements the PRService interface.
func (m *MockPRService) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) contract.EnrichmentResult[*github.WorkflowJob] {
	args := m.Called(ctx, owner, repo, runID)
	return args.Get(0).(contract.EnrichmentResult[*github.WorkflowJob])
}
