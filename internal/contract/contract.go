// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/prpulse/prpulse/schema"
)

// PRService defines the GitHub data operations needed by the analysis
// core. This allows classification and aggregation logic to be tested
// without a network or a real token.
type PRService interface {
	// --- Discovery / Primary Resources ---

	// ListRepositories returns every repository of the owner, across
	// all pages. A discovery failure here is fatal to the run.
	ListRepositories(ctx context.Context, owner string) ([]*github.Repository, error)

	// ListPullRequests returns the repository's pull requests created
	// at or after since. A 404 yields an empty slice and no error.
	ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]*github.PullRequest, error)

	// ListWorkflowRuns returns the repository's workflow runs created
	// at or after since, across all pages.
	ListWorkflowRuns(ctx context.Context, owner, repo string, since time.Time) ([]*github.WorkflowRun, error)

	// --- Best-Effort Enrichments ---

	// ListReviews fetches the reviews of a single pull request.
	ListReviews(ctx context.Context, owner, repo string, number int) EnrichmentResult[*github.PullRequestReview]

	// ListCommits fetches the commits of a single pull request.
	ListCommits(ctx context.Context, owner, repo string, number int) EnrichmentResult[*github.RepositoryCommit]

	// ListFiles fetches the changed files of a single pull request.
	ListFiles(ctx context.Context, owner, repo string, number int) EnrichmentResult[*github.CommitFile]

	// ListWorkflowJobs fetches the jobs of a single workflow run.
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) EnrichmentResult[*github.WorkflowJob]
}

// EnrichmentResult carries best-effort fetch data along with the
// reason the fetch degraded to an empty result, if any. Callers that
// only care about the data may read Items directly: a degraded result
// always has an empty Items slice.
type EnrichmentResult[T any] struct {
	Items    []T
	Degraded error
}

// Ok wraps successfully fetched enrichment data.
func Ok[T any](items []T) EnrichmentResult[T] {
	return EnrichmentResult[T]{Items: items}
}

// DegradedResult records a failed enrichment fetch as an empty result.
func DegradedResult[T any](err error) EnrichmentResult[T] {
	return EnrichmentResult[T]{Degraded: err}
}

// IsDegraded reports whether the fetch failed and the result is empty
// for that reason rather than because the resource had no data.
func (r EnrichmentResult[T]) IsDegraded() bool {
	return r.Degraded != nil
}

// CacheManager defines the interface for managing the backing stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for response-cache storage.
// Entries carry a schema version and an insertion timestamp so reads
// can reject stale or incompatible data.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking analysis runs.
type RunStore interface {
	// BeginRun creates a new run row and returns its unique ID.
	BeginRun(startedAt time.Time, owner, scope string, periodStart, periodEnd time.Time) (int64, error)

	// EndRun updates the run row with completion data.
	EndRun(runID int64, finishedAt time.Time, totalPRs, assistedPRs int) error

	// GetAllRuns returns every recorded run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
