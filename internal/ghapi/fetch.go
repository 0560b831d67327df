package ghapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/prpulse/prpulse/internal/contract"
)

// ListRepositories returns every repository of the owner. Pages are
// cached individually so an interrupted run resumes cheaply.
func (s *Service) ListRepositories(ctx context.Context, owner string) ([]*github.Repository, error) {
	var all []*github.Repository
	for page := 1; ; page++ {
		key := fmt.Sprintf(reposKeyFmt, owner, page)
		repos, hit := cacheGet[*github.Repository](s, key)
		if !hit {
			var err error
			repos, err = execute(ctx, s, fmt.Sprintf("list repos for %s page %d", owner, page),
				func() ([]*github.Repository, *github.Response, error) {
					opts := &github.RepositoryListByUserOptions{
						Type:        "owner",
						ListOptions: github.ListOptions{PerPage: PerPage, Page: page},
					}
					return s.gh.Repositories.ListByUser(ctx, owner, opts)
				})
			if err != nil {
				return nil, err
			}
			cacheSet(s, key, repos)
		}

		all = append(all, repos...)
		if len(repos) < PerPage {
			return all, nil
		}
	}
}

// ListPullRequests returns the repository's pull requests created at or
// after since, newest first. Pagination stops as soon as a page runs
// past the window. A missing repository yields an empty result.
func (s *Service) ListPullRequests(ctx context.Context, owner, repo string, since time.Time) ([]*github.PullRequest, error) {
	var all []*github.PullRequest
	for page := 1; ; page++ {
		key := fmt.Sprintf(prsKeyFmt, owner, repo, page)
		prs, hit := cacheGet[*github.PullRequest](s, key)
		if !hit {
			var err error
			prs, err = execute(ctx, s, fmt.Sprintf("list PRs for %s/%s page %d", owner, repo, page),
				func() ([]*github.PullRequest, *github.Response, error) {
					opts := &github.PullRequestListOptions{
						State:       "all",
						Sort:        "created",
						Direction:   "desc",
						ListOptions: github.ListOptions{PerPage: PerPage, Page: page},
					}
					return s.gh.PullRequests.List(ctx, owner, repo, opts)
				})
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			cacheSet(s, key, prs)
		}

		pastWindow := false
		for _, pr := range prs {
			if pr.GetCreatedAt().Time.Before(since) {
				pastWindow = true
				continue
			}
			all = append(all, pr)
		}
		if pastWindow || len(prs) < PerPage {
			return all, nil
		}
	}
}

// ListWorkflowRuns returns the repository's workflow runs created at or
// after since. Repositories without Actions history yield an empty
// result.
func (s *Service) ListWorkflowRuns(ctx context.Context, owner, repo string, since time.Time) ([]*github.WorkflowRun, error) {
	created := fmt.Sprintf(">=%s", since.UTC().Format("2006-01-02"))
	var all []*github.WorkflowRun
	for page := 1; ; page++ {
		key := fmt.Sprintf(runsKeyFmt, owner, repo, page)
		runs, hit := cacheGet[*github.WorkflowRun](s, key)
		if !hit {
			var err error
			runs, err = execute(ctx, s, fmt.Sprintf("list workflow runs for %s/%s page %d", owner, repo, page),
				func() ([]*github.WorkflowRun, *github.Response, error) {
					opts := &github.ListWorkflowRunsOptions{
						Created:     created,
						ListOptions: github.ListOptions{PerPage: PerPage, Page: page},
					}
					result, resp, err := s.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
					if err != nil {
						return nil, resp, err
					}
					return result.WorkflowRuns, resp, nil
				})
			if err != nil {
				if isNotFound(err) {
					return nil, nil
				}
				return nil, err
			}
			cacheSet(s, key, runs)
		}

		all = append(all, runs...)
		if len(runs) < PerPage {
			return all, nil
		}
	}
}

// ListReviews fetches every review of one pull request, best effort.
func (s *Service) ListReviews(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.PullRequestReview] {
	key := fmt.Sprintf(reviewsKeyFmt, owner, repo, number)
	return enrich(ctx, s, key, fmt.Sprintf("list reviews for %s/%s#%d", owner, repo, number),
		func(page int) ([]*github.PullRequestReview, *github.Response, error) {
			opts := &github.ListOptions{PerPage: PerPage, Page: page}
			return s.gh.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		})
}

// ListCommits fetches every commit of one pull request, best effort.
func (s *Service) ListCommits(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.RepositoryCommit] {
	key := fmt.Sprintf(commitsKeyFmt, owner, repo, number)
	return enrich(ctx, s, key, fmt.Sprintf("list commits for %s/%s#%d", owner, repo, number),
		func(page int) ([]*github.RepositoryCommit, *github.Response, error) {
			opts := &github.ListOptions{PerPage: PerPage, Page: page}
			return s.gh.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		})
}

// ListFiles fetches every changed file of one pull request, best effort.
func (s *Service) ListFiles(ctx context.Context, owner, repo string, number int) contract.EnrichmentResult[*github.CommitFile] {
	key := fmt.Sprintf(filesKeyFmt, owner, repo, number)
	return enrich(ctx, s, key, fmt.Sprintf("list files for %s/%s#%d", owner, repo, number),
		func(page int) ([]*github.CommitFile, *github.Response, error) {
			opts := &github.ListOptions{PerPage: PerPage, Page: page}
			return s.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		})
}

// ListWorkflowJobs fetches every job of one workflow run, best effort.
func (s *Service) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) contract.EnrichmentResult[*github.WorkflowJob] {
	key := fmt.Sprintf(jobsKeyFmt, owner, repo, runID)
	return enrich(ctx, s, key, fmt.Sprintf("list jobs for %s/%s run %d", owner, repo, runID),
		func(page int) ([]*github.WorkflowJob, *github.Response, error) {
			opts := &github.ListWorkflowJobsOptions{
				ListOptions: github.ListOptions{PerPage: PerPage, Page: page},
			}
			result, resp, err := s.gh.Actions.ListWorkflowJobs(ctx, owner, repo, runID, opts)
			if err != nil {
				return nil, resp, err
			}
			return result.Jobs, resp, nil
		})
}

// enrich drains all pages of a per-item enrichment endpoint. The full
// result is cached under one key. Failures degrade to an empty result
// instead of aborting the analysis.
func enrich[T any](ctx context.Context, s *Service, key, desc string, fetch func(page int) ([]T, *github.Response, error)) contract.EnrichmentResult[T] {
	if items, hit := cacheGet[T](s, key); hit {
		return contract.Ok(items)
	}

	all := []T{}
	for page := 1; ; page++ {
		items, err := execute(ctx, s, desc, func() ([]T, *github.Response, error) {
			return fetch(page)
		})
		if err != nil {
			contract.LogWarn(desc, fmt.Errorf("degraded to empty: %w", err))
			return contract.DegradedResult[T](err)
		}
		all = append(all, items...)
		if len(items) < PerPage {
			break
		}
	}

	cacheSet(s, key, all)
	return contract.Ok(all)
}

// isNotFound reports whether an error chain ends in an HTTP 404.
func isNotFound(err error) bool {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode == http.StatusNotFound
	}
	return false
}
