package ghapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prpulse/prpulse/schema"
)

// memStore is a minimal in-memory CacheStore for fetch tests.
type memStore struct {
	data map[string]memEntry
}

type memEntry struct {
	blob      []byte
	version   int
	timestamp int64
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]memEntry)}
}

func (m *memStore) Get(key string) ([]byte, int, int64, error) {
	e, ok := m.data[key]
	if !ok {
		return nil, 0, 0, nil
	}
	return e.blob, e.version, e.timestamp, nil
}

func (m *memStore) Set(key string, blob []byte, version int, timestamp int64) error {
	m.data[key] = memEntry{blob: blob, version: version, timestamp: timestamp}
	return nil
}

func (m *memStore) GetStatus() (schema.CacheStatus, error) {
	return schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: int64(len(m.data))}, nil
}

func (m *memStore) Close() error { return nil }

func newTestService(t *testing.T, mux *http.ServeMux) (*Service, *memStore) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	store := newMemStore()
	return &Service{
		gh:         client,
		store:      store,
		ttl:        time.Hour,
		maxRetries: 0,
		sleep:      func(time.Duration) {},
		now:        time.Now,
		jitter:     func(time.Duration) time.Duration { return 0 },
	}, store
}

func TestListPullRequestsFiltersWindow(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"number": 3, "created_at": "2025-06-20T10:00:00Z"},
			{"number": 2, "created_at": "2025-06-05T10:00:00Z"},
			{"number": 1, "created_at": "2025-05-01T10:00:00Z"}
		]`)
	})

	s, _ := newTestService(t, mux)
	prs, err := s.ListPullRequests(context.Background(), "octocat", "hello-world", since)
	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, 3, prs[0].GetNumber())
	assert.Equal(t, 2, prs[1].GetNumber())
}

func TestListPullRequestsMissingRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/gone/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	s, _ := newTestService(t, mux)
	prs, err := s.ListPullRequests(context.Background(), "octocat", "gone", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, prs)
}

func TestListPullRequestsServesFromCache(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/pulls", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"number": 7, "created_at": "2025-06-20T10:00:00Z"}]`)
	})

	s, store := newTestService(t, mux)
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.ListPullRequests(context.Background(), "octocat", "hello-world", since)
	require.NoError(t, err)
	assert.Contains(t, store.data, "prs_octocat_hello-world_p1")

	prs, err := s.ListPullRequests(context.Background(), "octocat", "hello-world", since)
	require.NoError(t, err)
	assert.Len(t, prs, 1)
	assert.Equal(t, 1, calls)
}

func TestListRepositoriesPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			// A full page forces a fetch of the next one.
			fmt.Fprint(w, "[")
			for i := range PerPage {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"name": "repo-%d"}`, i)
			}
			fmt.Fprint(w, "]")
		default:
			fmt.Fprint(w, `[{"name": "last-repo"}]`)
		}
	})

	s, _ := newTestService(t, mux)
	repos, err := s.ListRepositories(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, PerPage+1)
	assert.Equal(t, "last-repo", repos[PerPage].GetName())
}

func TestListWorkflowRunsMissingRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/gone/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	s, _ := newTestService(t, mux)
	runs, err := s.ListWorkflowRuns(context.Background(), "octocat", "gone", time.Now())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListReviewsDegradesOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/pulls/5/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	})

	s, _ := newTestService(t, mux)
	result := s.ListReviews(context.Background(), "octocat", "hello-world", 5)
	assert.True(t, result.IsDegraded())
	assert.Empty(t, result.Items)
}

func TestListReviewsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello-world/pulls/5/reviews", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"user": {"login": "copilot-pull-request-reviewer[bot]"}}]`)
	})

	s, store := newTestService(t, mux)
	result := s.ListReviews(context.Background(), "octocat", "hello-world", 5)
	require.False(t, result.IsDegraded())
	require.Len(t, result.Items, 1)
	assert.Equal(t, "copilot-pull-request-reviewer[bot]", result.Items[0].GetUser().GetLogin())
	assert.Contains(t, store.data, "reviews_octocat_hello-world_5")
}

func TestEnrichDrainsPages(t *testing.T) {
	s, _ := newTestService(t, http.NewServeMux())

	pages := map[int][]int{1: make([]int, PerPage), 2: {1, 2}}
	result := enrich(context.Background(), s, "k", "op", func(page int) ([]int, *github.Response, error) {
		return pages[page], nil, nil
	})
	require.False(t, result.IsDegraded())
	assert.Len(t, result.Items, PerPage+2)

	// Second call hits the cache.
	cached := enrich(context.Background(), s, "k", "op", func(page int) ([]int, *github.Response, error) {
		return nil, nil, errors.New("should not be called")
	})
	require.False(t, cached.IsDegraded())
	assert.Len(t, cached.Items, PerPage+2)
}

func TestCacheVersionMismatchMisses(t *testing.T) {
	s, store := newTestService(t, http.NewServeMux())
	require.NoError(t, store.Set("k", []byte("[1,2]"), CacheSchemaVersion+1, time.Now().Unix()))

	_, hit := cacheGet[int](s, "k")
	assert.False(t, hit)
}

func TestCacheExpiryMisses(t *testing.T) {
	s, store := newTestService(t, http.NewServeMux())
	stale := time.Now().Add(-2 * time.Hour).Unix()
	require.NoError(t, store.Set("k", []byte("[1,2]"), CacheSchemaVersion, stale))

	_, hit := cacheGet[int](s, "k")
	assert.False(t, hit)

	require.NoError(t, store.Set("k", []byte("[1,2]"), CacheSchemaVersion, time.Now().Unix()))
	items, hit := cacheGet[int](s, "k")
	assert.True(t, hit)
	assert.Equal(t, []int{1, 2}, items)
}
