// Package ghapi wraps the GitHub REST API with retries, rate-limit
// awareness and response caching for pull-request history analysis.
package ghapi

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/prpulse/prpulse/internal/contract"
)

// PerPage is the page size requested from every list endpoint.
const PerPage = 100

// Backoff and wait bounds for the retry engine.
const (
	baseBackoff    = time.Second
	maxBackoff     = 30 * time.Second
	maxWait        = 5 * time.Minute
	fallbackWait   = time.Minute
	rateLimitSlack = time.Second
)

// Service talks to the GitHub API on behalf of the analysis core.
// It implements contract.PRService.
type Service struct {
	gh         *github.Client
	store      contract.CacheStore
	ttl        time.Duration
	maxRetries int
	verbose    bool

	// Injected for deterministic tests.
	sleep  func(time.Duration)
	now    func() time.Time
	jitter func(max time.Duration) time.Duration
}

var _ contract.PRService = (*Service)(nil)

// NewService builds a Service from validated configuration. The cache
// store may be a no-op store when caching is disabled.
func NewService(cfg *contract.Config, store contract.CacheStore) *Service {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Service{
		gh:         github.NewClient(tc),
		store:      store,
		ttl:        cfg.CacheTTL,
		maxRetries: cfg.MaxRetries,
		verbose:    cfg.Verbose,
		sleep:      time.Sleep,
		now:        time.Now,
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

// RateLimitStatus is a snapshot of the core REST rate limit.
type RateLimitStatus struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// CheckRateLimit fetches the current core rate limit. Used before a
// run to warn when the remaining quota looks too small.
func (s *Service) CheckRateLimit(ctx context.Context) (RateLimitStatus, error) {
	limits, _, err := s.gh.RateLimit.Get(ctx)
	if err != nil {
		return RateLimitStatus{}, fmt.Errorf("rate limit check: %w", err)
	}
	core := limits.GetCore()
	return RateLimitStatus{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}
