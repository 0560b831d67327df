package ghapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow keeps rate-limit arithmetic deterministic.
var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newRetryService(maxRetries int) (*Service, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	s := &Service{
		maxRetries: maxRetries,
		ttl:        time.Hour,
		sleep:      func(d time.Duration) { *sleeps = append(*sleeps, d) },
		now:        func() time.Time { return fixedNow },
		jitter:     func(time.Duration) time.Duration { return 0 },
	}
	return s, sleeps
}

func errorResponse(status int) *github.ErrorResponse {
	return &github.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Request:    &http.Request{},
		},
	}
}

func TestExecuteRetriesExhausted(t *testing.T) {
	s, sleeps := newRetryService(3)

	calls := 0
	_, err := execute(context.Background(), s, "op", func() (int, *github.Response, error) {
		calls++
		return 0, nil, errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted after 4 attempts")
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestExecuteTerminalClientError(t *testing.T) {
	s, sleeps := newRetryService(3)

	calls := 0
	_, err := execute(context.Background(), s, "op", func() (int, *github.Response, error) {
		calls++
		return 0, nil, errorResponse(http.StatusNotFound)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

func TestExecuteSucceedsAfterTransientFailure(t *testing.T) {
	s, sleeps := newRetryService(3)

	calls := 0
	got, err := execute(context.Background(), s, "op", func() (int, *github.Response, error) {
		calls++
		if calls < 3 {
			return 0, nil, errorResponse(http.StatusBadGateway)
		}
		return 42, nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
	assert.Len(t, *sleeps, 2)
}

func TestExecuteZeroRetries(t *testing.T) {
	s, sleeps := newRetryService(0)

	calls := 0
	_, err := execute(context.Background(), s, "op", func() (int, *github.Response, error) {
		calls++
		return 0, nil, errorResponse(http.StatusInternalServerError)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

func TestBackoffCapped(t *testing.T) {
	s, _ := newRetryService(3)
	assert.Equal(t, 1*time.Second, s.backoff(0))
	assert.Equal(t, 2*time.Second, s.backoff(1))
	assert.Equal(t, 4*time.Second, s.backoff(2))
	assert.Equal(t, 30*time.Second, s.backoff(10))
}

func TestBackoffJitterBounded(t *testing.T) {
	s, _ := newRetryService(3)
	s.jitter = func(max time.Duration) time.Duration { return max }
	// Jitter adds at most 10% of the base delay.
	assert.Equal(t, 1100*time.Millisecond, s.backoff(0))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		resp *github.Response
		err  error
		want bool
	}{
		{"network failure", nil, errors.New("dial tcp: timeout"), true},
		{"rate limit typed", nil, &github.RateLimitError{}, true},
		{"abuse typed", nil, &github.AbuseRateLimitError{}, true},
		{"server error", nil, errorResponse(http.StatusServiceUnavailable), true},
		{"timeout", nil, errorResponse(http.StatusRequestTimeout), true},
		{"conflict", nil, errorResponse(http.StatusConflict), true},
		{"too many requests", nil, errorResponse(http.StatusTooManyRequests), true},
		{"not found", nil, errorResponse(http.StatusNotFound), false},
		{"unauthorized", nil, errorResponse(http.StatusUnauthorized), false},
		{"unprocessable", nil, errorResponse(http.StatusUnprocessableEntity), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.resp, tt.err))
		})
	}
}

func TestRateLimitWaitFromReset(t *testing.T) {
	err := &github.RateLimitError{
		Rate: github.Rate{Reset: github.Timestamp{Time: fixedNow.Add(60 * time.Second)}},
	}
	limited, wait := rateLimitWait(fixedNow, nil, err)
	assert.True(t, limited)
	assert.Equal(t, 61*time.Second, wait)
}

func TestRateLimitWaitResetInPast(t *testing.T) {
	err := &github.RateLimitError{
		Rate: github.Rate{Reset: github.Timestamp{Time: fixedNow.Add(-10 * time.Second)}},
	}
	limited, wait := rateLimitWait(fixedNow, nil, err)
	assert.True(t, limited)
	assert.Equal(t, 1*time.Second, wait)
}

func TestRateLimitWaitCapped(t *testing.T) {
	err := &github.RateLimitError{
		Rate: github.Rate{Reset: github.Timestamp{Time: fixedNow.Add(600 * time.Second)}},
	}
	limited, wait := rateLimitWait(fixedNow, nil, err)
	assert.True(t, limited)
	assert.Equal(t, 5*time.Minute, wait)
}

func TestRateLimitWaitRetryAfterHint(t *testing.T) {
	after := 30 * time.Second
	limited, wait := rateLimitWait(fixedNow, nil, &github.AbuseRateLimitError{RetryAfter: &after})
	assert.True(t, limited)
	assert.Equal(t, 30*time.Second, wait)
}

func TestRateLimitWaitRetryAfterHeader(t *testing.T) {
	resp := &github.Response{Response: &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"30"}},
	}}
	limited, wait := rateLimitWait(fixedNow, resp, errors.New("429"))
	assert.True(t, limited)
	assert.Equal(t, 30*time.Second, wait)
}

func TestRateLimitWaitFallback(t *testing.T) {
	resp := &github.Response{Response: &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{},
	}}
	limited, wait := rateLimitWait(fixedNow, resp, errors.New("429"))
	assert.True(t, limited)
	assert.Equal(t, time.Minute, wait)
}

func TestRateLimitWaitNotLimited(t *testing.T) {
	limited, _ := rateLimitWait(fixedNow, nil, errors.New("boom"))
	assert.False(t, limited)
}
