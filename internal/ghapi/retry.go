package ghapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/prpulse/prpulse/internal/contract"
)

// execute runs a single API call with retries. A request is retried on
// transport failures, rate limiting and transient server errors, up to
// maxRetries extra attempts. Rate-limit responses wait until the quota
// resets; everything else backs off exponentially with jitter.
func execute[T any](ctx context.Context, s *Service, desc string, call func() (T, *github.Response, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, resp, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(resp, err) {
			return zero, fmt.Errorf("%s: %w", desc, err)
		}
		if attempt == s.maxRetries {
			break
		}

		var wait time.Duration
		if limited, w := rateLimitWait(s.now(), resp, err); limited {
			wait = w
			contract.LogWarn(desc, fmt.Errorf("rate limited, waiting %s before retry %d/%d", wait, attempt+1, s.maxRetries))
		} else {
			wait = s.backoff(attempt)
			contract.LogWarn(desc, fmt.Errorf("transient failure (%v), retrying in %s (%d/%d)", err, wait, attempt+1, s.maxRetries))
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}
		s.sleep(wait)
	}

	return zero, fmt.Errorf("%s: retries exhausted after %d attempts: %w", desc, s.maxRetries+1, lastErr)
}

// backoff returns the exponential delay for a retry attempt, starting
// at one second and capped at thirty, plus up to 10% random jitter.
func (s *Service) backoff(attempt int) time.Duration {
	d := baseBackoff << uint(attempt)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d + s.jitter(d/10)
}

// isRetryable reports whether a failed request is worth repeating.
// Client mistakes (bad auth, missing resources, validation errors) are
// terminal; everything that can heal on its own is retried.
func isRetryable(resp *github.Response, err error) bool {
	switch err.(type) {
	case *github.RateLimitError, *github.AbuseRateLimitError:
		return true
	}

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	} else if er, ok := err.(*github.ErrorResponse); ok && er.Response != nil {
		status = er.Response.StatusCode
	}

	switch {
	case status == 0:
		// No HTTP response at all: network-level failure.
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout, status == http.StatusConflict:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// rateLimitWait derives how long to pause for a rate-limited response.
// Preference order: the typed reset time, a typed retry-after hint,
// the Retry-After header, then a one-minute fallback. The wait is
// always capped at five minutes.
func rateLimitWait(now time.Time, resp *github.Response, err error) (bool, time.Duration) {
	switch e := err.(type) {
	case *github.RateLimitError:
		wait := e.Rate.Reset.Time.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return true, capWait(wait + rateLimitSlack)
	case *github.AbuseRateLimitError:
		if e.RetryAfter != nil {
			return true, capWait(*e.RetryAfter)
		}
		return true, fallbackWait
	}

	if resp == nil || resp.Response == nil || resp.StatusCode != http.StatusTooManyRequests {
		return false, 0
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			return true, capWait(time.Duration(secs) * time.Second)
		}
	}
	return true, fallbackWait
}

func capWait(d time.Duration) time.Duration {
	if d > maxWait {
		return maxWait
	}
	return d
}
