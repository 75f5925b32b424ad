package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
	sleeper  func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 4, base: time.Second, max: 10 * time.Second}
}

// do runs call until it succeeds, fails permanently or runs out of attempts.
func (p retryPolicy) do(ctx context.Context, call func() error) error {
	attempts := max(p.attempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if attempt == attempts || !retryable(ctx, err) {
			break
		}
		if err := p.wait(ctx, p.delay(err, attempt)); err != nil {
			return err
		}
	}
	if attempts > 1 && retryable(ctx, err) {
		return fmt.Errorf("llm complete: failed after %d attempts: %w", attempts, err)
	}
	return err
}

// retryable reports whether err is transient: empty replies, timeouts,
// 408, 429 and 5xx.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (p retryPolicy) delay(err error, attempt int) time.Duration {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return min(statusErr.RetryAfter, p.ceiling())
	}
	return p.backoffDelay(attempt)
}

// backoffDelay is base * 2^(attempt-1), capped.
func (p retryPolicy) backoffDelay(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt && delay < p.ceiling(); i++ {
		delay *= 2
	}
	return min(delay, p.ceiling())
}

func (p retryPolicy) ceiling() time.Duration {
	if p.max > 0 {
		return p.max
	}
	return defaultRetryPolicy().max
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}
