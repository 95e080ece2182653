package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 2 * time.Second
	defaultPageDelay   = 1 * time.Second
)

// ErrTerminalStatus marks an HTTP status that must not be retried:
// 401 (bad credentials), 403 (missing credentials), 404 (unknown resource).
// The fetch unit that hit it is abandoned immediately.
var ErrTerminalStatus = errors.New("terminal status")

// ErrUnrecognizedShape is returned when an API response body does not match
// any known layout. The fetch unit is abandoned without retry.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// statusError carries the HTTP status of a failed request so the retry loop
// can distinguish terminal statuses from transient ones.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (e *statusError) Is(target error) bool {
	if target != ErrTerminalStatus {
		return false
	}
	switch e.code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// withRetry runs fn up to maxAttempts times, sleeping delay between attempts.
// Terminal statuses and unrecognized response shapes abort immediately.
// Context cancellation also aborts.
func withRetry(ctx context.Context, maxAttempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrTerminalStatus) || errors.Is(lastErr, ErrUnrecognizedShape) {
			return lastErr
		}
		if attempt < maxAttempts {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
