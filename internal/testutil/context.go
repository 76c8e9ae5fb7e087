package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout is used when a helper is given a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// budget clamps timeout to leave a second before the test binary's deadline.
func budget(t testing.TB, timeout time.Duration) time.Duration {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	withDeadline, ok := t.(interface{ Deadline() (time.Time, bool) })
	if !ok {
		return timeout
	}
	deadline, ok := withDeadline.Deadline()
	if !ok {
		return timeout
	}
	return max(min(timeout, time.Until(deadline)-time.Second), time.Millisecond)
}

// Context returns a context canceled when the test ends or the budget runs out.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), budget(t, timeout))
	t.Cleanup(cancel)
	return ctx
}
