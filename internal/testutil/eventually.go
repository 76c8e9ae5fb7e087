package testutil

import (
	"testing"
	"time"
)

// Eventually polls cond every interval and fails the test with the
// formatted message if it is still false after timeout.
func Eventually(t testing.TB, timeout, interval time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			if format == "" {
				format = "condition not met within %s"
				args = []any{timeout}
			}
			t.Fatalf(format, args...)
			return
		}
		time.Sleep(interval)
	}
}
