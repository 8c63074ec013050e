package testutil

import (
	"context"
	"testing"
	"time"
)

// GetTestContext returns a context bounded by testTimeout and by the test deadline, whichever is sooner.
func GetTestContext(t *testing.T, testTimeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, haveDeadline := t.Deadline()
	testDeadline := time.Now().Add(testTimeout)
	if haveDeadline && deadline.Before(testDeadline) {
		testDeadline = deadline
	}
	return context.WithDeadline(context.Background(), testDeadline)
}
