package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Cleanup runs the termination protocol against every live managed process,
// regardless of which caller spawned it, and returns once all of them exited.
// The first termination error is returned after every process was handled.
func (runner *Runner) Cleanup(ctx context.Context, grace time.Duration) error {
	entries := runner.snapshot()
	if len(entries) == 0 {
		return nil
	}

	runner.log.Info("terminating managed processes", "count", len(entries))

	var g errgroup.Group
	for _, pe := range entries {
		g.Go(func() error {
			return runner.terminate(ctx, pe, grace)
		})
	}
	return g.Wait()
}
