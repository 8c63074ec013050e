package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/acquirer"
)

// Binaries resolves every tool. Results come from the resolver cache when present.
func (e *Engine) Binaries(ctx context.Context) (results []lib.DetectionResult, err error) {
	defer e.recoverPanic("binaries", &err)

	results = make([]lib.DetectionResult, len(lib.Tools))
	g, gctx := errgroup.WithContext(ctx)
	for i, tool := range lib.Tools {
		g.Go(func() error {
			results[i] = e.resolver.Resolve(gctx, tool)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RefreshBinaries drops cached detection results.
func (e *Engine) RefreshBinaries() {
	e.resolver.Refresh()
}

// EnsureBinaries downloads every tool the resolver cannot find and refreshes
// the detection cache afterwards. The error joins every per-tool failure.
func (e *Engine) EnsureBinaries(ctx context.Context, progress lib.ProgressFunc) (results []acquirer.Result, err error) {
	const op = "ensure binaries"
	defer e.recoverPanic(op, &err)

	if e.acquirer == nil {
		return nil, lib.NewError(lib.CategoryBinary, op, "binary downloads are not configured", nil)
	}

	detected, err := e.Binaries(ctx)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, d := range detected {
		if !d.Found {
			missing = append(missing, d.Tool)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	e.log.Info("acquiring missing binaries", "tools", missing)
	results = e.acquirer.Acquire(ctx, missing, progress)
	e.resolver.Refresh()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			e.notify.ShowError("Could not download "+r.Tool, r.Err)
			continue
		}
		if !r.Skipped {
			e.notify.ShowSuccess("Downloaded " + r.Tool)
		}
	}
	return results, errors.Join(errs...)
}
