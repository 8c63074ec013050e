package runner

import (
	"context"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// RunCommand runs a short-lived tool invocation to completion and settles with
// its exit code and accumulated output. Spawn-level failures settle in the same
// shape with Success=false and ExitCode=-1. If ctx ends first, the process is
// terminated and the result reports the context error.
func (runner *Runner) RunCommand(ctx context.Context, tool string, args ...string) lib.CommandResult {
	pe, err := runner.start(ctx, tool, args)
	if err != nil {
		return lib.CommandResult{Success: false, ExitCode: -1, Err: err}
	}

	select {
	case <-pe.done:
	case <-ctx.Done():
		if stopErr := runner.terminate(context.Background(), pe, DefaultCleanupGrace); stopErr != nil {
			runner.log.Error(stopErr, "could not terminate cancelled command", "tool", tool, "handle", pe.id)
		}
		return lib.CommandResult{
			Success:  false,
			Stdout:   pe.stdout.String(),
			Stderr:   pe.stderr.String(),
			ExitCode: -1,
			Err:      lib.NewError(lib.CategoryProcess, "run "+tool, "command cancelled", ctx.Err()),
		}
	}

	status := pe.status()
	code := -1
	if status.ExitCode != nil {
		code = *status.ExitCode
	}
	return lib.CommandResult{
		Success:  code == 0,
		Stdout:   pe.stdout.String(),
		Stderr:   pe.stderr.String(),
		ExitCode: code,
	}
}
