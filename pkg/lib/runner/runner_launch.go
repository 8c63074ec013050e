package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// Handle identifies a long-running process in the registry.
type Handle struct {
	ID        string
	Pid       int
	StartTime time.Time
	Command   lib.Command

	pe *processEntry
}

// Done is closed once the process exited and left the registry.
func (h *Handle) Done() <-chan struct{} {
	return h.pe.done
}

// Status returns the process status; it stays readable after exit.
func (h *Handle) Status() lib.ProcessStatus {
	return h.pe.status()
}

// Stderr returns the error output accumulated so far.
func (h *Handle) Stderr() string {
	return h.pe.stderr.String()
}

// LaunchLongRunning spawns a long-running tool and settles on the first of:
// any output byte (the tool is alive), an exit before any output, the startup
// timeout, or ctx ending. In every failure case the process is gone when the
// call returns: a process that stays silent past the timeout is terminated
// rather than adopted later.
func (runner *Runner) LaunchLongRunning(ctx context.Context, tool string, args ...string) (*Handle, error) {
	op := "launch " + tool

	pe, err := runner.start(ctx, tool, args)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(runner.startupTimeout)
	defer timer.Stop()

	select {
	case <-pe.stdout.FirstWrite():
	case <-pe.stderr.FirstWrite():
	case <-pe.done:
		return nil, runner.prematureExit(op, pe)
	case <-timer.C:
		runner.log.Info("no output before startup timeout, terminating", "tool", tool, "handle", pe.id, "timeout", runner.startupTimeout)
		if stopErr := runner.terminate(context.Background(), pe, DefaultStopGrace); stopErr != nil {
			runner.log.Error(stopErr, "could not terminate silent process", "handle", pe.id)
		}
		return nil, lib.NewError(lib.CategoryProcess, op, fmt.Sprintf("no output within %s", runner.startupTimeout), lib.ErrStartupTimeout)
	case <-ctx.Done():
		if stopErr := runner.terminate(context.Background(), pe, DefaultStopGrace); stopErr != nil {
			runner.log.Error(stopErr, "could not terminate cancelled launch", "handle", pe.id)
		}
		return nil, lib.NewError(lib.CategoryProcess, op, "launch cancelled", ctx.Err())
	}

	// Output and exit can race; a tool that already failed is not alive.
	select {
	case <-pe.done:
		if st := pe.status(); st.ExitCode != nil && *st.ExitCode != 0 {
			return nil, runner.prematureExit(op, pe)
		}
	default:
	}

	return pe.handle(), nil
}

func (runner *Runner) prematureExit(op string, pe *processEntry) error {
	st := pe.status()
	code := -1
	if st.ExitCode != nil {
		code = *st.ExitCode
	}
	msg := fmt.Sprintf("exited with code %d", code)
	if stderr := strings.TrimSpace(pe.stderr.String()); stderr != "" {
		msg += ": " + stderr
	}
	return lib.NewError(lib.CategoryProcess, op, msg, lib.ErrPrematureExit)
}
