package runner

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// StopResult returns process info and its final status after Stop.
type StopResult struct {
	Command *lib.Command
	Status  *lib.ProcessStatus
}

// Stop runs the termination protocol against the process identified by id:
// a graceful terminate signal, up to grace for the process to exit on its
// own, then a forced kill. It returns only once the OS reported the exit.
// A process that already left the registry yields os.ErrNotExist.
func (runner *Runner) Stop(ctx context.Context, id string, grace time.Duration) (*StopResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	if err := runner.terminate(ctx, pe, grace); err != nil {
		return nil, err
	}
	st := pe.status()
	return &StopResult{Command: &pe.command, Status: &st}, nil
}

func (runner *Runner) terminate(ctx context.Context, pe *processEntry, grace time.Duration) error {
	select {
	case <-pe.done:
		return nil
	default:
	}

	if !pe.stopping.CompareAndSwap(false, true) {
		// Another caller drives the protocol; just wait for the exit.
		return waitExit(ctx, pe)
	}

	log := runner.log.WithValues("tool", pe.command.Tool, "pid", pe.pid, "handle", pe.id)

	err := terminateProcess(pe.cmd.Process)
	switch {
	case errors.Is(err, os.ErrProcessDone):
		return waitExit(ctx, pe)
	case err != nil:
		log.Error(err, "could not send terminate signal, escalating")
	default:
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-pe.done:
			log.V(1).Info("process stopped by terminate signal")
			return nil
		case <-timer.C:
			log.Info("process did not exit in time, killing", "grace", grace)
		case <-ctx.Done():
			log.Info("stop cancelled, killing")
		}
	}

	if err := runner.kill(ctx, pe, grace); err != nil {
		return lib.NewError(lib.CategoryProcess, "stop "+pe.command.Tool, "could not kill process", err)
	}
	return waitExit(context.Background(), pe)
}

// kill sends the forced kill signal, retrying transient failures until grace elapses.
func (runner *Runner) kill(ctx context.Context, pe *processEntry, grace time.Duration) error {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(20*time.Millisecond),
		backoff.WithMaxInterval(200*time.Millisecond),
		backoff.WithMaxElapsedTime(grace),
	)
	return backoff.Retry(func() error {
		err := killProcess(pe.cmd.Process)
		if err == nil || errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		select {
		case <-pe.done:
			return nil
		default:
			return err
		}
	}, backoff.WithContext(b, context.WithoutCancel(ctx)))
}

func waitExit(ctx context.Context, pe *processEntry) error {
	select {
	case <-pe.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
