package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/output_storage"
)

// start resolves tool, spawns it with piped stdio and registers it. The
// returned entry is already tracked by the waiter goroutine.
func (runner *Runner) start(ctx context.Context, tool string, args []string) (*processEntry, error) {
	const op = "spawn"

	if tool == "" {
		return nil, lib.NewError(lib.CategoryValidation, op, "tool is required", nil)
	}

	detection := runner.resolver.Resolve(ctx, tool)
	if !detection.Found {
		return nil, lib.NewError(lib.CategoryBinary, op, tool+" could not be found", lib.ErrNotFound)
	}

	cmd := exec.Command(detection.Path, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.WaitDelay = pipeWaitDelay

	stdout := output_storage.RunNewOutputStorage()
	stderr := output_storage.RunNewOutputStorage()

	// cmd.Stdin is left nil, so it will use /dev/null
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	pe := &processEntry{
		id:      lib.NewID(),
		command: lib.Command{Tool: tool, Path: detection.Path, Args: append([]string(nil), args...)},
		cmd:     cmd,
		state:   lib.ProcessStateRunning,
		stdout:  stdout,
		stderr:  stderr,
		done:    make(chan struct{}),
	}

	runner.log.V(1).Info("starting process", "tool", tool, "path", detection.Path, "args", args)
	if err := cmd.Start(); err != nil {
		stdout.Stop()
		stderr.Stop()
		return nil, lib.NewError(lib.CategoryProcess, op, "could not start "+tool, err)
	}

	pe.pid = cmd.Process.Pid
	pe.start = time.Now()
	runner.register(pe)

	if runner.output != nil {
		go runner.forward(pe, "stdout", stdout)
		go runner.forward(pe, "stderr", stderr)
	}

	go runner.wait(pe)

	runner.log.Info("process started", "tool", tool, "pid", pe.pid, "handle", pe.id)
	return pe, nil
}

// wait is the exit continuation of a process: it records the exit status,
// removes the entry from the registry and only then signals done.
func (runner *Runner) wait(pe *processEntry) {
	err := pe.cmd.Wait()

	code := -1
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code = 0
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	case errors.Is(err, exec.ErrWaitDelay):
		code = pe.cmd.ProcessState.ExitCode()
	default:
		runner.log.Error(err, "waiting for process failed", "handle", pe.id, "pid", pe.pid)
	}

	pe.stdout.Stop()
	pe.stderr.Stop()

	now := time.Now()
	pe.mu.Lock()
	pe.exitCode = &code
	pe.end = &now
	pe.state = lib.ProcessStateStopped
	pe.mu.Unlock()

	runner.unregister(pe.id)
	runner.log.Info("process exited", "tool", pe.command.Tool, "pid", pe.pid, "handle", pe.id, "exitCode", code)
	close(pe.done)
}

// forward relays every output chunk to the output logger, in order.
func (runner *Runner) forward(pe *processEntry, stream string, storage *output_storage.OutputStorage) {
	for chunk := range storage.Subscribe(16) {
		text := strings.TrimRight(string(chunk), "\r\n")
		if text == "" {
			continue
		}
		runner.output.Info(text, "tool", pe.command.Tool, "stream", stream, "handle", pe.id)
	}
}
