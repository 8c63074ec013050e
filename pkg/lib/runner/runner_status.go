package runner

import (
	"os"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// Lookup returns a handle for a registered process. Processes that already
// exited have left the registry and yield os.ErrNotExist.
func (runner *Runner) Lookup(id string) (*Handle, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	return pe.handle(), nil
}

func (runner *Runner) getProcess(id string) (*processEntry, error) {
	runner.mu.RLock()
	defer runner.mu.RUnlock()
	if pe, ok := runner.processes[id]; ok {
		return pe, nil
	}
	return nil, os.ErrNotExist
}

// status copies the status so callers never share the entry's pointers.
func (pe *processEntry) status() lib.ProcessStatus {
	pe.mu.RLock()
	defer pe.mu.RUnlock()

	st := lib.ProcessStatus{State: pe.state, Pid: pe.pid, StartTime: pe.start}
	if pe.exitCode != nil {
		code := *pe.exitCode
		st.ExitCode = &code
	}
	if pe.end != nil {
		end := *pe.end
		st.EndTime = &end
	}
	return st
}

func (pe *processEntry) handle() *Handle {
	return &Handle{ID: pe.id, Pid: pe.pid, StartTime: pe.start, Command: pe.command, pe: pe}
}
