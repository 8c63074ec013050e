// Package mirror models the mirroring session: Stopped, Starting, Running
// and Stopping, with at most one session at a time.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/runner"
)

// Launcher spawns and stops long-running tool processes.
type Launcher interface {
	LaunchLongRunning(ctx context.Context, tool string, args ...string) (*runner.Handle, error)
	Stop(ctx context.Context, id string, grace time.Duration) (*runner.StopResult, error)
}

// Machine owns the MirroringState.
type Machine struct {
	mu    sync.Mutex
	state lib.MirroringState
	// launching is the single-flight admission marker; it is set before the
	// Running check returns and cleared once the launch settled.
	launching bool
	stopping  bool
	handle    *runner.Handle

	launcher Launcher
	notify   lib.Logger
	log      logr.Logger
	grace    time.Duration
}

type Option func(*Machine)

// WithStopGrace overrides runner.DefaultStopGrace.
func WithStopGrace(d time.Duration) Option {
	return func(m *Machine) { m.grace = d }
}

func New(launcher Launcher, notify lib.Logger, log logr.Logger, opts ...Option) *Machine {
	m := &Machine{
		launcher: launcher,
		notify:   notify,
		log:      log.WithName("mirror"),
		grace:    runner.DefaultStopGrace,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the mirroring state.
func (m *Machine) State() lib.MirroringState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ProcessStatus reports the status of the live mirroring process, if any.
func (m *Machine) ProcessStatus() (lib.ProcessStatus, bool) {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil {
		return lib.ProcessStatus{}, false
	}
	return h.Status(), true
}

// Launch starts a mirroring session. It fails with lib.ErrAlreadyRunning
// while another session is running or starting, and spawns nothing then.
func (m *Machine) Launch(ctx context.Context, opts lib.MirrorOptions) error {
	const op = "launch"

	m.mu.Lock()
	if m.state.Running || m.launching || m.stopping {
		m.mu.Unlock()
		return lib.NewError(lib.CategoryProcess, op, "a mirroring session is already active", lib.ErrAlreadyRunning)
	}
	if err := ValidateOptions(opts); err != nil {
		m.state.LastError = lib.Message(err)
		m.mu.Unlock()
		m.notify.ShowError(lib.Message(err), nil)
		return err
	}
	m.launching = true
	m.mu.Unlock()

	args := BuildArgs(opts)
	m.log.Info("starting mirroring", "args", args)
	h, err := m.launcher.LaunchLongRunning(ctx, lib.ToolMirror, args...)

	m.mu.Lock()
	m.launching = false
	if err != nil {
		m.state = lib.MirroringState{LastError: lib.Message(err)}
		m.mu.Unlock()
		m.notify.ShowError("Could not start mirroring", err)
		return err
	}
	m.handle = h
	m.state = lib.MirroringState{
		Running:   true,
		StartTime: h.StartTime,
		Options:   opts,
		HandleID:  h.ID,
		Pid:       h.Pid,
	}
	m.mu.Unlock()

	go m.watch(h)

	m.notify.ShowSuccess("Mirroring started")
	return nil
}

// LaunchScreenOff is Launch with the device screen turned off.
func (m *Machine) LaunchScreenOff(ctx context.Context, opts lib.MirrorOptions) error {
	opts.ScreenOff = true
	return m.Launch(ctx, opts)
}

// Stop ends the running session and returns once the OS reported the exit.
// It succeeds immediately, sending nothing, when no session is running.
func (m *Machine) Stop(ctx context.Context) error {
	const op = "stop"

	m.mu.Lock()
	h := m.handle
	if !m.state.Running || h == nil {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	m.mu.Unlock()

	_, err := m.launcher.Stop(ctx, h.ID, m.grace)
	if errors.Is(err, os.ErrNotExist) {
		// Already exited and unregistered.
		err = nil
	}

	m.mu.Lock()
	m.stopping = false
	if err != nil {
		m.state.LastError = lib.Message(err)
		m.mu.Unlock()
		m.notify.ShowError("Could not stop mirroring", err)
		if lib.CategoryOf(err) == lib.CategorySystem {
			err = lib.NewError(lib.CategoryProcess, op, "could not stop mirroring", err)
		}
		return err
	}
	if m.handle == h {
		m.handle = nil
		m.state = lib.MirroringState{}
	}
	m.mu.Unlock()

	m.notify.ShowSuccess("Mirroring stopped")
	return nil
}

// watch flips the session to Stopped when the process exits on its own.
func (m *Machine) watch(h *runner.Handle) {
	<-h.Done()

	m.mu.Lock()
	if m.handle != h {
		m.mu.Unlock()
		return
	}
	m.handle = nil
	if m.stopping {
		m.state = lib.MirroringState{}
		m.mu.Unlock()
		return
	}
	st := h.Status()
	code := -1
	if st.ExitCode != nil {
		code = *st.ExitCode
	}
	m.state = lib.MirroringState{LastError: fmt.Sprintf("mirroring exited unexpectedly with code %d", code)}
	msg := m.state.LastError
	m.mu.Unlock()

	m.log.Info("mirroring process exited", "handle", h.ID, "exitCode", code)
	m.notify.ShowWarning("Mirroring session ended", errors.New(msg))
}
