// Package bridge models the device-bridge link as a two-state machine:
// Disconnected (initial) and Connected. Every operation runs the bridge tool
// to completion and lands directly in one of the two states.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/classify"
)

// CommandRunner runs a short-lived tool invocation to completion.
type CommandRunner interface {
	RunCommand(ctx context.Context, tool string, args ...string) lib.CommandResult
}

// Machine owns the ConnectionState. Operations are serialized.
type Machine struct {
	mu    sync.Mutex
	state lib.ConnectionState

	runner   CommandRunner
	config   lib.ConfigProvider
	notify   lib.Logger
	log      logr.Logger
	failures classify.Rules[string]
	now      func() time.Time
}

type Option func(*Machine)

// WithFailureRules replaces FailureRules.
func WithFailureRules(rules classify.Rules[string]) Option {
	return func(m *Machine) { m.failures = rules }
}

// WithClock overrides time.Now for connection timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func New(runner CommandRunner, config lib.ConfigProvider, notify lib.Logger, log logr.Logger, opts ...Option) *Machine {
	m := &Machine{
		runner:   runner,
		config:   config,
		notify:   notify,
		log:      log.WithName("bridge"),
		failures: FailureRules,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the connection state.
func (m *Machine) State() lib.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect validates ip and port, then runs the connect verb against
// "ip:port". A nil error means the machine is Connected to that target.
func (m *Machine) Connect(ctx context.Context, ip, port string) error {
	const op = "connect"

	ip = strings.TrimSpace(ip)
	port = strings.TrimSpace(port)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ValidateTarget(ip, port); err != nil {
		// A live link stays as it is; only a Disconnected snapshot records the reason.
		if !m.state.Connected {
			m.state.ConnectionError = lib.Message(err)
		}
		m.notify.ShowError(lib.Message(err), nil)
		return err
	}

	target := lib.Target{IP: ip, Port: port}
	m.log.Info("connecting", "target", target.Address())

	res := m.runner.RunCommand(ctx, lib.ToolBridge, "connect", target.Address())
	if res.Err == nil && res.Success {
		if _, ok := SuccessRules.Classify(res.Stdout); ok {
			m.state = lib.ConnectionState{
				Connected:     true,
				DeviceIP:      ip,
				DevicePort:    port,
				LastConnected: m.now(),
			}
			m.notify.ShowSuccess("Connected to " + target.Address())
			return nil
		}
	}

	err := m.failure(op, res)
	m.state = lib.ConnectionState{ConnectionError: lib.Message(err)}
	m.log.Info("connect failed", "target", target.Address(), "exitCode", res.ExitCode, "reason", lib.Message(err))
	m.notify.ShowError("Could not connect to "+target.Address(), err)
	return err
}

// Disconnect runs the disconnect verb against the stored target. It is a
// no-op when already Disconnected. The machine ends Disconnected either way;
// a failure is retained in the snapshot and returned.
func (m *Machine) Disconnect(ctx context.Context) error {
	const op = "disconnect"

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Connected {
		return nil
	}

	target := m.state.Target()
	res := m.runner.RunCommand(ctx, lib.ToolBridge, "disconnect", target.Address())
	if res.Err == nil && res.Success {
		m.state = lib.ConnectionState{}
		m.notify.ShowSuccess("Disconnected from " + target.Address())
		return nil
	}

	err := m.failure(op, res)
	m.state = lib.ConnectionState{ConnectionError: lib.Message(err)}
	m.notify.ShowWarning("Disconnect from "+target.Address()+" reported an error", err)
	return err
}

// CheckConnectivity lists devices and reconciles the state with what the
// bridge reports. While Disconnected, the last known target and then the
// configured default target are adopted if they are listed as ready.
func (m *Machine) CheckConnectivity(ctx context.Context) (bool, error) {
	const op = "check connectivity"

	m.mu.Lock()
	defer m.mu.Unlock()

	devices, err := m.devices(ctx, op)
	if err != nil {
		m.state.ConnectionError = lib.Message(err)
		return m.state.Connected, err
	}

	if m.state.Connected {
		target := m.state.Target()
		if findReady(devices, target.Address()) {
			return true, nil
		}
		m.log.Info("device no longer listed as ready", "target", target.Address())
		m.state = lib.ConnectionState{
			DeviceIP:        target.IP,
			DevicePort:      target.Port,
			LastConnected:   m.state.LastConnected,
			ConnectionError: fmt.Sprintf("Device %s is no longer connected", target.Address()),
		}
		m.notify.ShowWarning(m.state.ConnectionError, nil)
		return false, nil
	}

	for _, target := range m.candidates() {
		if !findReady(devices, target.Address()) {
			continue
		}
		m.log.Info("adopting connected device", "target", target.Address())
		m.state = lib.ConnectionState{
			Connected:     true,
			DeviceIP:      target.IP,
			DevicePort:    target.Port,
			LastConnected: m.now(),
		}
		m.notify.Info("Device " + target.Address() + " is connected")
		return true, nil
	}
	return false, nil
}

// Devices returns the parsed device list.
func (m *Machine) Devices(ctx context.Context) ([]lib.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices(ctx, "list devices")
}

func (m *Machine) devices(ctx context.Context, op string) ([]lib.Device, error) {
	res := m.runner.RunCommand(ctx, lib.ToolBridge, "devices")
	if res.Err != nil {
		return nil, res.Err
	}
	if !res.Success {
		return nil, m.failure(op, res)
	}
	return ParseDevices(res.Stdout), nil
}

func (m *Machine) candidates() []lib.Target {
	var targets []lib.Target
	last := m.state.Target()
	if ValidateTarget(last.IP, last.Port) == nil {
		targets = append(targets, last)
	}
	if m.config != nil {
		def := m.config.DefaultTarget()
		if def != last && ValidateTarget(def.IP, def.Port) == nil {
			targets = append(targets, def)
		}
	}
	return targets
}

// failure turns an unsuccessful result into a categorized error. Spawn
// failures keep their own category.
func (m *Machine) failure(op string, res lib.CommandResult) error {
	if res.Err != nil {
		return res.Err
	}
	raw := strings.TrimSpace(res.Combined())
	msg, ok := m.failures.Classify(raw)
	if !ok {
		msg = raw
		if msg == "" {
			msg = genericFailure
		}
	}
	var detail error
	if raw != "" {
		detail = errors.New(raw)
	} else {
		detail = fmt.Errorf("exit code %d", res.ExitCode)
	}
	return lib.NewError(lib.CategoryConnection, op, msg, detail)
}
