// Package engine wires the resolver, acquirer, process supervisor and both
// state machines into the surface consumed by the UI and config collaborator.
//
// Every public operation reports failures as a categorized error and recovers
// panics at the boundary, so callers never see a fault they did not ask for.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/acquirer"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/bridge"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/mirror"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/resolver"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/runner"
)

type Engine struct {
	resolver *resolver.Resolver
	acquirer *acquirer.Acquirer
	runner   *runner.Runner
	bridge   *bridge.Machine
	mirror   *mirror.Machine

	notify lib.Logger
	log    logr.Logger

	cleanupOnce sync.Once
	closed      atomic.Bool
	cleanupErr  error
}

type settings struct {
	acquirer        *acquirer.Config
	resolverOptions []resolver.Option
	runnerOptions   []runner.Option
	bridgeOptions   []bridge.Option
	mirrorOptions   []mirror.Option
}

type Option func(*settings)

// WithAcquirer enables EnsureBinaries. The cache root is shared with the resolver.
func WithAcquirer(config acquirer.Config) Option {
	return func(s *settings) { s.acquirer = &config }
}

func WithResolverOptions(opts ...resolver.Option) Option {
	return func(s *settings) { s.resolverOptions = append(s.resolverOptions, opts...) }
}

func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *settings) { s.runnerOptions = append(s.runnerOptions, opts...) }
}

func WithBridgeOptions(opts ...bridge.Option) Option {
	return func(s *settings) { s.bridgeOptions = append(s.bridgeOptions, opts...) }
}

func WithMirrorOptions(opts ...mirror.Option) Option {
	return func(s *settings) { s.mirrorOptions = append(s.mirrorOptions, opts...) }
}

// New builds an engine. Both state machines start in their initial shape:
// Disconnected and Stopped.
func New(config lib.ConfigProvider, notify lib.Logger, log logr.Logger, opts ...Option) *Engine {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	log = log.WithName("engine")

	resolverOptions := s.resolverOptions
	if s.acquirer != nil && s.acquirer.CacheRoot != "" {
		resolverOptions = append([]resolver.Option{resolver.WithCacheRoot(s.acquirer.CacheRoot)}, resolverOptions...)
	}
	res := resolver.New(config, log, resolverOptions...)

	runnerOptions := append([]runner.Option{runner.WithOutputLogger(notify)}, s.runnerOptions...)
	r := runner.NewRunner(res, log, runnerOptions...)

	e := &Engine{
		resolver: res,
		runner:   r,
		bridge:   bridge.New(r, config, notify, log, s.bridgeOptions...),
		mirror:   mirror.New(r, notify, log, s.mirrorOptions...),
		notify:   notify,
		log:      log,
	}
	if s.acquirer != nil {
		e.acquirer = acquirer.New(*s.acquirer, log)
	}
	return e
}

// GetConnectionState returns an immutable snapshot of the connection.
func (e *Engine) GetConnectionState() lib.ConnectionState {
	return e.bridge.State()
}

// GetMirroringState returns an immutable snapshot of the mirroring session.
func (e *Engine) GetMirroringState() lib.MirroringState {
	return e.mirror.State()
}

// MirrorProcessStatus reports the live mirroring process, if any.
func (e *Engine) MirrorProcessStatus() (lib.ProcessStatus, bool) {
	return e.mirror.ProcessStatus()
}

func (e *Engine) Connect(ctx context.Context, ip, port string) (err error) {
	defer e.recoverPanic("connect", &err)
	if err := e.checkOpen("connect"); err != nil {
		return err
	}
	return e.bridge.Connect(ctx, ip, port)
}

func (e *Engine) Disconnect(ctx context.Context) (err error) {
	defer e.recoverPanic("disconnect", &err)
	if err := e.checkOpen("disconnect"); err != nil {
		return err
	}
	return e.bridge.Disconnect(ctx)
}

// CheckConnectivity polls the device list and reconciles the connection state.
func (e *Engine) CheckConnectivity(ctx context.Context) (connected bool, err error) {
	defer e.recoverPanic("check connectivity", &err)
	if err := e.checkOpen("check connectivity"); err != nil {
		return false, err
	}
	return e.bridge.CheckConnectivity(ctx)
}

func (e *Engine) Devices(ctx context.Context) (devices []lib.Device, err error) {
	defer e.recoverPanic("list devices", &err)
	if err := e.checkOpen("list devices"); err != nil {
		return nil, err
	}
	return e.bridge.Devices(ctx)
}

// Launch starts mirroring. When a device is connected and opts names no
// serial, the connected target is used.
func (e *Engine) Launch(ctx context.Context, opts lib.MirrorOptions) (err error) {
	defer e.recoverPanic("launch", &err)
	if err := e.checkOpen("launch"); err != nil {
		return err
	}
	return e.mirror.Launch(ctx, e.withSerial(opts))
}

func (e *Engine) LaunchScreenOff(ctx context.Context, opts lib.MirrorOptions) (err error) {
	defer e.recoverPanic("launch", &err)
	if err := e.checkOpen("launch"); err != nil {
		return err
	}
	return e.mirror.LaunchScreenOff(ctx, e.withSerial(opts))
}

func (e *Engine) Stop(ctx context.Context) (err error) {
	defer e.recoverPanic("stop", &err)
	return e.mirror.Stop(ctx)
}

func (e *Engine) withSerial(opts lib.MirrorOptions) lib.MirrorOptions {
	if opts.Serial != "" {
		return opts
	}
	if st := e.bridge.State(); st.Connected {
		opts.Serial = st.Target().Address()
	}
	return opts
}

// Cleanup stops the mirroring session and terminates every managed process.
// It runs exactly once; later calls return lib.ErrCleanedUp.
func (e *Engine) Cleanup(ctx context.Context) (err error) {
	defer e.recoverPanic("cleanup", &err)

	ran := false
	e.cleanupOnce.Do(func() {
		ran = true
		e.closed.Store(true)
		e.log.Info("cleaning up")

		var errs []error
		if err := e.mirror.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := e.runner.Cleanup(ctx, runner.DefaultCleanupGrace); err != nil {
			errs = append(errs, err)
		}
		e.cleanupErr = errors.Join(errs...)
		if e.cleanupErr != nil {
			e.log.Error(e.cleanupErr, "cleanup finished with errors")
		}
	})
	if !ran {
		return lib.NewError(lib.CategorySystem, "cleanup", "", lib.ErrCleanedUp)
	}
	return e.cleanupErr
}

// Len returns the number of live managed processes.
func (e *Engine) Len() int {
	return e.runner.Len()
}

func (e *Engine) checkOpen(op string) error {
	if e.closed.Load() {
		return lib.NewError(lib.CategorySystem, op, "", lib.ErrCleanedUp)
	}
	return nil
}

func (e *Engine) recoverPanic(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	err := lib.NewError(lib.CategorySystem, op, "internal error", fmt.Errorf("panic: %v", r))
	e.log.Error(err, "recovered panic", "stack", string(debug.Stack()))
	e.notify.ShowError("Internal error during "+op, err)
	*errp = err
}
