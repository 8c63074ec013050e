// Package runner supervises the external tool processes.
//
// Every process is spawned through the Runner, inserted into its registry at
// spawn time and removed by its own waiter goroutine once the OS reports the
// exit. Short-lived invocations go through RunCommand, long-running sessions
// through LaunchLongRunning; both share the termination protocol in Stop and
// Cleanup.
package runner

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/output_storage"
)

const (
	// DefaultStartupTimeout bounds how long a long-running launch waits for output.
	DefaultStartupTimeout = 5 * time.Second
	// DefaultStopGrace is the graceful-termination window of a single session.
	DefaultStopGrace = 3 * time.Second
	// DefaultCleanupGrace is the per-process graceful window during Cleanup.
	DefaultCleanupGrace = 2 * time.Second

	// Bounds how long Wait keeps reading pipes held open by grandchildren after exit.
	pipeWaitDelay = 2 * time.Second
)

// Resolver maps a tool name to an executable.
type Resolver interface {
	Resolve(ctx context.Context, tool string) lib.DetectionResult
}

// Runner manages processes started by this library.
type Runner struct {
	mu        sync.RWMutex
	processes map[string]*processEntry

	resolver       Resolver
	output         lib.Logger
	log            logr.Logger
	startupTimeout time.Duration
}

type processEntry struct {
	id      string
	command lib.Command
	cmd     *exec.Cmd
	pid     int

	// status fields
	mu       sync.RWMutex
	state    lib.ProcessState
	exitCode *int
	start    time.Time
	end      *time.Time

	stdout *output_storage.OutputStorage
	stderr *output_storage.OutputStorage

	// done is closed by the waiter after the entry left the registry.
	done     chan struct{}
	stopping atomic.Bool
}

type Option func(*Runner)

// WithStartupTimeout overrides DefaultStartupTimeout.
func WithStartupTimeout(d time.Duration) Option {
	return func(r *Runner) { r.startupTimeout = d }
}

// WithOutputLogger forwards every stdout/stderr chunk to logger.
func WithOutputLogger(logger lib.Logger) Option {
	return func(r *Runner) { r.output = logger }
}

// NewRunner creates a new Runner.
func NewRunner(resolver Resolver, log logr.Logger, opts ...Option) *Runner {
	r := &Runner{
		processes:      make(map[string]*processEntry),
		resolver:       resolver,
		log:            log.WithName("runner"),
		startupTimeout: DefaultStartupTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of live managed processes.
func (runner *Runner) Len() int {
	runner.mu.RLock()
	defer runner.mu.RUnlock()
	return len(runner.processes)
}

func (runner *Runner) register(pe *processEntry) {
	runner.mu.Lock()
	runner.processes[pe.id] = pe
	runner.mu.Unlock()
}

func (runner *Runner) unregister(id string) {
	runner.mu.Lock()
	delete(runner.processes, id)
	runner.mu.Unlock()
}

func (runner *Runner) snapshot() []*processEntry {
	runner.mu.RLock()
	defer runner.mu.RUnlock()
	entries := make([]*processEntry, 0, len(runner.processes))
	for _, pe := range runner.processes {
		entries = append(entries, pe)
	}
	return entries
}
