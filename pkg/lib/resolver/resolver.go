// Package resolver locates the external tool binaries.
//
// Resolution walks a fixed priority chain and the first hit wins:
// configured override, cached result, PATH lookup, a copy previously fetched
// into the binary cache, then a per-OS list of common install directories.
package resolver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/platform"
)

// Resolver resolves tool names to executable paths and caches the results
// until Refresh is called.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]lib.DetectionResult

	config     lib.ConfigProvider
	platform   platform.Platform
	cacheRoot  string
	commonDirs []string
	log        logr.Logger

	// Filesystem and process hooks, replaced in tests.
	lookPath     func(file string) (string, error)
	stat         func(name string) (os.FileInfo, error)
	isExecutable func(path string) bool
	chmod        func(path string) error
	probeVersion func(ctx context.Context, path string) (string, error)
}

type Option func(*Resolver)

// WithCacheRoot sets the root of the downloaded binary cache.
func WithCacheRoot(root string) Option {
	return func(r *Resolver) { r.cacheRoot = root }
}

// WithCommonDirs replaces the per-OS list of common install directories.
func WithCommonDirs(dirs ...string) Option {
	return func(r *Resolver) { r.commonDirs = dirs }
}

// WithPlatform overrides the host platform.
func WithPlatform(p platform.Platform) Option {
	return func(r *Resolver) { r.platform = p }
}

// WithLookPath replaces the PATH lookup.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(r *Resolver) { r.lookPath = lookPath }
}

// New creates a Resolver. config may be nil when no overrides are configured.
func New(config lib.ConfigProvider, log logr.Logger, opts ...Option) *Resolver {
	p := platform.Current()
	r := &Resolver{
		cache:        make(map[string]lib.DetectionResult),
		config:       config,
		platform:     p,
		commonDirs:   p.CommonInstallDirs(),
		log:          log.WithName("resolver"),
		lookPath:     exec.LookPath,
		stat:         os.Stat,
		isExecutable: platform.IsExecutable,
		chmod:        platform.MakeExecutable,
		probeVersion: probeVersion,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheRoot == "" {
		if root, err := platform.DefaultCacheRoot(); err == nil {
			r.cacheRoot = root
		}
	}
	return r
}

// Platform returns the platform binaries are resolved for.
func (r *Resolver) Platform() platform.Platform {
	return r.platform
}

// CachedBinaryPath returns where the acquirer stores tool.
func (r *Resolver) CachedBinaryPath(tool string) (string, error) {
	return r.platform.CachedBinaryPath(r.cacheRoot, tool)
}

// Resolve returns the detection result for tool. It never fails: an
// exhausted chain is reported as Found=false with SourceNotFound.
func (r *Resolver) Resolve(ctx context.Context, tool string) lib.DetectionResult {
	if r.config != nil {
		if override := r.config.OverridePath(tool); override != "" {
			r.log.V(1).Info("using configured override", "tool", tool, "path", override)
			return lib.DetectionResult{Tool: tool, Found: true, Path: override, Source: lib.SourceCustom}
		}
	}

	r.mu.Lock()
	cached, ok := r.cache[tool]
	r.mu.Unlock()
	if ok {
		return cached
	}

	result := r.detect(ctx, tool)

	r.mu.Lock()
	r.cache[tool] = result
	r.mu.Unlock()

	if result.Found {
		r.log.Info("binary resolved", "tool", tool, "path", result.Path, "source", result.Source, "version", result.Version)
	} else {
		r.log.Info("binary not found", "tool", tool)
	}
	return result
}

// Refresh drops every cached result; the next Resolve probes again.
func (r *Resolver) Refresh() {
	r.mu.Lock()
	r.cache = make(map[string]lib.DetectionResult)
	r.mu.Unlock()
}

func (r *Resolver) detect(ctx context.Context, tool string) lib.DetectionResult {
	found := func(path string, source lib.BinarySource) lib.DetectionResult {
		res := lib.DetectionResult{Tool: tool, Found: true, Path: path, Source: source}
		if version, err := r.probeVersion(ctx, path); err != nil {
			r.log.V(1).Info("version probe failed", "tool", tool, "path", path, "error", err.Error())
		} else {
			res.Version = version
		}
		return res
	}

	if path, err := r.lookPath(tool); err == nil {
		if abs, absErr := filepath.Abs(path); absErr == nil {
			path = abs
		}
		if r.accept(path) {
			return found(path, lib.SourceSystem)
		}
	}

	if cachedPath, err := r.CachedBinaryPath(tool); err == nil && r.cacheRoot != "" {
		if r.accept(cachedPath) {
			return found(cachedPath, lib.SourceDownloaded)
		}
	}

	name := r.platform.ExecutableName(tool)
	for _, dir := range r.commonDirs {
		candidate := filepath.Join(dir, name)
		if r.accept(candidate) {
			return found(candidate, lib.SourceSystem)
		}
	}

	return lib.DetectionResult{Tool: tool, Found: false, Source: lib.SourceNotFound}
}

// accept reports whether candidate is a regular, executable file. A regular
// file without the executable bit is chmod-ed first; a chmod failure only
// rejects this candidate.
func (r *Resolver) accept(candidate string) bool {
	info, err := r.stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if r.isExecutable(candidate) {
		return true
	}
	if err := r.chmod(candidate); err != nil {
		r.log.V(1).Info("candidate is not executable", "path", candidate, "error", err.Error())
		return false
	}
	return true
}
