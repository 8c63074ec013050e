package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// SkipOnWindows skips tests whose fixtures are POSIX shell scripts.
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping: shell script fixtures need a POSIX shell")
	}
}

// WriteScript writes an executable shell script named name into dir.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
	return path
}

// StaticResolver resolves tools from a fixed map and counts lookups.
type StaticResolver struct {
	mu    sync.Mutex
	Paths map[string]string
	calls map[string]int
}

func NewStaticResolver(paths map[string]string) *StaticResolver {
	return &StaticResolver{Paths: paths, calls: make(map[string]int)}
}

func (r *StaticResolver) Resolve(_ context.Context, tool string) lib.DetectionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[tool]++
	path, ok := r.Paths[tool]
	if !ok {
		return lib.DetectionResult{Tool: tool, Source: lib.SourceNotFound}
	}
	return lib.DetectionResult{Tool: tool, Found: true, Path: path, Source: lib.SourceCustom}
}

// Calls returns how many times tool was resolved.
func (r *StaticResolver) Calls(tool string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[tool]
}

// Config is a static lib.ConfigProvider.
type Config struct {
	Overrides map[string]string
	Target    lib.Target
}

func (c Config) OverridePath(tool string) string { return c.Overrides[tool] }
func (c Config) DefaultTarget() lib.Target       { return c.Target }
