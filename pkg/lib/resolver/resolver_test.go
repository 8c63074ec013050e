package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/platform"
)

type fakeConfig struct {
	overrides map[string]string
}

func (c fakeConfig) OverridePath(tool string) string { return c.overrides[tool] }
func (c fakeConfig) DefaultTarget() lib.Target       { return lib.Target{} }

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping: shell script fixtures need a POSIX shell")
	}
}

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func notOnPath(string) (string, error) {
	return "", errors.New("not on PATH")
}

func TestResolve_OverrideIsTrustedVerbatim(t *testing.T) {
	probes := 0
	r := New(fakeConfig{overrides: map[string]string{lib.ToolBridge: "/does/not/exist/adb"}}, testr.New(t))
	r.lookPath = func(string) (string, error) { probes++; return "", errors.New("unexpected") }
	r.stat = func(string) (os.FileInfo, error) { probes++; return nil, os.ErrNotExist }
	r.isExecutable = func(string) bool { probes++; return false }

	res := r.Resolve(t.Context(), lib.ToolBridge)

	require.True(t, res.Found)
	require.Equal(t, "/does/not/exist/adb", res.Path)
	require.Equal(t, lib.SourceCustom, res.Source)
	require.Empty(t, res.Version)
	require.Zero(t, probes)
}

func TestResolve_PathLookupWithVersion(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	adb := writeScript(t, dir, "adb", `echo "Android Debug Bridge version 1.0.41"`, 0o755)

	r := New(nil, testr.New(t), WithCommonDirs(), WithCacheRoot(t.TempDir()),
		WithLookPath(func(string) (string, error) { return adb, nil }))

	res := r.Resolve(t.Context(), lib.ToolBridge)
	require.True(t, res.Found)
	require.Equal(t, adb, res.Path)
	require.Equal(t, lib.SourceSystem, res.Source)
	require.Equal(t, "1.0.41", res.Version)
}

func TestResolve_DownloadedCopy(t *testing.T) {
	skipOnWindows(t)
	cacheRoot := t.TempDir()
	p := platform.Current()
	cached, err := p.CachedBinaryPath(cacheRoot, lib.ToolMirror)
	require.NoError(t, err)
	writeScript(t, filepath.Dir(cached), filepath.Base(cached), `echo "scrcpy 2.4 <https://github.com/Genymobile/scrcpy>"`, 0o755)

	r := New(nil, testr.New(t), WithCommonDirs(), WithCacheRoot(cacheRoot), WithLookPath(notOnPath))

	res := r.Resolve(t.Context(), lib.ToolMirror)
	require.True(t, res.Found)
	require.Equal(t, cached, res.Path)
	require.Equal(t, lib.SourceDownloaded, res.Source)
	require.Equal(t, "2.4", res.Version)
}

func TestResolve_CommonDirAndChmod(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	adb := writeScript(t, dir, "adb", "exit 1", 0o644)

	r := New(nil, testr.New(t), WithCommonDirs(t.TempDir(), dir), WithCacheRoot(t.TempDir()), WithLookPath(notOnPath))

	res := r.Resolve(t.Context(), lib.ToolBridge)
	require.True(t, res.Found)
	require.Equal(t, adb, res.Path)
	require.Empty(t, res.Version, "a failed version probe must not fail resolution")
	require.True(t, platform.IsExecutable(adb))
}

func TestResolve_ChmodFailureFallsThrough(t *testing.T) {
	skipOnWindows(t)
	first := t.TempDir()
	second := t.TempDir()
	writeScript(t, first, "adb", "exit 0", 0o644)
	fallback := writeScript(t, second, "adb", "exit 0", 0o755)

	r := New(nil, testr.New(t), WithCommonDirs(first, second), WithCacheRoot(t.TempDir()), WithLookPath(notOnPath))
	r.chmod = func(string) error { return errors.New("operation not permitted") }

	res := r.Resolve(t.Context(), lib.ToolBridge)
	require.True(t, res.Found)
	require.Equal(t, fallback, res.Path)
}

func TestResolve_NotFound(t *testing.T) {
	r := New(nil, testr.New(t), WithCommonDirs(t.TempDir()), WithCacheRoot(t.TempDir()), WithLookPath(notOnPath))

	res := r.Resolve(t.Context(), lib.ToolMirror)
	require.False(t, res.Found)
	require.Equal(t, lib.SourceNotFound, res.Source)
}

func TestResolve_CachedUntilRefresh(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	adb := writeScript(t, dir, "adb", "exit 0", 0o755)

	r := New(nil, testr.New(t), WithCommonDirs(dir), WithCacheRoot(t.TempDir()), WithLookPath(notOnPath))
	require.True(t, r.Resolve(t.Context(), lib.ToolBridge).Found)

	require.NoError(t, os.Remove(adb))
	res := r.Resolve(t.Context(), lib.ToolBridge)
	require.True(t, res.Found, "result should come from the cache")

	r.Refresh()
	res = r.Resolve(t.Context(), lib.ToolBridge)
	require.False(t, res.Found)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("Android Debug Bridge version 1.0.41\nVersion 34.0.5-10900879")
	require.NoError(t, err)
	require.Equal(t, "1.0.41", v)

	_, err = ParseVersion("no digits here")
	require.Error(t, err)
}
