package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
	"github.com/SanjoDeundiak/devmirror/pkg/lib/acquirer"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "run"))
	t.Setenv("DEVMIRROR_CONFIG", "")
	t.Setenv("DEVMIRROR_CACHE_DIR", filepath.Join(dir, "cache"))
	return dir
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultPort, c.Device.Port)
	require.Equal(t, filepath.Join(dir, "cache"), c.Binaries.CacheDir)
	require.Equal(t, acquirer.DefaultTimeout, c.Binaries.DownloadTimeout)
	require.Equal(t, "unix://"+filepath.ToSlash(filepath.Join(dir, "run", "devmirrord.sock")), c.Server.Address)

	require.Empty(t, c.OverridePath(lib.ToolBridge))
	require.True(t, c.DefaultTarget().IsZero())
	_, ok := c.Acquirer()
	require.False(t, ok)
}

func TestConfigFileFromSearchPath(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "config", "devmirror", "devmirror.yaml"), `
adb:
  path: /opt/platform-tools/adb
device:
  ip: 192.168.1.100
  port: 5556
binaries:
  download_base: https://downloads.example.test/bin
  fallback_base: https://mirror.example.test/bin
  download_timeout: 30s
`)

	c, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "/opt/platform-tools/adb", c.OverridePath(lib.ToolBridge))
	require.Empty(t, c.OverridePath(lib.ToolMirror))
	require.Empty(t, c.OverridePath("fastboot"))
	require.Equal(t, lib.Target{IP: "192.168.1.100", Port: "5556"}, c.DefaultTarget())

	ac, ok := c.Acquirer()
	require.True(t, ok)
	require.Equal(t, acquirer.Config{
		PrimaryBase:  "https://downloads.example.test/bin",
		FallbackBase: "https://mirror.example.test/bin",
		CacheRoot:    filepath.Join(dir, "cache"),
		Timeout:      30 * time.Second,
	}, ac)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	writeConfig(t, file, "device:\n  ip: 10.0.0.1\n")
	t.Setenv("DEVMIRROR_DEVICE_IP", "10.0.0.2")
	t.Setenv("DEVMIRROR_SCRCPY_PATH", "/usr/local/bin/scrcpy")

	c, err := Load(file, nil)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2", c.Device.IP)
	require.Equal(t, "/usr/local/bin/scrcpy", c.OverridePath(lib.ToolMirror))
}

func TestFlagsOverrideEverything(t *testing.T) {
	isolate(t)
	t.Setenv("DEVMIRROR_SERVER_ADDRESS", "unix:///tmp/env.sock")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("address", "", "")
	fs.String("ip", "", "")
	require.NoError(t, fs.Parse([]string{"--address", "127.0.0.1:7070"}))

	c, err := Load("", fs)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7070", c.Server.Address)
	require.Empty(t, c.Device.IP)
}

func TestExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
}

func TestMalformedFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "bad.yaml")
	writeConfig(t, file, "device: [unterminated\n")

	_, err := Load(file, nil)
	require.Error(t, err)
}
