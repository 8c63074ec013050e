package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		p    Platform
		want string
	}{
		{Platform{OS: "linux", Arch: "amd64"}, "linux-x64"},
		{Platform{OS: "darwin", Arch: "arm64"}, "darwin-arm64"},
		{Platform{OS: "windows", Arch: "386"}, "windows-x86"},
	}
	for _, tt := range tests {
		got, err := tt.p.Key()
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestKey_Unsupported(t *testing.T) {
	_, err := Platform{OS: "linux", Arch: "mips"}.Key()
	require.Error(t, err)

	_, err = Platform{OS: "plan9", Arch: "amd64"}.Key()
	require.Error(t, err)
}

func TestCachedBinaryPath(t *testing.T) {
	root := t.TempDir()

	got, err := Platform{OS: "windows", Arch: "amd64"}.CachedBinaryPath(root, "adb")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "windows-x64", "adb.exe"), got)

	got, err = Platform{OS: "linux", Arch: "arm64"}.CachedBinaryPath(root, "scrcpy")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "linux-arm64", "scrcpy"), got)
}

func TestDefaultCacheRoot_Env(t *testing.T) {
	t.Setenv(cacheDirEnv, "/tmp/devmirror-cache")
	got, err := DefaultCacheRoot()
	require.NoError(t, err)
	require.Equal(t, "/tmp/devmirror-cache", got)
}

func TestCommonInstallDirs(t *testing.T) {
	require.Contains(t, Platform{OS: "linux"}.CommonInstallDirs(), "/usr/local/bin")
	require.Contains(t, Platform{OS: "darwin"}.CommonInstallDirs(), "/opt/homebrew/bin")
}
