package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const cacheDirEnv = "DEVMIRROR_CACHE_DIR"

// Platform describes the host operating system and architecture.
type Platform struct {
	OS   string
	Arch string
}

// Current returns the platform the binary runs on.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Key returns the platform directory name used in the binary cache and in
// download URLs, e.g. "linux-x64" or "darwin-arm64".
func (p Platform) Key() (string, error) {
	arch, err := p.arch()
	if err != nil {
		return "", err
	}
	switch p.OS {
	case "linux", "darwin", "windows":
		return p.OS + "-" + arch, nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", p.OS)
	}
}

func (p Platform) arch() (string, error) {
	switch p.Arch {
	case "amd64":
		return "x64", nil
	case "arm64":
		return "arm64", nil
	case "386":
		return "x86", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", p.Arch)
	}
}

// IsWindows reports whether executables need the .exe suffix.
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}

// ExecutableName returns the on-disk file name of a tool.
func (p Platform) ExecutableName(tool string) string {
	if p.IsWindows() {
		return tool + ".exe"
	}
	return tool
}

// CachedBinaryPath returns <cacheRoot>/<platform>/<tool>[.exe].
func (p Platform) CachedBinaryPath(cacheRoot, tool string) (string, error) {
	key, err := p.Key()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheRoot, key, p.ExecutableName(tool)), nil
}

// DefaultCacheRoot returns the binary cache root, checking the environment
// first and falling back to the user cache directory, then the home directory.
func DefaultCacheRoot() (string, error) {
	if v, found := os.LookupEnv(cacheDirEnv); found && v != "" {
		return v, nil
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "devmirror", "bin"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine the path to the user's home directory: %w", err)
	}
	return filepath.Join(home, ".devmirror", "bin"), nil
}

// CommonInstallDirs returns the fixed list of directories where the tools are
// usually installed on this platform. Entries that depend on an unset
// environment variable are skipped.
func (p Platform) CommonInstallDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string
	add := func(parts ...string) {
		for _, part := range parts {
			if part == "" {
				return
			}
		}
		dirs = append(dirs, filepath.Join(parts...))
	}

	switch p.OS {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		add(local, "Android", "Sdk", "platform-tools")
		add(os.Getenv("ProgramFiles"), "scrcpy")
		add(os.Getenv("ProgramFiles"), "Android", "platform-tools")
		add(home, "scoop", "shims")
		add(local, "Microsoft", "WinGet", "Links")
		add(`C:\platform-tools`)
	case "darwin":
		add("/opt/homebrew/bin")
		add("/usr/local/bin")
		add(home, "Library", "Android", "sdk", "platform-tools")
		add("/opt/local/bin")
	default:
		add("/usr/bin")
		add("/usr/local/bin")
		add("/snap/bin")
		add(home, "Android", "Sdk", "platform-tools")
		add("/opt/android-sdk", "platform-tools")
		add(home, ".local", "bin")
	}
	return dirs
}
