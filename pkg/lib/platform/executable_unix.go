//go:build !windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const executableMode os.FileMode = 0o755

// IsExecutable reports whether path is a regular file the current user may execute.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// MakeExecutable sets the executable bits on path and verifies the result.
func MakeExecutable(path string) error {
	if err := os.Chmod(path, executableMode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%s is still not executable: %w", path, err)
	}
	return nil
}
