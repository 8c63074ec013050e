//go:build windows

package platform

import "os"

// IsExecutable reports whether path is a regular file.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// MakeExecutable is a no-op on Windows.
func MakeExecutable(path string) error {
	return nil
}
