package resolver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"time"
)

const versionProbeTimeout = 5 * time.Second

var versionRegexp = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// probeVersion runs "<path> --version" and extracts the first semantic version.
func probeVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("run %s --version: %w", path, err)
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the first "major.minor[.patch]" from tool output.
func ParseVersion(output string) (string, error) {
	m := versionRegexp.FindStringSubmatch(output)
	if m == nil {
		return "", errors.New("no version in output")
	}
	return m[1], nil
}
