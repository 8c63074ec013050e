package mirror

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

var (
	bitRatePattern = regexp.MustCompile(`^[0-9]+[KkMm]?$`)
	cropPattern    = regexp.MustCompile(`^[0-9]+:[0-9]+:[0-9]+:[0-9]+$`)
)

// ValidateOptions rejects malformed mirroring options.
func ValidateOptions(opts lib.MirrorOptions) error {
	const op = "launch"

	if opts.BitRate != "" && !bitRatePattern.MatchString(opts.BitRate) {
		return lib.NewError(lib.CategoryValidation, op, fmt.Sprintf("invalid bit rate %q, expected e.g. 8M", opts.BitRate), nil)
	}
	if opts.MaxSize < 0 {
		return lib.NewError(lib.CategoryValidation, op, fmt.Sprintf("invalid max size %d", opts.MaxSize), nil)
	}
	if opts.Crop != "" && !cropPattern.MatchString(opts.Crop) {
		return lib.NewError(lib.CategoryValidation, op, fmt.Sprintf("invalid crop %q, expected W:H:X:Y", opts.Crop), nil)
	}
	if opts.RecordFile != "" && strings.TrimSpace(opts.RecordFile) == "" {
		return lib.NewError(lib.CategoryValidation, op, "record file path is blank", nil)
	}
	return nil
}

// BuildArgs turns options into the mirroring tool's argument vector. Unset
// fields are omitted.
func BuildArgs(opts lib.MirrorOptions) []string {
	var args []string
	if opts.BitRate != "" {
		args = append(args, "--bit-rate", opts.BitRate)
	}
	if opts.MaxSize > 0 {
		args = append(args, "--max-size", strconv.Itoa(opts.MaxSize))
	}
	if opts.Crop != "" {
		args = append(args, "--crop", opts.Crop)
	}
	if opts.RecordFile != "" {
		args = append(args, "--record", opts.RecordFile)
	}
	if opts.Serial != "" {
		args = append(args, "--serial", opts.Serial)
	}
	if opts.ScreenOff {
		args = append(args, "--turn-screen-off")
	}
	return args
}
