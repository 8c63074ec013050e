package bridge

import (
	"strings"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// ParseDevices parses the output of the device-list verb. The header line,
// daemon notices and blank lines are skipped.
func ParseDevices(output string) []lib.Device {
	var devices []lib.Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, lib.Device{Serial: fields[0], State: fields[1]})
	}
	return devices
}

// findReady reports whether addr is listed in the ready state.
func findReady(devices []lib.Device, addr string) bool {
	for _, d := range devices {
		if d.Serial == addr && d.IsOnline() {
			return true
		}
	}
	return false
}
