package bridge

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// ValidateTarget checks the syntax of an IPv4 address and TCP port.
func ValidateTarget(ip, port string) error {
	const op = "connect"

	ip = strings.TrimSpace(ip)
	port = strings.TrimSpace(port)
	if ip == "" {
		return lib.NewError(lib.CategoryValidation, op, "IP address is required", nil)
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return lib.NewError(lib.CategoryValidation, op, fmt.Sprintf("invalid IPv4 address %q", ip), err)
	}
	if port == "" {
		return lib.NewError(lib.CategoryValidation, op, "port is required", nil)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 || strconv.Itoa(n) != port {
		return lib.NewError(lib.CategoryValidation, op, fmt.Sprintf("invalid port %q, expected 1-65535", port), err)
	}
	return nil
}
