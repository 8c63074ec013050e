package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintState(t *testing.T) {
	out := captureStdout(t, func() {
		printState(apiv1.State{
			Connection: lib.ConnectionState{Connected: true, DeviceIP: "10.0.0.2", DevicePort: "5555"},
			Mirroring:  lib.MirroringState{Running: true, Pid: 77, Options: lib.MirrorOptions{BitRate: "8M", ScreenOff: true}},
		})
	})
	require.Contains(t, out, "Connected 10.0.0.2:5555")
	require.Contains(t, out, "Running (pid 77) bit-rate=8M screen-off")
	require.NotContains(t, out, "ERROR")
}

func TestPrintStateWithErrors(t *testing.T) {
	out := captureStdout(t, func() {
		printState(apiv1.State{
			Connection: lib.ConnectionState{ConnectionError: "Connection refused"},
			Mirroring:  lib.MirroringState{LastError: "mirroring exited unexpectedly with code 1"},
		})
	})
	require.Contains(t, out, "| Disconnected")
	require.Contains(t, out, "CONNECTION ERROR")
	require.Contains(t, out, "code 1")
}

func TestPrintTableAligns(t *testing.T) {
	out := captureStdout(t, func() {
		printDevices([]lib.Device{{Serial: "10.0.0.2:5555", State: "device"}, {Serial: "emulator-5554", State: "offline"}})
	})
	require.Equal(t, ""+
		"+---------------+---------+\n"+
		"| SERIAL        | STATE   |\n"+
		"+---------------+---------+\n"+
		"| 10.0.0.2:5555 | device  |\n"+
		"| emulator-5554 | offline |\n"+
		"+---------------+---------+\n", out)
}

func TestRootCommandVerbs(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"connect", "disconnect", "check", "devices", "launch", "stop", "status", "binaries"}, names)
}
