package main

import (
	"fmt"
	"strings"
	"time"

	apiv1 "github.com/SanjoDeundiak/devmirror/api/v1"
	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

func printState(st apiv1.State) {
	conn := "Disconnected"
	if st.Connection.Connected {
		conn = "Connected " + st.Connection.Target().Address()
		if !st.Connection.LastConnected.IsZero() {
			conn += " since " + st.Connection.LastConnected.Local().Format(time.DateTime)
		}
	}
	mirroring := "Stopped"
	if st.Mirroring.Running {
		mirroring = fmt.Sprintf("Running (pid %d)", st.Mirroring.Pid)
		if args := strings.Join(argsOf(st.Mirroring.Options), " "); args != "" {
			mirroring += " " + args
		}
	}

	rows := [][]string{
		{"CONNECTION", conn},
		{"MIRRORING", mirroring},
	}
	if e := st.Connection.ConnectionError; e != "" {
		rows = append(rows, []string{"CONNECTION ERROR", e})
	}
	if e := st.Mirroring.LastError; e != "" {
		rows = append(rows, []string{"MIRRORING ERROR", e})
	}
	printTable([]string{"", "STATE"}, rows)
}

func printDevices(devices []lib.Device) {
	if len(devices) == 0 {
		fmt.Println("No devices attached")
		return
	}
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.Serial, d.State})
	}
	printTable([]string{"SERIAL", "STATE"}, rows)
}

func printBinaries(results []lib.DetectionResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Tool, string(r.Source), r.Version, r.Path})
	}
	printTable([]string{"TOOL", "SOURCE", "VERSION", "PATH"}, rows)
}

func argsOf(o lib.MirrorOptions) []string {
	var args []string
	if o.BitRate != "" {
		args = append(args, "bit-rate="+o.BitRate)
	}
	if o.MaxSize > 0 {
		args = append(args, fmt.Sprintf("max-size=%d", o.MaxSize))
	}
	if o.Crop != "" {
		args = append(args, "crop="+o.Crop)
	}
	if o.RecordFile != "" {
		args = append(args, "record="+o.RecordFile)
	}
	if o.ScreenOff {
		args = append(args, "screen-off")
	}
	return args
}

func printTable(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	sep := "+-" + strings.Join(parts, "-+-") + "-+\n"

	line := func(cells []string) {
		padded := make([]string, len(widths))
		for i, w := range widths {
			padded[i] = pad(cells[i], w)
		}
		fmt.Print("| " + strings.Join(padded, " | ") + " |\n")
	}

	fmt.Print(sep)
	line(header)
	fmt.Print(sep)
	for _, row := range rows {
		line(row)
	}
	fmt.Print(sep)
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
