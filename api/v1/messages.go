package apiv1

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// ConnectRequest asks the daemon to connect to a device endpoint. An empty
// Port means the configured default port.
type ConnectRequest struct {
	IP   string
	Port string
}

// LaunchRequest asks the daemon to start mirroring.
type LaunchRequest struct {
	Options lib.MirrorOptions
}

// BinariesRequest asks for binary status, optionally refreshing the
// detection cache or downloading missing tools first.
type BinariesRequest struct {
	Refresh bool
	Fetch   bool
}

// State is the pair of snapshots returned by most calls.
type State struct {
	Connection lib.ConnectionState
	Mirroring  lib.MirroringState
	// MirrorProcess is set while a mirroring process is alive.
	MirrorProcess *lib.ProcessStatus
}

// CheckResponse reports whether the device is connected, plus the state.
type CheckResponse struct {
	Connected bool
	State     State
}

func (r ConnectRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"ip": r.IP, "port": r.Port})
}

func ParseConnectRequest(s *structpb.Struct) ConnectRequest {
	return ConnectRequest{IP: getString(s, "ip"), Port: getString(s, "port")}
}

func (r LaunchRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"options": optionsMap(r.Options)})
}

func ParseLaunchRequest(s *structpb.Struct) LaunchRequest {
	return LaunchRequest{Options: parseOptions(getStruct(s, "options"))}
}

func (r BinariesRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"refresh": r.Refresh, "fetch": r.Fetch})
}

func ParseBinariesRequest(s *structpb.Struct) BinariesRequest {
	return BinariesRequest{Refresh: getBool(s, "refresh"), Fetch: getBool(s, "fetch")}
}

func (st State) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(st.fields())
}

func (st State) fields() map[string]any {
	c := st.Connection
	m := st.Mirroring
	fields := map[string]any{
		"connection": map[string]any{
			"connected":        c.Connected,
			"device_ip":        c.DeviceIP,
			"device_port":      c.DevicePort,
			"last_connected":   formatTime(c.LastConnected),
			"connection_error": c.ConnectionError,
		},
		"mirroring": map[string]any{
			"running":    m.Running,
			"start_time": formatTime(m.StartTime),
			"options":    optionsMap(m.Options),
			"handle_id":  m.HandleID,
			"pid":        m.Pid,
			"last_error": m.LastError,
		},
	}
	if p := st.MirrorProcess; p != nil {
		proc := map[string]any{
			"state":      p.State.String(),
			"pid":        p.Pid,
			"start_time": formatTime(p.StartTime),
		}
		if p.ExitCode != nil {
			proc["exit_code"] = *p.ExitCode
		}
		fields["mirror_process"] = proc
	}
	return fields
}

func ParseState(s *structpb.Struct) State {
	c := getStruct(s, "connection")
	m := getStruct(s, "mirroring")
	st := State{
		Connection: lib.ConnectionState{
			Connected:       getBool(c, "connected"),
			DeviceIP:        getString(c, "device_ip"),
			DevicePort:      getString(c, "device_port"),
			LastConnected:   parseTime(getString(c, "last_connected")),
			ConnectionError: getString(c, "connection_error"),
		},
		Mirroring: lib.MirroringState{
			Running:   getBool(m, "running"),
			StartTime: parseTime(getString(m, "start_time")),
			Options:   parseOptions(getStruct(m, "options")),
			HandleID:  getString(m, "handle_id"),
			Pid:       getInt(m, "pid"),
			LastError: getString(m, "last_error"),
		},
	}
	if p := getStruct(s, "mirror_process"); p != nil {
		ps := &lib.ProcessStatus{
			Pid:       getInt(p, "pid"),
			StartTime: parseTime(getString(p, "start_time")),
		}
		switch getString(p, "state") {
		case lib.ProcessStateRunning.String():
			ps.State = lib.ProcessStateRunning
		case lib.ProcessStateStopped.String():
			ps.State = lib.ProcessStateStopped
		}
		if v, ok := p.GetFields()["exit_code"]; ok {
			code := int(v.GetNumberValue())
			ps.ExitCode = &code
		}
		st.MirrorProcess = ps
	}
	return st
}

func (r CheckResponse) Struct() (*structpb.Struct, error) {
	fields := r.State.fields()
	fields["connected"] = r.Connected
	return structpb.NewStruct(fields)
}

func ParseCheckResponse(s *structpb.Struct) CheckResponse {
	return CheckResponse{Connected: getBool(s, "connected"), State: ParseState(s)}
}

func DevicesStruct(devices []lib.Device) (*structpb.Struct, error) {
	list := make([]any, 0, len(devices))
	for _, d := range devices {
		list = append(list, map[string]any{"serial": d.Serial, "state": d.State})
	}
	return structpb.NewStruct(map[string]any{"devices": list})
}

func ParseDevices(s *structpb.Struct) []lib.Device {
	var devices []lib.Device
	for _, v := range getList(s, "devices") {
		d := v.GetStructValue()
		devices = append(devices, lib.Device{Serial: getString(d, "serial"), State: getString(d, "state")})
	}
	return devices
}

func BinariesStruct(results []lib.DetectionResult) (*structpb.Struct, error) {
	list := make([]any, 0, len(results))
	for _, r := range results {
		list = append(list, map[string]any{
			"tool":    r.Tool,
			"found":   r.Found,
			"path":    r.Path,
			"version": r.Version,
			"source":  string(r.Source),
		})
	}
	return structpb.NewStruct(map[string]any{"binaries": list})
}

func ParseBinaries(s *structpb.Struct) []lib.DetectionResult {
	var results []lib.DetectionResult
	for _, v := range getList(s, "binaries") {
		b := v.GetStructValue()
		results = append(results, lib.DetectionResult{
			Tool:    getString(b, "tool"),
			Found:   getBool(b, "found"),
			Path:    getString(b, "path"),
			Version: getString(b, "version"),
			Source:  lib.BinarySource(getString(b, "source")),
		})
	}
	return results
}

func optionsMap(o lib.MirrorOptions) map[string]any {
	return map[string]any{
		"bit_rate":    o.BitRate,
		"max_size":    o.MaxSize,
		"crop":        o.Crop,
		"record_file": o.RecordFile,
		"serial":      o.Serial,
		"screen_off":  o.ScreenOff,
	}
}

func parseOptions(s *structpb.Struct) lib.MirrorOptions {
	return lib.MirrorOptions{
		BitRate:    getString(s, "bit_rate"),
		MaxSize:    getInt(s, "max_size"),
		Crop:       getString(s, "crop"),
		RecordFile: getString(s, "record_file"),
		Serial:     getString(s, "serial"),
		ScreenOff:  getBool(s, "screen_off"),
	}
}

// Getters tolerate nil structs and missing keys.

func getString(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func getBool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func getInt(s *structpb.Struct, key string) int {
	return int(s.GetFields()[key].GetNumberValue())
}

func getStruct(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

func getList(s *structpb.Struct, key string) []*structpb.Value {
	return s.GetFields()[key].GetListValue().GetValues()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
