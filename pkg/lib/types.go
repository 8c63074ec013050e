package lib

import "time"

// Tool names understood by the resolver, acquirer and supervisor.
const (
	// ToolBridge is the device-bridge tool that establishes the network debugging link.
	ToolBridge = "adb"
	// ToolMirror is the screen-mirroring tool.
	ToolMirror = "scrcpy"
)

// Tools lists every external tool the engine drives.
var Tools = []string{ToolBridge, ToolMirror}

// BinarySource tells which resolution tier produced a binary path.
type BinarySource string

const (
	SourceSystem     BinarySource = "system"
	SourceDownloaded BinarySource = "downloaded"
	SourceCustom     BinarySource = "custom"
	SourceNotFound   BinarySource = "not-found"
)

// DetectionResult is the outcome of resolving a tool binary.
type DetectionResult struct {
	Tool    string
	Found   bool
	Path    string
	Version string
	Source  BinarySource
}

// Target is a network debugging endpoint of a device.
type Target struct {
	IP   string
	Port string
}

// Address returns the "ip:port" form passed to the device-bridge tool.
func (t Target) Address() string {
	return t.IP + ":" + t.Port
}

// IsZero reports whether no endpoint is set.
func (t Target) IsZero() bool {
	return t.IP == "" && t.Port == ""
}

// ConnectionState is an immutable snapshot of the device-bridge link.
// Connected implies DeviceIP and DevicePort are non-empty.
type ConnectionState struct {
	Connected       bool
	DeviceIP        string
	DevicePort      string
	LastConnected   time.Time
	ConnectionError string
}

// Target returns the endpoint recorded in the snapshot.
func (s ConnectionState) Target() Target {
	return Target{IP: s.DeviceIP, Port: s.DevicePort}
}

// MirrorOptions holds the optional knobs of a mirroring session.
// Zero values are omitted from the argument vector.
type MirrorOptions struct {
	BitRate    string // e.g. "8M"
	MaxSize    int
	Crop       string // "W:H:X:Y"
	RecordFile string
	Serial     string
	ScreenOff  bool
}

// MirroringState is an immutable snapshot of the mirroring session.
type MirroringState struct {
	Running   bool
	StartTime time.Time
	Options   MirrorOptions
	// HandleID refers to the live process in the runner registry. It is only
	// used to query status and is cleared when the session stops.
	HandleID  string
	Pid       int
	LastError string
}

// ProcessState mirrors the high-level lifecycle of a managed process.
type ProcessState int

const (
	ProcessStateUnspecified ProcessState = iota
	ProcessStateRunning
	ProcessStateStopped
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateRunning:
		return "running"
	case ProcessStateStopped:
		return "stopped"
	default:
		return "unspecified"
	}
}

// Command captures command metadata used to start a process.
type Command struct {
	Tool string
	Path string
	Args []string
}

// ProcessStatus captures runtime state and timestamps.
type ProcessStatus struct {
	State     ProcessState
	Pid       int
	ExitCode  *int
	StartTime time.Time
	EndTime   *time.Time
}

// CommandResult is the settled shape of a short-lived tool invocation.
// A spawn failure is folded into the same shape with Success=false and ExitCode=-1;
// Err then carries the categorized cause.
type CommandResult struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Combined returns stdout followed by stderr.
func (r CommandResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Device is one entry of the device-bridge tool's device list.
type Device struct {
	Serial string
	State  string // "device", "offline", "unauthorized", ...
}

// IsOnline returns true if the device is in "device" state (ready).
func (d Device) IsOnline() bool {
	return d.State == "device"
}

// Progress reports a streaming download.
type Progress struct {
	Tool       string
	Downloaded int64
	Total      int64
	Percentage float64
}

// ProgressFunc observes download progress. It is called on every chunk when
// the total size is known.
type ProgressFunc func(Progress)
