package lib

// Logger is the logging and notification surface consumed by the engine.
// Every method takes free text plus an optional technical error detail.
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Error(err error, msg string, keysAndValues ...any)
	ShowSuccess(msg string)
	ShowWarning(msg string, err error)
	ShowError(msg string, err error)
}

// ConfigProvider supplies user settings to the engine.
type ConfigProvider interface {
	// OverridePath returns the configured binary path for tool, or "".
	OverridePath(tool string) string
	// DefaultTarget returns the configured device endpoint.
	DefaultTarget() Target
}
