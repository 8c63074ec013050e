package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// Entry is one call recorded by RecordingLogger.
type Entry struct {
	Kind string // info, error, success, warning, show-error
	Msg  string
	Err  error
	KV   []any
}

// RecordingLogger implements lib.Logger and keeps every call for assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ lib.Logger = (*RecordingLogger)(nil)

func (l *RecordingLogger) record(e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

func (l *RecordingLogger) Info(msg string, keysAndValues ...any) {
	l.record(Entry{Kind: "info", Msg: msg, KV: keysAndValues})
}

func (l *RecordingLogger) Error(err error, msg string, keysAndValues ...any) {
	l.record(Entry{Kind: "error", Msg: msg, Err: err, KV: keysAndValues})
}

func (l *RecordingLogger) ShowSuccess(msg string) {
	l.record(Entry{Kind: "success", Msg: msg})
}

func (l *RecordingLogger) ShowWarning(msg string, err error) {
	l.record(Entry{Kind: "warning", Msg: msg, Err: err})
}

func (l *RecordingLogger) ShowError(msg string, err error) {
	l.record(Entry{Kind: "show-error", Msg: msg, Err: err})
}

// Entries returns a copy of the recorded calls.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Kinds returns the recorded calls of one kind, formatted as "msg" or "msg: err".
func (l *RecordingLogger) Kinds(kind string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Kind != kind {
			continue
		}
		if e.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", e.Msg, e.Err))
		} else {
			out = append(out, e.Msg)
		}
	}
	return out
}

// Contains reports whether any recorded message of kind contains substr.
func (l *RecordingLogger) Contains(kind, substr string) bool {
	for _, m := range l.Kinds(kind) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
