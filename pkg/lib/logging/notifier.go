package logging

import (
	"github.com/go-logr/logr"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// Notifier implements lib.Logger on top of logr. User-facing notifications
// carry a notify key so a front end can pick them out of the stream.
type Notifier struct {
	log logr.Logger
}

var _ lib.Logger = Notifier{}

func NewNotifier(log logr.Logger) Notifier {
	return Notifier{log: log}
}

func (n Notifier) Info(msg string, keysAndValues ...any) {
	n.log.Info(msg, keysAndValues...)
}

func (n Notifier) Error(err error, msg string, keysAndValues ...any) {
	n.log.Error(err, msg, keysAndValues...)
}

func (n Notifier) ShowSuccess(msg string) {
	n.log.Info(msg, "notify", "success")
}

func (n Notifier) ShowWarning(msg string, err error) {
	if err != nil {
		n.log.Info(msg, "notify", "warning", "error", err.Error(), "category", string(lib.CategoryOf(err)))
		return
	}
	n.log.Info(msg, "notify", "warning")
}

func (n Notifier) ShowError(msg string, err error) {
	n.log.Error(err, msg, "notify", "error", "category", string(lib.CategoryOf(err)))
}
