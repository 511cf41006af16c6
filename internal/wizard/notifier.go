package wizard

import "log/slog"

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notifier receives transient user-facing messages.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(kind NoticeKind, message string) {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	if kind == NoticeError {
		l.Warn("wizard notice", "kind", kind, "message", message)
		return
	}
	l.Info("wizard notice", "kind", kind, "message", message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(NoticeKind, string) {}
