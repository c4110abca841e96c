package editor

import (
	"sync"

	"go.uber.org/zap"
)

// Level grades a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a user-facing message raised by the editor.
type Notice struct {
	Level Level
	Text  string
}

// Notifier presents notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Inbox buffers notices until a view drains them. It is safe for concurrent
// use.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify appends n.
func (b *Inbox) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

// Drain returns and clears the buffered notices.
func (b *Inbox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// LogNotifier writes notices to a logger. Used by non-interactive commands.
func LogNotifier(l *zap.Logger) Notifier {
	return NotifierFunc(func(n Notice) {
		switch n.Level {
		case LevelError:
			l.Error(n.Text)
		default:
			l.Info(n.Text, zap.String("level", string(n.Level)))
		}
	})
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
