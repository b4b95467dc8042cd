// Package dialogs shows blocking user-facing messages.
package dialogs

import (
	"sync"

	"go.uber.org/zap"
)

// Dialog shows a blocking message to the user.
type Dialog interface {
	Alert(msg string)
}

// Logged writes alerts to a logger. It stands in for the browser outside wasm.
type Logged struct {
	Logger *zap.Logger
}

func (l Logged) Alert(msg string) {
	if l.Logger != nil {
		l.Logger.Warn("alert", zap.String("message", msg))
	}
}

// Recorder collects alerts instead of showing them.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns every alert shown so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
