// Package history records fragment navigations in the browser history and
// replays them on back/forward.
package history

import (
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/console"
)

// Entry is the state object stored with each pushed history entry.
type Entry struct {
	URL string `json:"url"`
}

// History is the platform history primitive.
type History interface {
	// PushState adds an entry without reloading the page.
	PushState(e Entry)
	// Reload performs a full page reload.
	Reload()
	// OnPopState registers fn for back/forward. state is nil when the entry
	// carries no usable state. The returned func unregisters fn.
	OnPopState(fn func(state *Entry)) (off func())
}

// Bridge connects the navigation pipeline to a History.
type Bridge struct {
	h      History
	logger *zap.Logger
}

// NewBridge wraps h.
func NewBridge(h History, logger *zap.Logger) *Bridge {
	return &Bridge{h: h, logger: console.OrNop(logger).Named("history")}
}

// RecordNavigation pushes one entry for url.
func (b *Bridge) RecordNavigation(url string) {
	b.logger.Debug("pushState", zap.String("url", url))
	b.h.PushState(Entry{URL: url})
}

// OnPopState invokes handler with the stored URL on back/forward. Entries
// without a URL (created before this layer took over, or cleared) cannot be
// replayed as a fragment, so the page is reloaded instead. handler must not
// record a new entry.
func (b *Bridge) OnPopState(handler func(url string)) (off func()) {
	return b.h.OnPopState(func(state *Entry) {
		if state == nil || state.URL == "" {
			b.logger.Info("popstate without state, reloading")
			b.h.Reload()
			return
		}
		b.logger.Debug("popstate", zap.String("url", state.URL))
		handler(state.URL)
	})
}
