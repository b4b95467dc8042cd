//go:build js && wasm

package history

import (
	"sync"
	"syscall/js"
)

var _ History = (*Browser)(nil)

// Browser is window.history. A single native popstate listener fans out to
// the registered handlers.
type Browser struct {
	mu        sync.Mutex
	listeners map[int]func(*Entry)
	nextID    int
	listener  js.Func
	bound     bool
}

// NewBrowser binds to the global window.
func NewBrowser() *Browser {
	return &Browser{listeners: make(map[int]func(*Entry))}
}

func (b *Browser) PushState(e Entry) {
	h := js.Global().Get("history")
	if !h.Truthy() || !h.Get("pushState").Truthy() {
		return
	}
	h.Call("pushState", map[string]any{"url": e.URL}, "", e.URL)
}

func (b *Browser) Reload() {
	js.Global().Get("location").Call("reload")
}

func (b *Browser) OnPopState(fn func(*Entry)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.bound {
		b.listener = js.FuncOf(func(this js.Value, args []js.Value) any {
			var state *Entry
			if len(args) > 0 {
				state = entryFromState(args[0].Get("state"))
			}
			b.mu.Lock()
			fns := make([]func(*Entry), 0, len(b.listeners))
			for id := 1; id <= b.nextID; id++ {
				if fn, ok := b.listeners[id]; ok {
					fns = append(fns, fn)
				}
			}
			b.mu.Unlock()
			for _, fn := range fns {
				fn(state)
			}
			return nil
		})
		js.Global().Call("addEventListener", "popstate", b.listener)
		b.bound = true
	}

	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Cleanup removes the native listener and releases it.
func (b *Browser) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.bound {
		return
	}
	js.Global().Call("removeEventListener", "popstate", b.listener)
	b.listener.Release()
	b.bound = false
}

// entryFromState accepts only an object whose url is a non-empty string.
func entryFromState(v js.Value) *Entry {
	if v.Type() != js.TypeObject {
		return nil
	}
	u := v.Get("url")
	if u.Type() != js.TypeString || u.String() == "" {
		return nil
	}
	return &Entry{URL: u.String()}
}
