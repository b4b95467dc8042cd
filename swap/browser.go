//go:build js && wasm

package swap

import (
	"syscall/js"

	"github.com/vcrobe/adminnav/dom"
)

// BootstrapWidgets re-creates Bootstrap tooltips and popovers inside the
// region when the Bootstrap bundle is present on the page.
func BootstrapWidgets() Reinitializer {
	return ReinitFunc(func(region dom.Element) error {
		bootstrap := js.Global().Get("bootstrap")
		if !bootstrap.Truthy() {
			return nil
		}
		for _, w := range []struct{ ctor, toggle string }{
			{"Tooltip", "tooltip"},
			{"Popover", "popover"},
		} {
			ctor := bootstrap.Get(w.ctor)
			if !ctor.Truthy() {
				continue
			}
			for _, el := range region.QueryAll(`[data-bs-toggle="` + w.toggle + `"]`) {
				if v, ok := dom.Unwrap(el); ok {
					ctor.New(v)
				}
			}
		}
		return nil
	})
}

// DOMEvent dispatches a CustomEvent named name on document so scripts outside
// Go can resubscribe to the new content.
func DOMEvent(name string) Reinitializer {
	return ReinitFunc(func(dom.Element) error {
		doc := js.Global().Get("document")
		ev := js.Global().Get("CustomEvent").New(name, map[string]any{"bubbles": true})
		doc.Call("dispatchEvent", ev)
		return nil
	})
}
