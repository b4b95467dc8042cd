//go:build js && wasm

package dialogs

import (
	"syscall/js"
)

// Browser shows window.alert. Pages without a window (workers) drop the message.
type Browser struct{}

func (Browser) Alert(msg string) {
	defer func() { _ = recover() }()
	if alert := js.Global().Get("alert"); alert.Type() == js.TypeFunction {
		alert.Invoke(msg)
	}
}
