//go:build js && wasm

package events

import (
	"syscall/js"

	"github.com/vcrobe/adminnav/dom"
)

// Listen attaches one native listener per event type to the document and
// forwards each event to d. The returned func removes the listeners and
// releases the js.Func values.
func Listen(d *Delegator, types ...string) (release func()) {
	doc := js.Global().Get("document")
	funcs := make([]js.Func, 0, len(types))

	for _, typ := range types {
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			native := args[0]
			e := NewEvent(typ, dom.Wrap(native.Get("target")))
			d.Dispatch(e)
			if e.DefaultPrevented() {
				native.Call("preventDefault")
			}
			if e.PropagationStopped() {
				native.Call("stopPropagation")
			}
			return nil
		})
		doc.Call("addEventListener", typ, fn)
		funcs = append(funcs, fn)
	}

	return func() {
		for i, fn := range funcs {
			doc.Call("removeEventListener", types[i], fn)
			fn.Release()
		}
	}
}
