//go:build js && wasm

package storage

import "syscall/js"

var _ Store = Local{}

// Local is window.localStorage. Access errors (private mode, quota) are
// treated as a missing key or a dropped write.
type Local struct{}

func (Local) Get(key string) (v string, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = "", false
		}
	}()
	ls := js.Global().Get("localStorage")
	if !ls.Truthy() {
		return "", false
	}
	r := ls.Call("getItem", key)
	if r.IsNull() {
		return "", false
	}
	return r.String(), true
}

func (Local) Set(key, value string) {
	defer func() { _ = recover() }()
	ls := js.Global().Get("localStorage")
	if ls.Truthy() {
		ls.Call("setItem", key, value)
	}
}
