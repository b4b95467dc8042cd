//go:build js && wasm

package avatar

import (
	"bytes"
	"context"
	"errors"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/dom"
)

// GlobalToken reads a string global such as window.csrftoken.
func GlobalToken(name string) TokenSource {
	return TokenFunc(func() (string, bool) {
		v := js.Global().Get(name)
		if v.Type() != js.TypeString {
			return "", false
		}
		s := v.String()
		return s, s != ""
	})
}

// DocumentCookie returns document.cookie.
func DocumentCookie() string {
	return js.Global().Get("document").Get("cookie").String()
}

// Picker returns a function that opens the file input matched by selector.
func Picker(doc dom.Document, selector string) func() {
	return func() {
		if v, ok := dom.Unwrap(doc.Query(selector)); ok {
			v.Call("click")
		}
	}
}

// Watch handles every file chosen in the widget's input until release is called.
func (w *Widget) Watch(ctx context.Context) (release func()) {
	input, ok := dom.Unwrap(w.doc.Query(w.cfg.Input))
	if !ok {
		return func() {}
	}
	onChange := js.FuncOf(func(this js.Value, args []js.Value) any {
		files := input.Get("files")
		if !files.Truthy() || files.Length() == 0 {
			return nil
		}
		file := files.Index(0)
		go w.handleJS(ctx, file)
		return nil
	})
	input.Call("addEventListener", "change", onChange)
	return func() {
		input.Call("removeEventListener", "change", onChange)
		onChange.Release()
	}
}

func (w *Widget) handleJS(ctx context.Context, file js.Value) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handling avatar file", zap.Any("panic", r))
		}
	}()

	f := File{
		Name:        file.Get("name").String(),
		ContentType: file.Get("type").String(),
		Size:        int64(file.Get("size").Int()),
	}
	if err := w.uploader.Validate(f); err != nil {
		w.reject(err)
		return
	}

	data, err := await(file.Call("arrayBuffer"))
	if err != nil {
		w.logger.Error("reading avatar file", zap.Error(err))
		w.dialog.Alert(w.msgs.UploadFailed)
		return
	}
	buf := make([]byte, data.Get("byteLength").Int())
	js.CopyBytesToGo(buf, js.Global().Get("Uint8Array").New(data))
	f.Body = bytes.NewReader(buf)

	preview := js.Global().Get("URL").Call("createObjectURL", file).String()
	_ = w.Handle(ctx, f, preview)
}

// await blocks the calling goroutine until promise settles.
func await(promise js.Value) (js.Value, error) {
	type outcome struct {
		v   js.Value
		err error
	}
	ch := make(chan outcome, 1)
	then := js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- outcome{v: args[0]}
		return nil
	})
	catch := js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- outcome{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer then.Release()
	defer catch.Release()
	promise.Call("then", then).Call("catch", catch)
	o := <-ch
	return o.v, o.err
}
