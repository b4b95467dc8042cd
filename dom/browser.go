//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"
)

var (
	_ Document = (*BrowserDocument)(nil)
	_ Scroller = (*BrowserDocument)(nil)
	_ Element  = (*jsElement)(nil)
)

// BrowserDocument is the live window.document.
type BrowserDocument struct {
	doc js.Value
}

// NewBrowserDocument binds to the global document.
func NewBrowserDocument() *BrowserDocument {
	return &BrowserDocument{doc: js.Global().Get("document")}
}

func (d *BrowserDocument) Root() Element {
	return wrapJS(d.doc.Get("documentElement"))
}

func (d *BrowserDocument) Query(selector string) Element {
	return wrapJS(d.doc.Call("querySelector", selector))
}

func (d *BrowserDocument) QueryAll(selector string) []Element {
	return wrapList(d.doc.Call("querySelectorAll", selector))
}

// ScrollToTop smoothly scrolls the viewport to the top of el.
func (d *BrowserDocument) ScrollToTop(el Element) {
	je, ok := el.(*jsElement)
	if !ok {
		js.Global().Call("scrollTo", map[string]any{"top": 0, "behavior": "smooth"})
		return
	}
	top := je.v.Call("getBoundingClientRect").Get("top").Float() + js.Global().Get("scrollY").Float()
	js.Global().Call("scrollTo", map[string]any{"top": top, "behavior": "smooth"})
}

// Wrap exposes a raw js.Value (for example an event target) as an Element.
// Non-element nodes are lifted to their parent element.
func Wrap(v js.Value) Element {
	if v.Truthy() && v.Get("nodeType").Int() != 1 {
		v = v.Get("parentElement")
	}
	return wrapJS(v)
}

// Unwrap returns the underlying js.Value of an Element created by this package.
func Unwrap(el Element) (js.Value, bool) {
	je, ok := el.(*jsElement)
	if !ok {
		return js.Undefined(), false
	}
	return je.v, true
}

type jsElement struct {
	v js.Value
}

func wrapJS(v js.Value) Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &jsElement{v: v}
}

func wrapList(list js.Value) []Element {
	n := list.Length()
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, wrapJS(list.Index(i)))
	}
	return out
}

// call invokes a DOM method, converting a thrown exception into an error.
func (e *jsElement) call(method string, args ...any) (v js.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: %v", method, rec)
		}
	}()
	return e.v.Call(method, args...), nil
}

func (e *jsElement) Matches(selector string) bool {
	v, err := e.call("matches", selector)
	return err == nil && v.Bool()
}

func (e *jsElement) Closest(selector string) Element {
	v, err := e.call("closest", selector)
	if err != nil {
		return nil
	}
	return wrapJS(v)
}

func (e *jsElement) Query(selector string) Element {
	v, err := e.call("querySelector", selector)
	if err != nil {
		return nil
	}
	return wrapJS(v)
}

func (e *jsElement) QueryAll(selector string) []Element {
	v, err := e.call("querySelectorAll", selector)
	if err != nil {
		return nil
	}
	return wrapList(v)
}

func (e *jsElement) Parent() Element {
	return wrapJS(e.v.Get("parentElement"))
}

func (e *jsElement) Attr(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e *jsElement) SetAttr(name, value string) {
	e.v.Call("setAttribute", name, value)
}

func (e *jsElement) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *jsElement) AddClass(name string) {
	e.v.Get("classList").Call("add", name)
}

func (e *jsElement) RemoveClass(name string) {
	e.v.Get("classList").Call("remove", name)
}

func (e *jsElement) ToggleClass(name string) bool {
	return e.v.Get("classList").Call("toggle", name).Bool()
}

func (e *jsElement) InnerHTML() string {
	return e.v.Get("innerHTML").String()
}

func (e *jsElement) SetInnerHTML(markup string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("setting innerHTML: %v", rec)
		}
	}()
	e.v.Set("innerHTML", markup)
	return nil
}

func (e *jsElement) PrependHTML(markup string) error {
	_, err := e.call("insertAdjacentHTML", "afterbegin", markup)
	return err
}

func (e *jsElement) Remove() {
	e.v.Call("remove")
}

func (e *jsElement) Same(other Element) bool {
	o, ok := other.(*jsElement)
	return ok && o.v.Equal(e.v)
}
