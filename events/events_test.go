package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/adminnav/dom"
)

const page = `<html><body>
<div class="nav-item-dropdown" id="dd">
  <a class="nav-link-dropdown" id="toggle" href="#"><span id="label">Reports</span></a>
  <div class="nav-submenu"><a class="nav-submenu-link nav-link-ajax" id="sub" href="/r/">R</a></div>
</div>
<main id="main"><p id="outside">x</p></main>
</body></html>`

func record(calls *[]string, name string) Handler {
	return func(*Event, dom.Element) { *calls = append(*calls, name) }
}

// TestDispatch_DeepestFirst verifies handlers run from the target outward, then at document level.
func TestDispatch_DeepestFirst(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	var calls []string
	d.On("click", "", record(&calls, "document"))
	d.On("click", ".nav-item-dropdown", record(&calls, "dropdown"))
	d.On("click", ".nav-link-dropdown", record(&calls, "toggle"))

	d.Dispatch(NewEvent("click", doc.Query("#label")))

	assert.Equal(t, []string{"toggle", "dropdown", "document"}, calls)
}

// TestDispatch_CurrentIsMatchedAncestor verifies the handler receives the matching element, not the raw target.
func TestDispatch_CurrentIsMatchedAncestor(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	var current dom.Element
	d.On("click", ".nav-link-dropdown", func(_ *Event, el dom.Element) { current = el })

	d.Dispatch(NewEvent("click", doc.Query("#label")))

	require.NotNil(t, current)
	assert.True(t, current.Same(doc.Query("#toggle")))
}

// TestDispatch_StopPropagation verifies same-element handlers still run but ancestors and document do not.
func TestDispatch_StopPropagation(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	var calls []string
	d.On("click", ".nav-submenu-link", func(e *Event, _ dom.Element) {
		calls = append(calls, "submenu")
		e.StopPropagation()
	})
	d.On("click", ".nav-link-ajax", record(&calls, "ajax"))
	d.On("click", ".nav-item-dropdown", record(&calls, "dropdown"))
	d.On("click", "", record(&calls, "document"))

	d.Dispatch(NewEvent("click", doc.Query("#sub")))

	assert.Equal(t, []string{"submenu", "ajax"}, calls)
}

func TestDispatch_StopImmediatePropagation(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	var calls []string
	d.On("click", ".nav-submenu-link", func(e *Event, _ dom.Element) {
		calls = append(calls, "first")
		e.StopImmediatePropagation()
	})
	d.On("click", ".nav-link-ajax", record(&calls, "second"))

	d.Dispatch(NewEvent("click", doc.Query("#sub")))

	assert.Equal(t, []string{"first"}, calls)
}

// TestDispatch_SurvivesContentSwap verifies bindings keep matching nodes inserted after registration.
func TestDispatch_SurvivesContentSwap(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	hits := 0
	d.On("click", "a.ajax-link", func(*Event, dom.Element) { hits++ })

	require.NoError(t, doc.Query("#main").SetInnerHTML(`<a class="ajax-link" id="late" href="/x/">x</a>`))
	d.Dispatch(NewEvent("click", doc.Query("#late")))

	assert.Equal(t, 1, hits)
}

func TestDispatch_OffAndTypeFilter(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	hits := 0
	off := d.On("click", "#outside", func(*Event, dom.Element) { hits++ })
	d.On("submit", "#outside", func(*Event, dom.Element) { t.Fatal("wrong event type dispatched") })

	d.Dispatch(NewEvent("click", doc.Query("#outside")))
	off()
	d.Dispatch(NewEvent("click", doc.Query("#outside")))

	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, d.Len())
}

// TestDispatch_PanicContained verifies a panicking handler does not stop later handlers.
func TestDispatch_PanicContained(t *testing.T) {
	doc := dom.MustParseString(page)
	d := NewDelegator(nil)
	ran := false
	d.On("click", "#outside", func(*Event, dom.Element) { panic("boom") })
	d.On("click", "", func(*Event, dom.Element) { ran = true })

	assert.NotPanics(t, func() { d.Dispatch(NewEvent("click", doc.Query("#outside"))) })
	assert.True(t, ran)
}

func TestEvent_PreventDefault(t *testing.T) {
	e := NewEvent("click", nil)
	assert.False(t, e.DefaultPrevented())
	e.PreventDefault()
	assert.True(t, e.DefaultPrevented())
}
