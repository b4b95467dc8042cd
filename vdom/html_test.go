package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHTML_EscapesContent verifies text is escaped and attributes are sorted.
func TestHTML_EscapesContent(t *testing.T) {
	n := Div(map[string]any{"role": "alert", "class": "alert"},
		Text("<b>oops</b> & more"),
	)
	assert.Equal(t, `<div class="alert" role="alert">&lt;b&gt;oops&lt;/b&gt; &amp; more</div>`, n.HTML())
}

// TestHTML_BooleanAttributes verifies true renders bare and false is omitted.
func TestHTML_BooleanAttributes(t *testing.T) {
	n := Button("", map[string]any{"type": "button", "disabled": true, "hidden": false})
	assert.Equal(t, `<button disabled="" type="button"></button>`, n.HTML())
}

func TestHTML_Nested(t *testing.T) {
	n := Div(map[string]any{"class": "ajax-loading"},
		Div(map[string]any{"class": "spinner"}, Span("Loading...", map[string]any{"class": "visually-hidden"})),
		Paragraph("Loading content...", nil),
	)
	assert.Equal(t,
		`<div class="ajax-loading"><div class="spinner"><span class="visually-hidden">Loading...</span></div><p>Loading content...</p></div>`,
		n.HTML())
}

func TestHTML_Siblings(t *testing.T) {
	assert.Equal(t, `<i class="fas fa-check"></i><span>Done</span>`, HTML(Icon("fas fa-check"), Span("Done", nil)))
	assert.Equal(t, "", (*VNode)(nil).HTML())
}
