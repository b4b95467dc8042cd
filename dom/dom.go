// Package dom is the minimal view of the page that the navigation engine
// reads and mutates. It has no build tags: the in-memory implementation
// (Document) backs native tests and the browser implementation lives in
// browser.go behind js/wasm.
package dom

// Element is a single element node in the page.
//
// Implementations return a nil Element (not a typed nil) when a lookup
// finds nothing, so callers can compare against nil directly.
type Element interface {
	// Matches reports whether the element itself matches the CSS selector.
	Matches(selector string) bool

	// Closest returns the element or its nearest ancestor matching selector.
	Closest(selector string) Element

	// Query returns the first descendant matching selector.
	Query(selector string) Element

	// QueryAll returns every descendant matching selector in document order.
	QueryAll(selector string) []Element

	// Parent returns the parent element, or nil at the top of the tree.
	Parent() Element

	Attr(name string) (string, bool)
	SetAttr(name, value string)

	HasClass(name string) bool
	AddClass(name string)
	RemoveClass(name string)
	// ToggleClass flips the class and returns whether it is now present.
	ToggleClass(name string) bool

	// InnerHTML serializes the element's children.
	InnerHTML() string

	// SetInnerHTML replaces all children with the parsed markup.
	SetInnerHTML(markup string) error

	// PrependHTML inserts the parsed markup before the first child.
	PrependHTML(markup string) error

	// Remove detaches the element from its parent.
	Remove()

	// Same reports whether other refers to the same underlying node.
	Same(other Element) bool
}

// Document is the persistent root of the page. Handlers that must survive
// fragment swaps are bound against it, never against swapped nodes.
type Document interface {
	Root() Element
	Query(selector string) Element
	QueryAll(selector string) []Element
}

// Scroller moves the viewport.
type Scroller interface {
	ScrollToTop(el Element)
}

// Contains reports whether any element in els is the same node as target.
func Contains(els []Element, target Element) bool {
	if target == nil {
		return false
	}
	for _, el := range els {
		if el.Same(target) {
			return true
		}
	}
	return false
}
