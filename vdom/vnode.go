// Package vdom builds small element trees in Go and serializes them to HTML
// for insertion into the page (loading indicator, error notice, overlays).
package vdom

// VNode represents a virtual DOM node.
type VNode struct {
	Tag        string         // The HTML tag name, or "#text" for a bare text node
	Attributes map[string]any // The attributes of the node
	Children   []*VNode       // The child nodes
	Content    string         // Text content, rendered escaped before children
}

// NewVNode creates a new VNode.
func NewVNode(tag string, attributes map[string]any, children []*VNode, content string) *VNode {
	return &VNode{
		Tag:        tag,
		Attributes: attributes,
		Children:   children,
		Content:    content,
	}
}

// Text creates a bare text node.
func Text(s string) *VNode {
	return NewVNode("#text", nil, nil, s)
}

// Div creates a <div> VNode with the given children.
func Div(attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode("div", attrs, children, "")
}

// Span creates a <span> VNode with the given text.
func Span(text string, attrs map[string]any) *VNode {
	return NewVNode("span", attrs, nil, text)
}

// Paragraph creates a <p> VNode with the given text.
func Paragraph(text string, attrs map[string]any) *VNode {
	return NewVNode("p", attrs, nil, text)
}

// Icon creates an empty <i> VNode carrying icon classes.
func Icon(class string) *VNode {
	return NewVNode("i", map[string]any{"class": class}, nil, "")
}

// Button creates a <button> VNode.
func Button(content string, attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode("button", attrs, children, content)
}
