package dom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Compile-time assertions for the in-memory implementation.
var (
	_ Document = (*MemoryDocument)(nil)
	_ Scroller = (*MemoryDocument)(nil)
	_ Element  = (*node)(nil)
)

// MemoryDocument is a Document held entirely in Go, parsed with
// golang.org/x/net/html and queried with goquery selectors.
type MemoryDocument struct {
	root     *html.Node
	scrolled []Element
}

// Parse builds a MemoryDocument from a full HTML document.
func Parse(r io.Reader) (*MemoryDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &MemoryDocument{root: root}, nil
}

// MustParseString is Parse for literal markup, intended for tests and fixtures.
func MustParseString(markup string) *MemoryDocument {
	d, err := Parse(strings.NewReader(markup))
	if err != nil {
		panic(err)
	}
	return d
}

// Root returns the <html> element.
func (d *MemoryDocument) Root() Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return wrap(c)
		}
	}
	return nil
}

func (d *MemoryDocument) Query(selector string) Element {
	return first(selection(d.root).Find(selector))
}

func (d *MemoryDocument) QueryAll(selector string) []Element {
	return all(selection(d.root).Find(selector))
}

// ScrollToTop records the scroll request; there is no viewport in memory.
func (d *MemoryDocument) ScrollToTop(el Element) {
	d.scrolled = append(d.scrolled, el)
}

// ScrollCount returns how many times ScrollToTop was called.
func (d *MemoryDocument) ScrollCount() int {
	return len(d.scrolled)
}

// HTML serializes the whole document.
func (d *MemoryDocument) HTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// node wraps an *html.Node element.
type node struct {
	n *html.Node
}

func wrap(n *html.Node) Element {
	if n == nil {
		return nil
	}
	return &node{n: n}
}

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

func first(s *goquery.Selection) Element {
	if s.Length() == 0 {
		return nil
	}
	return wrap(s.Nodes[0])
}

func all(s *goquery.Selection) []Element {
	out := make([]Element, 0, s.Length())
	for _, n := range s.Nodes {
		out = append(out, wrap(n))
	}
	return out
}

func (e *node) Matches(selector string) bool {
	return selection(e.n).Is(selector)
}

func (e *node) Closest(selector string) Element {
	return first(selection(e.n).Closest(selector))
}

func (e *node) Query(selector string) Element {
	return first(selection(e.n).Find(selector))
}

func (e *node) QueryAll(selector string) []Element {
	return all(selection(e.n).Find(selector))
}

func (e *node) Parent() Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return wrap(p)
}

func (e *node) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *node) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *node) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *node) setClasses(cs []string) {
	e.SetAttr("class", strings.Join(cs, " "))
}

func (e *node) HasClass(name string) bool {
	return slices.Contains(e.classes(), name)
}

func (e *node) AddClass(name string) {
	cs := e.classes()
	if slices.Contains(cs, name) {
		return
	}
	e.setClasses(append(cs, name))
}

func (e *node) RemoveClass(name string) {
	cs := e.classes()
	if !slices.Contains(cs, name) {
		return
	}
	e.setClasses(slices.DeleteFunc(cs, func(c string) bool { return c == name }))
}

func (e *node) ToggleClass(name string) bool {
	if e.HasClass(name) {
		e.RemoveClass(name)
		return false
	}
	e.AddClass(name)
	return true
}

func (e *node) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func (e *node) parseChildren(markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     e.n.Data,
		DataAtom: e.n.DataAtom,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

func (e *node) SetInnerHTML(markup string) error {
	nodes, err := e.parseChildren(markup)
	if err != nil {
		return err
	}
	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
	for _, c := range nodes {
		e.n.AppendChild(c)
	}
	return nil
}

func (e *node) PrependHTML(markup string) error {
	nodes, err := e.parseChildren(markup)
	if err != nil {
		return err
	}
	ref := e.n.FirstChild
	for _, c := range nodes {
		if ref == nil {
			e.n.AppendChild(c)
		} else {
			e.n.InsertBefore(c, ref)
		}
	}
	return nil
}

func (e *node) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

func (e *node) Same(other Element) bool {
	o, ok := other.(*node)
	return ok && o.n == e.n
}
