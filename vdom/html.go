package vdom

import (
	"bytes"
	"fmt"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML serializes the tree. Attribute order is sorted for stable output.
func (v *VNode) HTML() string {
	n := v.toNode()
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// HTML serializes a list of sibling nodes.
func HTML(nodes ...*VNode) string {
	var buf bytes.Buffer
	for _, v := range nodes {
		buf.WriteString(v.HTML())
	}
	return buf.String()
}

func (v *VNode) toNode() *html.Node {
	if v == nil {
		return nil
	}
	if v.Tag == "#text" {
		return &html.Node{Type: html.TextNode, Data: v.Content}
	}

	n := &html.Node{Type: html.ElementNode, Data: v.Tag, DataAtom: atom.Lookup([]byte(v.Tag))}
	keys := make([]string, 0, len(v.Attributes))
	for k := range v.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := v.Attributes[k].(type) {
		case bool:
			// Boolean attributes are present without a value when true, omitted when false.
			if val {
				n.Attr = append(n.Attr, html.Attribute{Key: k})
			}
		case nil:
		default:
			n.Attr = append(n.Attr, html.Attribute{Key: k, Val: fmt.Sprint(val)})
		}
	}

	if v.Content != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v.Content})
	}
	for _, c := range v.Children {
		if cn := c.toNode(); cn != nil {
			n.AppendChild(cn)
		}
	}
	return n
}
