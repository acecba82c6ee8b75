package htmldoc

import (
	"golang.org/x/net/html"
)

// Attr retrieves an attribute value from an element.
func Attr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the element carries the attribute, even with an empty value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces an attribute value.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// MoveChildren moves every child of src, in order, to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Replace puts replacement at old's position and detaches old.
func Replace(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Rename substitutes el with a new element of the given tag carrying a copy of
// el's attributes and all of its children, and returns the new element.
func Rename(el *html.Node, tag string) *html.Node {
	attrs := make([]html.Attribute, len(el.Attr))
	copy(attrs, el.Attr)
	renamed := NewElement(tag, attrs...)
	MoveChildren(renamed, el)
	Replace(el, renamed)
	return renamed
}
