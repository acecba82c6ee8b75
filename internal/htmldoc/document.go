// Package htmldoc wraps the golang.org/x/net/html node tree with the queries and
// tree rewrites used by the rule set and the corrector.
package htmldoc

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// Document is a parsed HTML document. It is owned by a single caller and is
// not safe for concurrent mutation.
type Document struct {
	root *html.Node
}

// Parse builds a Document from r using the lenient HTML5 parser.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to parse HTML").Build()
	}
	return &Document{root: root}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Find returns the first element with the given tag in document order, or nil.
func (d *Document) Find(tag string) *html.Node {
	return FindWithin(d.root, tag)
}

// Has reports whether at least one element with one of the tags exists.
func (d *Document) Has(tags ...string) bool {
	return FindWithin(d.root, tags...) != nil
}

// FindAll returns every element whose tag is one of tags, in document order.
func (d *Document) FindAll(tags ...string) []*html.Node {
	return d.FindAllFunc(func(n *html.Node) bool { return IsElement(n, tags...) })
}

// FindAllFunc returns every element node matching pred, in document order.
func (d *Document) FindAllFunc(pred func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}

// Body returns the <body> element, or nil when the tree has none.
func (d *Document) Body() *html.Node {
	return d.Find("body")
}

// EnsureBody returns the <body> element, creating it under <html> (or the
// document node) when missing.
func (d *Document) EnsureBody() *html.Node {
	if body := d.Body(); body != nil {
		return body
	}
	parent := d.Find("html")
	if parent == nil {
		parent = d.root
	}
	body := NewElement("body")
	parent.AppendChild(body)
	return body
}

// TextNodes returns the text nodes of the document in order, skipping the
// contents of script and style elements.
func (d *Document) TextNodes() []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if IsElement(n, "script", "style") {
			return
		}
		if n.Type == html.TextNode {
			nodes = append(nodes, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return nodes
}

// Text joins the document's text nodes with newlines.
func (d *Document) Text() string {
	nodes := d.TextNodes()
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Data)
	}
	return strings.Join(parts, "\n")
}

// Render serializes the document to w.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String serializes the document. Rendering into memory cannot fail for a
// parser-built tree, so errors collapse to an empty string.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// FindWithin returns the first descendant of n whose tag is one of tags.
func FindWithin(n *html.Node, tags ...string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tags...) {
			return c
		}
		if found := FindWithin(c, tags...); found != nil {
			return found
		}
	}
	return nil
}

// IsElement reports whether n is an element with one of the given tags.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, tag := range tags {
		if n.Data == tag {
			return true
		}
	}
	return false
}

// IsWithin reports whether n is ancestor itself or one of its descendants.
func IsWithin(n, ancestor *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
