package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestParse_LenientFragment(t *testing.T) {
	doc := mustParse(t, `<p>unclosed<div>x`)

	require.NotNil(t, doc.Body())
	assert.NotNil(t, doc.Find("p"))
	assert.NotNil(t, doc.Find("div"))
}

func TestFindAll_DocumentOrder(t *testing.T) {
	doc := mustParse(t, `<h2>a</h2><p><h1>b</h1></p><h3>c</h3>`)

	found := doc.FindAll("h1", "h2", "h3")
	require.Len(t, found, 3)
	assert.Equal(t, "h2", found[0].Data)
	assert.Equal(t, "h1", found[1].Data)
	assert.Equal(t, "h3", found[2].Data)
}

func TestHas(t *testing.T) {
	doc := mustParse(t, `<header>x</header>`)

	assert.True(t, doc.Has("header"))
	assert.False(t, doc.Has("footer"))
}

func TestFindWithin(t *testing.T) {
	doc := mustParse(t, `<table><caption>c</caption><tr><td>1</td></tr></table><caption>stray</caption>`)

	table := doc.Find("table")
	require.NotNil(t, table)
	assert.NotNil(t, FindWithin(table, "caption"))
	assert.Nil(t, FindWithin(table, "thead"))
}

func TestTextNodes_SkipScriptAndStyle(t *testing.T) {
	doc := mustParse(t, `<body><p>one</p><script>var x = "two";</script><style>p{}</style><span>three</span></body>`)

	assert.Equal(t, "one\nthree", doc.Text())
}

func TestAttrHelpers(t *testing.T) {
	doc := mustParse(t, `<img alt="" src="a.png">`)
	img := doc.Find("img")
	require.NotNil(t, img)

	val, ok := Attr(img, "alt")
	assert.True(t, ok)
	assert.Empty(t, val)
	assert.True(t, HasAttr(img, "alt"))
	assert.False(t, HasAttr(img, "title"))

	SetAttr(img, "alt", "logo")
	SetAttr(img, "title", "t")
	val, _ = Attr(img, "alt")
	assert.Equal(t, "logo", val)
	assert.True(t, HasAttr(img, "title"))
}

func TestRename_KeepsAttributesAndChildren(t *testing.T) {
	doc := mustParse(t, `<body><div id="nav-1" class="x"><a href="/">home</a></div></body>`)
	div := doc.Find("div")
	require.NotNil(t, div)

	nav := Rename(div, "nav")

	assert.Nil(t, doc.Find("div"))
	assert.Same(t, nav, doc.Find("nav"))
	id, _ := Attr(nav, "id")
	assert.Equal(t, "nav-1", id)
	assert.Equal(t, `<html><head></head><body><nav id="nav-1" class="x"><a href="/">home</a></nav></body></html>`, doc.String())
}

func TestMoveChildrenAndDetach(t *testing.T) {
	doc := mustParse(t, `<body><section><p>a</p><p>b</p></section></body>`)
	section := doc.Find("section")
	require.NotNil(t, section)

	main := NewElement("main")
	doc.Body().AppendChild(main)
	MoveChildren(main, section)
	Detach(section)

	assert.Equal(t, `<html><head></head><body><main><p>a</p><p>b</p></main></body></html>`, doc.String())
}

func TestEnsureBody_ReturnsExisting(t *testing.T) {
	doc := mustParse(t, `<p>x</p>`)

	assert.Same(t, doc.Body(), doc.EnsureBody())
}

func TestIsWithin(t *testing.T) {
	doc := mustParse(t, `<nav><ul><li>x</li></ul></nav><p>y</p>`)
	nav := doc.Find("nav")
	li := doc.Find("li")
	p := doc.Find("p")

	assert.True(t, IsWithin(li, nav))
	assert.True(t, IsWithin(nav, nav))
	assert.False(t, IsWithin(p, nav))
}

func TestNewElement_SetsAtom(t *testing.T) {
	el := NewElement("figcaption")

	assert.Equal(t, html.ElementNode, el.Type)
	assert.NotZero(t, el.DataAtom)
	assert.Equal(t, "figcaption", el.DataAtom.String())
}
