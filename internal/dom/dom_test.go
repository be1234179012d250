package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDetectsFullDocument(t *testing.T) {
	full, err := Parse("<!DOCTYPE html><html><head><title>x</title></head><body><p>hi</p></body></html>")
	require.NoError(t, err)
	assert.True(t, full.IsFullDocument())

	frag, err := Parse("<p>hi</p>")
	require.NoError(t, err)
	assert.False(t, frag.IsFullDocument())
}

func TestRenderFullDocumentKeepsDoctype(t *testing.T) {
	doc, err := Parse("<!DOCTYPE html><html><head></head><body><p>hi</p></body></html>")
	require.NoError(t, err)

	out, err := doc.Render()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<p>hi</p>")
}

func TestRenderFragmentHasNoHTMLWrapper(t *testing.T) {
	doc, err := Parse(`<link rel="stylesheet" href="a.css"><div class="card">content</div>`)
	require.NoError(t, err)

	out, err := doc.Render()
	require.NoError(t, err)
	// The parser files the link under head and the div under body; the
	// serialization is the concatenation of both, with no synthetic wrapper.
	assert.Equal(t, `<link rel="stylesheet" href="a.css"/><div class="card">content</div>`, out)
	assert.NotContains(t, out, "<html")
	assert.NotContains(t, out, "<body")
}

func TestFindByAttrDocumentOrder(t *testing.T) {
	doc, err := Parse(`<div include="a.html"></div><p>x</p><span include="b.html"></span>`)
	require.NoError(t, err)

	nodes := doc.FindByAttr("include")
	require.Len(t, nodes, 2)
	assert.Equal(t, "div", nodes[0].Data)
	assert.Equal(t, "span", nodes[1].Data)
}

func TestAttrHelpers(t *testing.T) {
	doc, err := Parse(`<a href="/docs">Docs</a>`)
	require.NoError(t, err)

	a := doc.FindByTag("a")[0]
	href, ok := Attr(a, "href")
	require.True(t, ok)
	assert.Equal(t, "/docs", href)

	SetAttr(a, "class", "nav")
	SetAttr(a, "class", "nav active")
	got, _ := Attr(a, "class")
	assert.Equal(t, "nav active", got)

	RemoveAttr(a, "href")
	assert.False(t, HasAttr(a, "href"))
}

func TestInsertMarkupAfterPreservesOrder(t *testing.T) {
	doc, err := Parse(`<div id="marker"></div><p>after</p>`)
	require.NoError(t, err)

	ref := doc.FindByTag("div")[0]
	require.NoError(t, InsertMarkupAfter(ref, "<span>one</span><span>two</span>"))

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, `<div id="marker"></div><span>one</span><span>two</span><p>after</p>`, out)
}

func TestInsertMarkupBefore(t *testing.T) {
	doc, err := Parse(`<script src="app.js"></script>`)
	require.NoError(t, err)

	ref := doc.FindByTag("script")[0]
	require.NoError(t, InsertMarkupBefore(ref, `<script src="bundle.js"></script>`))

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, `<script src="bundle.js"></script><script src="app.js"></script>`, out)
}

func TestRemove(t *testing.T) {
	doc, err := Parse(`<div include="x"></div><p>keep</p>`)
	require.NoError(t, err)

	Remove(doc.FindByTag("div")[0])

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, "<p>keep</p>", out)
}

func TestText(t *testing.T) {
	doc, err := Parse(`<p>Hello <b>world</b></p>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", Text(doc.FindByTag("p")[0]))
}
