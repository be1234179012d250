package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

func defaultActiveLinks() *ActiveLinks {
	return &ActiveLinks{Config: config.ActiveLinkConfig{
		Type:        config.ActiveLinkClass,
		ActiveState: "active",
		ParentState: "active-parent",
	}}
}

func TestClassify(t *testing.T) {
	current := files.PageSegments("/docs/guide/install")

	cases := []struct {
		href string
		want LinkState
	}{
		{"/docs/guide/install", LinkActive},
		{"/docs/guide/install.html", LinkActive},
		{"/docs/guide", LinkActiveParent},
		{"/docs", LinkActiveParent},
		{"/docs/other", LinkInactive},
		{"/docs/guide/install/deep", LinkInactive},
		{"/", LinkInactive},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(current, files.PageSegments(tc.href)), tc.href)
	}
}

func TestClassifyRootPage(t *testing.T) {
	current := files.PageSegments("index.html")
	assert.Equal(t, LinkActive, Classify(current, files.PageSegments("/")))
	assert.Equal(t, LinkInactive, Classify(current, files.PageSegments("/docs")))
}

func TestActiveLinksClassOutput(t *testing.T) {
	stage := defaultActiveLinks()

	rec := files.NewRecord("docs/guide/install/index.html")
	rec.Source = `<nav>` +
		`<a href="/docs/guide/install">here</a>` +
		`<a class="nav" href="/docs/guide">up</a>` +
		`<a href="/docs/other">other</a>` +
		`</nav>`

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Contains(t, rec.Source, `<a href="/docs/guide/install" class="active">here</a>`)
	assert.Contains(t, rec.Source, `<a class="nav active-parent" href="/docs/guide">up</a>`)
	assert.Contains(t, rec.Source, `<a href="/docs/other">other</a>`)
}

func TestActiveLinksAttributeOutput(t *testing.T) {
	stage := &ActiveLinks{Config: config.ActiveLinkConfig{
		Type:        config.ActiveLinkAttribute,
		ActiveState: "data-active",
		ParentState: "data-active-parent",
	}}

	rec := files.NewRecord("docs/index.html")
	rec.Source = `<a href="/docs">docs</a>`

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Contains(t, rec.Source, `data-active=""`)
}

func TestActiveLinksSkipsForeignHrefs(t *testing.T) {
	stage := defaultActiveLinks()

	rec := files.NewRecord("docs/index.html")
	rec.Source = `<a href="https://example.com/docs">ext</a><a href="#top">anchor</a><a href="mailto:x@y">mail</a>`
	original := rec.Source

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	// Nothing classified, so the source is untouched.
	assert.Equal(t, original, rec.Source)
}
