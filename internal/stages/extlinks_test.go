package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

func TestExternalLinksAnnotated(t *testing.T) {
	stage := &ExternalLinks{BaseHost: "example.com"}

	rec := files.NewRecord("index.html")
	rec.Source = `<a href="https://other.org/page">ext</a>` +
		`<a href="https://example.com/docs">own</a>` +
		`<a href="/local">local</a>`

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Contains(t, rec.Source, `<a href="https://other.org/page" target="_blank" rel="noopener noreferrer">ext</a>`)
	assert.Contains(t, rec.Source, `<a href="https://example.com/docs">own</a>`)
	assert.Contains(t, rec.Source, `<a href="/local">local</a>`)
}

func TestExternalLinksKeepsExistingTargetAndRel(t *testing.T) {
	stage := &ExternalLinks{}

	rec := files.NewRecord("index.html")
	rec.Source = `<a href="https://other.org" target="_self" rel="me">x</a>`

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Contains(t, rec.Source, `target="_self"`)
	assert.Contains(t, rec.Source, `rel="me"`)
	assert.NotContains(t, rec.Source, "_blank")
}

func TestExternalLinksEmptyBaseHostTreatsAllAbsoluteAsForeign(t *testing.T) {
	stage := &ExternalLinks{}

	rec := files.NewRecord("index.html")
	rec.Source = `<a href="http://anywhere.net">x</a>`

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Contains(t, rec.Source, `target="_blank"`)
}

func TestExternalLinksNoAnchorsIsNoop(t *testing.T) {
	stage := &ExternalLinks{}
	rec := files.NewRecord("index.html")
	rec.Source = `<p>no links here</p>`
	original := rec.Source

	require.NoError(t, stage.Run(context.Background(), rec, store.New()))
	assert.Equal(t, original, rec.Source)
}
