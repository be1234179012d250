package sitemap

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func TestGenerateRootPriority(t *testing.T) {
	out, err := Generate("https://example.com", []string{"index.html", "about/index.html"}, nil, testTime)
	require.NoError(t, err)

	assert.Contains(t, out, "<loc>https://example.com/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/about/</loc>")
	assert.Contains(t, out, "<priority>1.0</priority>")
	assert.Contains(t, out, "<priority>0.9</priority>")
	assert.Contains(t, out, "<lastmod>2025-03-14</lastmod>")
}

func TestGenerateIndexCollapse(t *testing.T) {
	out, err := Generate("https://example.com/", []string{"docs/guide/index.html", "contact.html"}, nil, testTime)
	require.NoError(t, err)

	assert.Contains(t, out, "<loc>https://example.com/docs/guide/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/contact.html</loc>")
}

func TestGenerateDefaultExcludes(t *testing.T) {
	pages := []string{
		"index.html",
		"includes/nav/index.html",
		"assets/sprite.html",
		"404.html",
		"style.css",
	}
	out, err := Generate("https://example.com", pages, nil, testTime)
	require.NoError(t, err)

	assert.Contains(t, out, "<loc>https://example.com/</loc>")
	assert.NotContains(t, out, "includes")
	assert.NotContains(t, out, "assets")
	assert.NotContains(t, out, "404")
	assert.NotContains(t, out, "style.css")
}

func TestGenerateUserExcludes(t *testing.T) {
	pages := []string{"index.html", "drafts/wip/index.html"}
	out, err := Generate("https://example.com", pages, []string{"drafts/"}, testTime)
	require.NoError(t, err)

	assert.NotContains(t, out, "drafts")
	assert.Equal(t, 1, strings.Count(out, "<url>"))
}

func TestGenerateEmpty(t *testing.T) {
	out, err := Generate("https://example.com", nil, nil, testTime)
	require.NoError(t, err)
	assert.Contains(t, out, "urlset")
	assert.NotContains(t, out, "<url>")
}
