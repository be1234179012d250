package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, paths map[string]string) {
	t.Helper()
	for p, content := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestDiscoverOrdersIncludesFirst(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":         "<h1>home</h1>",
		"about.html":         "<h1>about</h1>",
		"includes/nav.html":  "<nav></nav>",
		"includes/foot.html": "<footer></footer>",
		"css/site.css":       "body{}",
	})

	records, err := Discover(src, nil)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, "includes/foot.html", records[0].Path)
	assert.Equal(t, "includes/nav.html", records[1].Path)
	assert.Equal(t, "about.html", records[2].Path)
	assert.Equal(t, "css/site.css", records[3].Path)
	assert.Equal(t, "index.html", records[4].Path)
}

func TestDiscoverExcludesPrefixes(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":     "<h1>home</h1>",
		"drafts/wip.html": "<h1>wip</h1>",
	})

	records, err := Discover(src, []string{"drafts"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "index.html", records[0].Path)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
}
