package stages

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

func TestNormalizeGroup(t *testing.T) {
	assert.Equal(t, "vendor", NormalizeGroup("Vendor"))
	assert.Equal(t, "site-vendor", NormalizeGroup("Site Vendor"))
	assert.Equal(t, "café", NormalizeGroup("CAFÉ"))
	assert.Equal(t, "", NormalizeGroup("  "))
}

func TestBundleAddAccumulatesAndRewrites(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: true}
	st := store.New()

	rec := files.NewRecord("index.html")
	rec.Source = `<head>` +
		`<script bundle="vendor" src="/js/a.js"></script>` +
		`<script bundle="vendor" src="/js/b.js"></script>` +
		`<script bundle="vendor" src="/js/c.js"></script>` +
		`</head>`

	require.NoError(t, stage.Run(context.Background(), rec, st))

	entries := st.BundleGroups(store.KindJS)["vendor"]
	require.Len(t, entries, 3)
	assert.Equal(t, "js/a.js", entries[0].Path)
	assert.Equal(t, "js/b.js", entries[1].Path)
	assert.Equal(t, "js/c.js", entries[2].Path)

	// All markers removed, exactly one reference inserted.
	assert.NotContains(t, rec.Source, "/js/a.js")
	assert.NotContains(t, rec.Source, "bundle=")
	assert.Equal(t, 1, strings.Count(rec.Source, `src="/bundles/bundle-vendor.js"`))
}

func TestBundleAddInsertionAtLastOccurrence(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: true}
	st := store.New()

	rec := files.NewRecord("index.html")
	rec.Source = `<script bundle="vendor" src="/js/a.js"></script>` +
		`<script src="/js/standalone.js"></script>` +
		`<script bundle="vendor" src="/js/b.js"></script>` +
		`<script src="/js/dependent.js"></script>`

	require.NoError(t, stage.Run(context.Background(), rec, st))

	// The reference sits where the last vendor marker was: after the
	// standalone script and before the dependent one.
	wantOrder := []string{
		`src="/js/standalone.js"`,
		`src="/bundles/bundle-vendor.js"`,
		`src="/js/dependent.js"`,
	}
	last := -1
	for _, needle := range wantOrder {
		idx := strings.Index(rec.Source, needle)
		require.GreaterOrEqual(t, idx, 0, needle)
		assert.Greater(t, idx, last, "order violated at %s", needle)
		last = idx
	}
}

func TestBundleAddDedupAcrossPages(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: true}
	st := store.New()

	for _, page := range []string{"a.html", "b.html"} {
		rec := files.NewRecord(page)
		rec.Source = `<script bundle="vendor" src="/js/lib.js"></script>`
		require.NoError(t, stage.Run(context.Background(), rec, st))
	}

	entries := st.BundleGroups(store.KindJS)["vendor"]
	require.Len(t, entries, 1)
	assert.Equal(t, "js/lib.js", entries[0].Path)
}

func TestBundleAddMixedKindsAndGroups(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: true}
	st := store.New()

	rec := files.NewRecord("index.html")
	rec.Source = `<link bundle="Main Theme" rel="stylesheet" href="/css/site.css">` +
		`<script bundle="app" src="/js/app.js"></script>`

	require.NoError(t, stage.Run(context.Background(), rec, st))

	css := st.BundleGroups(store.KindCSS)
	require.Contains(t, css, "main-theme")
	assert.Contains(t, rec.Source, `href="/bundles/bundle-main-theme.css"`)
	assert.Contains(t, rec.Source, `src="/bundles/bundle-app.js"`)
}

func TestBundleAddNoMinifyMarker(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: true}
	st := store.New()

	rec := files.NewRecord("index.html")
	rec.Source = `<script bundle="vendor" bundle-no-minify src="/js/vendored.min.js"></script>` +
		`<script bundle="vendor" src="/js/app.js"></script>`

	require.NoError(t, stage.Run(context.Background(), rec, st))

	entries := st.BundleGroups(store.KindJS)["vendor"]
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Minify)
	assert.True(t, entries[1].Minify)
}

func TestBundleAddDisabled(t *testing.T) {
	stage := &BundleAdd{DistPath: "/bundles", Enabled: false}
	st := store.New()

	rec := files.NewRecord("index.html")
	rec.Source = `<script bundle="vendor" src="/js/a.js"></script>`
	original := rec.Source

	require.NoError(t, stage.Run(context.Background(), rec, st))
	assert.Equal(t, original, rec.Source)
	assert.Empty(t, st.Kinds())
}

func TestBundlePath(t *testing.T) {
	assert.Equal(t, "bundles/bundle-vendor.js", BundlePath("/bundles", "vendor", store.KindJS))
	assert.Equal(t, "assets/bundle-main.css", BundlePath("assets", "main", store.KindCSS))
}
