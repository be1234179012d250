package stages

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitepress/internal/dom"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// BundleAttr is the marker attribute naming an element's bundle group.
const BundleAttr = "bundle"

// NoMinifyAttr marks an element's source as pre-minified (vendored code); the
// build phase concatenates it verbatim.
const NoMinifyAttr = "bundle-no-minify"

var groupCaser = cases.Lower(language.Und)

// NormalizeGroup lowercases a group name and replaces spaces with hyphens so
// authors can write `bundle="Site Vendor"` and still share a group with
// `bundle="site-vendor"`.
func NormalizeGroup(name string) string {
	return strings.ReplaceAll(groupCaser.String(strings.TrimSpace(name)), " ", "-")
}

// BundleAdd is the per-file phase of the bundle engine: it accumulates
// grouped asset references into the shared store and rewrites the document to
// reference the eventual bundle file. The referenced path does not exist yet;
// the build phase materializes it before the run terminates.
type BundleAdd struct {
	// DistPath is the dist-root-relative directory bundle outputs live under.
	DistPath string
	// Enabled reflects the global bundling toggle resolved from config.
	Enabled bool
}

func (s *BundleAdd) Name() string { return "bundle" }

type bundleMarker struct {
	node  *html.Node
	kind  store.Kind
	group string
	ref   string
	// seq is the per-group, per-page sequence index.
	seq int
}

func (s *BundleAdd) Run(_ context.Context, f *files.Record, st *store.Store) error {
	if !s.Enabled || !f.Transformable() {
		return nil
	}
	if !strings.Contains(f.Source, BundleAttr) {
		return nil
	}

	doc, err := dom.Parse(f.Source)
	if err != nil {
		return err
	}

	markers := s.collect(doc)
	if len(markers) == 0 {
		return nil
	}

	// First pass: accumulate entries and per-page sequence indexes.
	seq := map[store.Kind]map[string]int{}
	for i := range markers {
		m := &markers[i]
		if seq[m.kind] == nil {
			seq[m.kind] = map[string]int{}
		}
		m.seq = seq[m.kind][m.group]
		seq[m.kind][m.group]++

		entry := store.Entry{
			Path:   strings.TrimPrefix(m.ref, "/"),
			Minify: !dom.HasAttr(m.node, NoMinifyAttr),
		}
		if st.AddBundleEntry(m.kind, m.group, entry) {
			slog.Debug("Accumulated bundle entry",
				logfields.Kind(string(m.kind)), logfields.Group(m.group), logfields.Path(entry.Path))
		}
	}

	// Second pass: the reference element replaces the last occurrence of its
	// group on this page, so anything declared after that point still loads
	// after the bundled sources. Every marker is then removed.
	for _, m := range markers {
		if m.seq == seq[m.kind][m.group]-1 {
			if err := dom.InsertMarkupBefore(m.node, s.referenceMarkup(m.kind, m.group)); err != nil {
				return err
			}
		}
		dom.Remove(m.node)
	}

	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	f.Source = rendered
	return nil
}

func (s *BundleAdd) collect(doc *dom.Document) []bundleMarker {
	var markers []bundleMarker
	for _, n := range doc.FindByAttr(BundleAttr) {
		group, _ := dom.Attr(n, BundleAttr)
		group = NormalizeGroup(group)
		if group == "" {
			continue
		}

		var kind store.Kind
		var ref string
		switch n.Data {
		case "link":
			kind = store.KindCSS
			ref, _ = dom.Attr(n, "href")
		case "script":
			kind = store.KindJS
			ref, _ = dom.Attr(n, "src")
		default:
			continue
		}
		if ref == "" {
			continue
		}
		markers = append(markers, bundleMarker{node: n, kind: kind, group: group, ref: ref})
	}
	return markers
}

// BundlePath returns the dist-relative output path for a group and kind.
func BundlePath(distPath, group string, kind store.Kind) string {
	return path.Join(strings.TrimPrefix(distPath, "/"), fmt.Sprintf("bundle-%s.%s", group, kind.Extension()))
}

func (s *BundleAdd) referenceMarkup(kind store.Kind, group string) string {
	href := "/" + BundlePath(s.DistPath, group, kind)
	if kind == store.KindCSS {
		return fmt.Sprintf(`<link rel="stylesheet" href=%q>`, href)
	}
	return fmt.Sprintf(`<script src=%q></script>`, href)
}
