package stages

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitepress/internal/dom"
	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Inline replaces stylesheet links and script references carrying the inline
// marker attribute with the referenced file's content, embedded directly in
// the page. Content reads are cached in the shared store for the run.
type Inline struct {
	Attr    string
	RootDir string
}

func (s *Inline) Name() string { return "inline" }

func (s *Inline) attr() string {
	if s.Attr == "" {
		return "inline"
	}
	return s.Attr
}

func (s *Inline) Run(_ context.Context, f *files.Record, st *store.Store) error {
	if !f.Transformable() {
		return nil
	}
	attr := s.attr()
	if !strings.Contains(f.Source, attr) {
		return nil
	}

	doc, err := dom.Parse(f.Source)
	if err != nil {
		return err
	}

	markers := doc.Find(func(n *html.Node) bool {
		return dom.HasAttr(n, attr) && (n.Data == "link" || n.Data == "script")
	})
	if len(markers) == 0 {
		return nil
	}

	for _, marker := range markers {
		var ref, open, closing string
		switch marker.Data {
		case "link":
			ref, _ = dom.Attr(marker, "href")
			open, closing = "<style>", "</style>"
		case "script":
			ref, _ = dom.Attr(marker, "src")
			open, closing = "<script>", "</script>"
		}
		if ref == "" {
			continue
		}

		content, err := s.fetch(ref, st)
		if err != nil {
			return err
		}

		if err := dom.InsertMarkupAfter(marker, open+content+closing); err != nil {
			return err
		}
		dom.Remove(marker)
	}

	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	f.Source = rendered
	return nil
}

func (s *Inline) fetch(ref string, st *store.Store) (string, error) {
	rel := strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if content, ok := st.Inline(rel); ok {
		return content, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "reading inline asset").WithContext("path", rel)
	}
	st.PutInline(rel, string(raw))
	return string(raw), nil
}
