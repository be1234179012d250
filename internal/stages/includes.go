package stages

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitepress/internal/dom"
	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/markdown"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Includes rewrites inclusion placeholders with cached, path-normalized file
// content. Resolution is single-pass: a marker inside included content is
// left as-is rather than expanded recursively.
type Includes struct {
	// Attr is the marker attribute name; its data- prefixed form is accepted
	// as an alias.
	Attr string
	// RootDir is the working tree includes are read from.
	RootDir string
	// ConvertDisabled mirrors the directory-conversion toggle; it selects
	// which path-normalization rule applies to include targets.
	ConvertDisabled bool
}

func (s *Includes) Name() string { return "includes" }

func (s *Includes) attrNames() (string, string) {
	attr := s.Attr
	if attr == "" {
		attr = "include"
	}
	return attr, "data-" + attr
}

func (s *Includes) Run(_ context.Context, f *files.Record, st *store.Store) error {
	if !f.Transformable() {
		return nil
	}
	attr, alias := s.attrNames()
	if !strings.Contains(f.Source, attr) {
		return nil
	}

	doc, err := dom.Parse(f.Source)
	if err != nil {
		return err
	}

	markers := doc.Find(func(n *html.Node) bool {
		return dom.HasAttr(n, attr) || dom.HasAttr(n, alias)
	})
	if len(markers) == 0 {
		return nil
	}

	for _, marker := range markers {
		target, ok := dom.Attr(marker, attr)
		usedAttr := attr
		if !ok {
			target, _ = dom.Attr(marker, alias)
			usedAttr = alias
		}

		content, err := s.fetch(target, st)
		if err != nil {
			return err
		}

		if err := dom.InsertMarkupAfter(marker, content); err != nil {
			return err
		}
		copyMarkerAttrs(marker, usedAttr)
		dom.Remove(marker)

		slog.Debug("Resolved include", logfields.File(f.Path), logfields.Path(target))
	}

	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	f.Source = rendered
	return nil
}

// fetch returns the include content for a target path, reading and caching it
// on first use. An unreadable target is fatal: the page would otherwise ship
// with silently missing content.
func (s *Includes) fetch(target string, st *store.Store) (string, error) {
	resolved := s.resolveTarget(target)
	if content, ok := st.Include(resolved); ok {
		return content, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.RootDir, filepath.FromSlash(resolved)))
	if err != nil {
		return "", sperrors.WrapFatal(err, sperrors.CategoryInclude, "reading include target").WithContext("path", resolved)
	}

	content := string(raw)
	if path.Ext(resolved) == ".md" {
		content, err = markdown.Render(raw)
		if err != nil {
			return "", err
		}
	}

	st.PutInclude(resolved, content)
	return content, nil
}

// resolveTarget applies the three mutually exclusive path-normalization
// rules. Markdown targets are always used as-is; directory conversion only
// relocates .html files.
func (s *Includes) resolveTarget(target string) string {
	target = strings.TrimPrefix(strings.TrimSpace(target), "/")
	ext := path.Ext(target)

	switch {
	case ext == ".md":
		return target
	case !s.ConvertDisabled && ext != "":
		return strings.TrimSuffix(target, ext) + "/index.html"
	case s.ConvertDisabled && ext == "":
		return target + ".html"
	default:
		return target
	}
}

// copyMarkerAttrs copies the marker's remaining attributes onto the first
// valid element following it in document order. Metadata, script, style,
// template and title elements cannot carry visible attributes and are
// skipped.
func copyMarkerAttrs(marker *html.Node, markerAttr string) {
	var extra []html.Attribute
	for _, a := range marker.Attr {
		if a.Key == markerAttr {
			continue
		}
		extra = append(extra, a)
	}
	if len(extra) == 0 {
		return
	}

	target := firstValidAfter(marker)
	if target == nil {
		return
	}
	for _, a := range extra {
		dom.SetAttr(target, a.Key, a.Val)
	}
}

func firstValidAfter(marker *html.Node) *html.Node {
	for sib := marker.NextSibling; sib != nil; sib = sib.NextSibling {
		if found := firstValidIn(sib); found != nil {
			return found
		}
	}
	return nil
}

func firstValidIn(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if _, invalid := invalidAttrTargets[n.Data]; !invalid {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstValidIn(c); found != nil {
			return found
		}
	}
	return nil
}
