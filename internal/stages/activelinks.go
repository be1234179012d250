package stages

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/dom"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// LinkState classifies a navigation link against the current page.
type LinkState int

const (
	LinkInactive LinkState = iota
	LinkActive
	LinkActiveParent
)

// ActiveLinks marks navigation links as active or ancestor-active based on
// the current file's path. It is a pure function over (page path, anchors);
// inactive links are left untouched.
type ActiveLinks struct {
	Config config.ActiveLinkConfig
}

func (s *ActiveLinks) Name() string { return "activelinks" }

func (s *ActiveLinks) Run(_ context.Context, f *files.Record, _ *store.Store) error {
	if !f.Transformable() {
		return nil
	}

	doc, err := dom.Parse(f.Source)
	if err != nil {
		return err
	}

	current := files.PageSegments(f.Path)
	changed := false

	for _, a := range doc.FindByTag("a") {
		href, ok := dom.Attr(a, "href")
		if !ok || !siteLocal(href) {
			continue
		}
		switch Classify(current, files.PageSegments(href)) {
		case LinkActive:
			s.mark(a, s.Config.ActiveState)
			changed = true
		case LinkActiveParent:
			s.mark(a, s.Config.ParentState)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	f.Source = rendered
	return nil
}

// Classify compares the normalized segments of the current page and a link
// target. A target equal to the page is active; a strict, non-terminal
// ancestor of the page's directory path is ancestor-active.
func Classify(current, target []string) LinkState {
	if equalSegments(current, target) {
		return LinkActive
	}
	if len(target) > 0 && len(target) < len(current) && equalSegments(current[:len(target)], target) {
		return LinkActiveParent
	}
	return LinkInactive
}

func (s *ActiveLinks) mark(a *html.Node, state string) {
	if s.Config.Type == config.ActiveLinkAttribute {
		dom.SetAttr(a, state, "")
		return
	}
	if class, ok := dom.Attr(a, "class"); ok && class != "" {
		for _, existing := range strings.Fields(class) {
			if existing == state {
				return
			}
		}
		dom.SetAttr(a, "class", class+" "+state)
		return
	}
	dom.SetAttr(a, "class", state)
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// siteLocal reports whether an href can resolve to a page of this site.
func siteLocal(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "//", "mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(href, scheme) {
			return false
		}
	}
	return true
}
