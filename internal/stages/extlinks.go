package stages

import (
	"context"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/dom"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// ExternalLinks fixes the link protocol on anchors pointing at foreign
// hosts: they open in a new tab without handing the opener to the target.
type ExternalLinks struct {
	// BaseHost is the site's own host; absolute links to it stay internal.
	// Empty means every absolute link is foreign.
	BaseHost string
}

func (s *ExternalLinks) Name() string { return "extlinks" }

func (s *ExternalLinks) Run(_ context.Context, f *files.Record, _ *store.Store) error {
	if !f.Transformable() {
		return nil
	}
	if !strings.Contains(f.Source, "http") {
		return nil
	}

	doc, err := dom.Parse(f.Source)
	if err != nil {
		return err
	}

	changed := false
	for _, a := range doc.FindByTag("a") {
		href, ok := dom.Attr(a, "href")
		if !ok || !s.foreign(href) {
			continue
		}
		if !dom.HasAttr(a, "target") {
			dom.SetAttr(a, "target", "_blank")
			changed = true
		}
		if !dom.HasAttr(a, "rel") {
			dom.SetAttr(a, "rel", "noopener noreferrer")
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

func (s *ExternalLinks) foreign(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return s.BaseHost == "" || u.Host != s.BaseHost
}
