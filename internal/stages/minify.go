package stages

import (
	"context"

	"github.com/tdewolff/minify/v2"
	mcss "github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	mjs "github.com/tdewolff/minify/v2/js"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

var mediaTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
}

// NewMinifier builds the shared minifier with handlers for the extensions the
// pipeline emits. The minification algorithms themselves are opaque here:
// text in, smaller text out.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", mhtml.Minify)
	m.AddFunc("text/css", mcss.Minify)
	m.AddFunc("application/javascript", mjs.Minify)
	return m
}

// MinifyText minifies text by file extension; unknown extensions pass
// through untouched.
func MinifyText(m *minify.M, extension, text string) (string, error) {
	mediatype, ok := mediaTypes[extension]
	if !ok {
		return text, nil
	}
	out, err := m.String(mediatype, text)
	if err != nil {
		return "", sperrors.WrapError(err, sperrors.CategoryValidation, "minifying content").WithContext("extension", extension)
	}
	return out, nil
}

// Minify is the final document stage: it shrinks the page source before
// write-out. Only production builds pay for it.
type Minify struct {
	Minifier *minify.M
	Enabled  bool
}

func (s *Minify) Name() string { return "minify" }

func (s *Minify) Run(_ context.Context, f *files.Record, _ *store.Store) error {
	if !s.Enabled || f.Extension == "" {
		return nil
	}
	out, err := MinifyText(s.Minifier, f.Extension, f.Source)
	if err != nil {
		return err
	}
	f.Source = out
	return nil
}
