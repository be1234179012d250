// Package markdown renders Markdown include targets to HTML so pages can
// pull in .md partials the same way they pull in .html ones.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

// converter is shared; goldmark.Markdown is safe for concurrent use.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Authored partials may mix raw HTML into Markdown; keep it.
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// Render converts Markdown source to an HTML fragment.
func Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(src, &buf); err != nil {
		return "", sperrors.WrapError(err, sperrors.CategoryParse, "rendering markdown")
	}
	return buf.String(), nil
}
