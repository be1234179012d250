package stages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// placeholderRe matches ${identifier} placeholders. The first inner character
// must not be "{" so the foreign client-side syntax ${{...}} is never
// touched. A capturing group carries the key, so no offset arithmetic is
// needed during substitution.
var placeholderRe = regexp.MustCompile(`\$\{([^{}][^}]*)\}`)

// Interpolator substitutes ${key} placeholders from the page data object into
// raw text. Unknown keys leave the placeholder unchanged.
type Interpolator struct {
	Data map[string]any
}

func (s *Interpolator) Name() string { return "interpolate" }

func (s *Interpolator) Run(_ context.Context, f *files.Record, _ *store.Store) error {
	if !f.Transformable() || len(s.Data) == 0 {
		return nil
	}
	f.Source = Interpolate(f.Source, s.Data)
	return nil
}

// Interpolate performs the raw-text substitution; exposed for plugins that
// want the same semantics on non-page text.
func Interpolate(text string, data map[string]any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := m[2 : len(m)-1]
		val, ok := data[key]
		if !ok {
			return m
		}
		return fmt.Sprintf("%v", val)
	})
}
