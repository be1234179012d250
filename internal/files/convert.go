package files

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/config"
)

// ConvertPagePath rewrites name.html into name/index.html so the extension
// need not appear in URLs. index.html itself is never converted.
func ConvertPagePath(rel string) (string, bool) {
	rel = normalizeRel(rel)
	if path.Ext(rel) != ".html" {
		return rel, false
	}
	if path.Base(rel) == "index.html" {
		return rel, false
	}
	return strings.TrimSuffix(rel, ".html") + "/index.html", true
}

// ApplyDirectoryConversion rewrites the paths of all eligible records in
// place, honoring the configured exclusions. The pending record set is
// updated so every later stage (active links, sitemap, write-out) observes
// the converted locations.
func ApplyDirectoryConversion(records []*Record, cfg config.ConvertConfig) {
	if cfg.Disabled {
		return
	}
	for _, rec := range records {
		if conversionExcluded(rec.Path, cfg.ExcludePaths) {
			continue
		}
		if converted, ok := ConvertPagePath(rec.Path); ok {
			rec.Path = converted
			rec.deriveNames()
		}
	}
}

func conversionExcluded(rel string, exclude []string) bool {
	for _, p := range exclude {
		p = strings.TrimPrefix(strings.TrimSpace(p), "/")
		if p != "" && strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}
