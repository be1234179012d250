// Package sitemap generates the sitemap.xml written at the site root.
package sitemap

import (
	"encoding/xml"
	"path"
	"strings"
	"time"
)

// URL is one sitemap entry.
type URL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// defaultExcludes are never listed: includes and assets are not pages, and
// the 404 page should not be crawled.
var defaultExcludes = []string{"includes/", "assets/"}

// Generate renders a sitemap for the given dist-relative .html output paths.
// The root page gets priority 1.0, everything else 0.9; lastmod is the
// build date.
func Generate(baseURL string, pages []string, exclude []string, now time.Time) (string, error) {
	base := strings.TrimSuffix(baseURL, "/")
	lastmod := now.Format("2006-01-02")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, rel := range pages {
		rel = strings.TrimPrefix(rel, "/")
		if !strings.HasSuffix(rel, ".html") || skipped(rel, exclude) {
			continue
		}

		loc := pageURL(rel)
		priority := "0.9"
		if loc == "/" {
			priority = "1.0"
		}
		set.URLs = append(set.URLs, URL{
			Loc:      base + loc,
			LastMod:  lastmod,
			Priority: priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out) + "\n", nil
}

func skipped(rel string, exclude []string) bool {
	if path.Base(rel) == "404.html" {
		return true
	}
	for _, prefix := range defaultExcludes {
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	for _, pattern := range exclude {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "/")
		if pattern != "" && strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

// pageURL maps an output path to its public URL: index files collapse to
// their directory.
func pageURL(rel string) string {
	if rel == "index.html" {
		return "/"
	}
	if strings.HasSuffix(rel, "/index.html") {
		return "/" + strings.TrimSuffix(rel, "index.html")
	}
	return "/" + rel
}
