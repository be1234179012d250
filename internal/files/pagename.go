package files

import (
	"path"
	"strings"
)

// PageSegments normalizes a dist-relative path or site-local href into its
// logical page segments: the extension is dropped, a trailing index segment
// collapses into its parent, and the dist root becomes the empty slice.
func PageSegments(p string) []string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || p == "." {
		return nil
	}

	segs := strings.Split(p, "/")
	last := segs[len(segs)-1]
	last = strings.TrimSuffix(last, path.Ext(last))
	if last == "index" {
		segs = segs[:len(segs)-1]
	} else {
		segs[len(segs)-1] = last
	}
	return segs
}

// PageName derives the display page name: the last logical segment, with the
// dist root collapsed to "/".
func PageName(p string) string {
	segs := PageSegments(p)
	if len(segs) == 0 {
		return "/"
	}
	return segs[len(segs)-1]
}
