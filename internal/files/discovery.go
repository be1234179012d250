package files

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
)

// IncludesDir is the conventional directory for include partials. Files under
// it are scheduled first so the include cache is warm before pages that
// reference them; this is an ordering optimization, not a correctness
// requirement, since a cache miss simply performs the read itself.
const IncludesDir = "includes"

// Discover walks the source directory and returns one record per regular
// file, includes first, everything else in stable walk order.
func Discover(srcDir string, exclude []string) ([]*Record, error) {
	var includes, others []*Record

	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel, exclude) {
			slog.Debug("Skipping excluded source file", logfields.Path(rel))
			return nil
		}
		rec := NewRecord(rel)
		if strings.HasPrefix(rel, IncludesDir+"/") {
			includes = append(includes, rec)
		} else {
			others = append(others, rec)
		}
		return nil
	})
	if err != nil {
		return nil, sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "scanning source directory").WithContext("src", srcDir)
	}

	sort.SliceStable(includes, func(i, j int) bool { return includes[i].Path < includes[j].Path })
	sort.SliceStable(others, func(i, j int) bool { return others[i].Path < others[j].Path })

	return append(includes, others...), nil
}

func excluded(rel string, exclude []string) bool {
	for _, prefix := range exclude {
		prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "/")
		if prefix != "" && strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}
