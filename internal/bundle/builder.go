// Package bundle implements the build phase of the bundle engine: the single
// point where accumulated group entries are materialized as concatenated
// bundle files on disk.
package bundle

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/stages"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Builder concatenates and writes the grouped sources accumulated during the
// per-file loop. Pages already reference the output paths; every group must
// therefore be written before the build terminates, and any unreadable
// source aborts the whole run. Bundling has no partial-success mode.
type Builder struct {
	// DistDir is the filesystem root the entry paths and outputs resolve
	// against.
	DistDir string
	// DistPath is the dist-root-relative directory for bundle outputs.
	DistPath string
	Minifier *minify.M
	Recorder metrics.Recorder
}

// Build writes one output file per accumulated (kind, group). Distinct groups
// do not depend on each other, so they are concatenated concurrently.
func (b *Builder) Build(ctx context.Context, st *store.Store) error {
	rec := b.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, kind := range st.Kinds() {
		for group, entries := range st.BundleGroups(kind) {
			wg.Add(1)
			go func(kind store.Kind, group string, entries []store.Entry) {
				defer wg.Done()
				size, err := b.buildGroup(kind, group, entries)
				mu.Lock()
				defer mu.Unlock()
				if err != nil && firstErr == nil {
					firstErr = err
					return
				}
				if err == nil {
					rec.ObserveBundleSize(string(kind), group, size)
				}
			}(kind, group, entries)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// buildGroup concatenates one group's sources in encounter order and writes
// the output file, returning its size in bytes.
func (b *Builder) buildGroup(kind store.Kind, group string, entries []store.Entry) (int, error) {
	var sb strings.Builder
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(b.DistDir, filepath.FromSlash(entry.Path)))
		if err != nil {
			return 0, sperrors.WrapFatal(err, sperrors.CategoryBundle, "reading bundle source").
				WithContext("path", entry.Path).WithContext("group", group)
		}

		content := string(raw)
		if entry.Minify {
			content, err = stages.MinifyText(b.Minifier, extensionOf(entry.Path), content)
			if err != nil {
				return 0, sperrors.WrapFatal(err, sperrors.CategoryBundle, "minifying bundle source").
					WithContext("path", entry.Path)
			}
		}
		sb.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			sb.WriteString("\n")
		}
	}

	outRel := stages.BundlePath(b.DistPath, group, kind)
	outPath := filepath.Join(b.DistDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "creating bundle directory")
	}
	if err := os.WriteFile(outPath, []byte(sb.String()), 0644); err != nil {
		return 0, sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "writing bundle output").WithContext("path", outRel)
	}

	slog.Info("Bundle written",
		logfields.Kind(string(kind)), logfields.Group(group),
		logfields.Path(outRel), logfields.Count(len(entries)))
	return sb.Len(), nil
}

func extensionOf(p string) string {
	return strings.TrimPrefix(path.Ext(p), ".")
}
