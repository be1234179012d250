// Package pipeline orchestrates a full site build: source discovery, the
// sequential per-file stage loop, bundle materialization, and sitemap
// write-out.
package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitepress/internal/bundle"
	"git.home.luguber.info/inful/sitepress/internal/config"
	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/plugin"
	"git.home.luguber.info/inful/sitepress/internal/sitemap"
	"git.home.luguber.info/inful/sitepress/internal/stages"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Hook runs once per build, before discovery or after the final write.
type Hook func(ctx context.Context, cfg *config.Config) error

// Builder drives one build from source tree to finished dist tree. Files are
// processed one at a time in a single goroutine; the shared store is the only
// cross-file state, so a fatal error leaves no half-applied stage behind it.
type Builder struct {
	cfg      *config.Config
	registry *plugin.Registry
	recorder metrics.Recorder
	dynamic  []*files.Record
	before   []Hook
	after    []Hook
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder injects a metrics recorder. The default records nothing.
func WithRecorder(rec metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = rec }
}

// WithRegistry overrides the plugin registry used to resolve configured
// plugin names.
func WithRegistry(r *plugin.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithDynamicPage adds an in-memory page to the build. It flows through the
// same stage loop as discovered files and is written into the dist tree.
func WithDynamicPage(relPath, source string) Option {
	return func(b *Builder) {
		b.dynamic = append(b.dynamic, files.NewDynamicRecord(relPath, source))
	}
}

// WithBeforeHook registers a hook that runs before discovery. A hook error
// aborts the build.
func WithBeforeHook(h Hook) Option {
	return func(b *Builder) { b.before = append(b.before, h) }
}

// WithAfterHook registers a hook that runs after the dist tree is complete.
func WithAfterHook(h Hook) Option {
	return func(b *Builder) { b.after = append(b.after, h) }
}

// New creates a Builder for the given configuration.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		registry: plugin.DefaultRegistry(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	return b
}

// Run executes one full build. Skippable errors drop the offending file and
// continue; a fatal error aborts immediately, leaving already-written output
// in place.
func (b *Builder) Run(ctx context.Context) error {
	start := b.now()
	buildID := uuid.NewString()
	log := slog.With(logfields.BuildID(buildID))
	log.Info("Build started", logfields.Path(b.cfg.Src))

	err := b.run(ctx, log)
	b.recorder.ObserveBuildDuration(time.Since(start))
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		log.Error("Build failed", logfields.Error(err))
		return err
	}
	b.recorder.IncBuildOutcome("success")
	log.Info("Build finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func (b *Builder) run(ctx context.Context, log *slog.Logger) error {
	for _, h := range b.before {
		if err := h(ctx, b.cfg); err != nil {
			return sperrors.WrapFatal(err, sperrors.CategoryInternal, "before hook failed")
		}
	}

	records, err := files.Discover(b.cfg.Src, b.cfg.Exclude)
	if err != nil {
		return err
	}
	records = append(records, b.dynamic...)

	// Source paths are needed for the copy below; conversion rewrites
	// Record.Path to the output location first so both are known.
	origins := make(map[*files.Record]string, len(records))
	for _, rec := range records {
		origins[rec] = rec.Path
	}
	files.ApplyDirectoryConversion(records, b.cfg.ConvertPageToDirectory)

	if err := b.populateDist(records, origins); err != nil {
		return err
	}

	st := store.New()
	stageList := b.stageList()
	processed := 0

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return sperrors.WrapFatal(err, sperrors.CategoryInternal, "build canceled")
		}
		if !rec.Transformable() {
			continue
		}
		if err := b.processFile(ctx, log, rec, st, stageList); err != nil {
			if sperrors.IsFatal(err) {
				return err
			}
			log.Warn("Skipping file", logfields.File(rec.Path), logfields.Error(err))
			continue
		}
		processed++
	}
	b.recorder.IncFilesProcessed(processed)

	if b.cfg.ShouldBundle() {
		builder := &bundle.Builder{
			DistDir:  b.cfg.Dist,
			DistPath: b.cfg.Bundle.DistPath,
			Minifier: stages.NewMinifier(),
			Recorder: b.recorder,
		}
		if err := builder.Build(ctx, st); err != nil {
			return err
		}
	}

	if err := b.writeSitemap(records); err != nil {
		return err
	}

	for _, h := range b.after {
		if err := h(ctx, b.cfg); err != nil {
			return sperrors.WrapFatal(err, sperrors.CategoryInternal, "after hook failed")
		}
	}
	return nil
}

// stageList builds the fixed stage order. Placeholders interpolate before any
// document parsing, includes expand before inline and active-link passes see
// the page, bundling registers references before minification flattens the
// markup.
func (b *Builder) stageList() []stages.Stage {
	cfg := b.cfg
	list := make([]stages.Stage, 0, 8)

	if len(cfg.Plugins) > 0 {
		list = append(list, &stages.Plugins{Registry: b.registry, Names: cfg.Plugins, Data: cfg.Data})
	}
	list = append(list,
		&stages.Interpolator{Data: cfg.Data},
		&stages.ExternalLinks{BaseHost: baseHost(cfg.Sitemap.BaseURL)},
		&stages.Includes{
			Attr:            cfg.IncludeAttr,
			RootDir:         cfg.Dist,
			ConvertDisabled: cfg.ConvertPageToDirectory.Disabled,
		},
		&stages.Inline{Attr: cfg.InlineAttr, RootDir: cfg.Dist},
		&stages.ActiveLinks{Config: cfg.ActiveLink},
	)
	if cfg.ShouldBundle() {
		list = append(list, &stages.BundleAdd{DistPath: cfg.Bundle.DistPath, Enabled: true})
	}
	if cfg.Production {
		list = append(list, &stages.Minify{Minifier: stages.NewMinifier(), Enabled: true})
	}
	return list
}

// populateDist copies every discovered file into the dist tree at its
// converted location. Transformable files additionally load their content
// into the record; the copy makes the dist tree self-contained so include
// and inline targets resolve against it regardless of discovery order.
func (b *Builder) populateDist(records []*files.Record, origins map[*files.Record]string) error {
	for _, rec := range records {
		if rec.IsDynamic {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.cfg.Src, filepath.FromSlash(origins[rec])))
		if err != nil {
			return sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "reading source file").
				WithContext("path", origins[rec])
		}
		if rec.Transformable() {
			rec.Source = string(data)
		}
		if err := b.writeDist(rec.Path, data); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) processFile(ctx context.Context, log *slog.Logger, rec *files.Record, st *store.Store, stageList []stages.Stage) error {
	for _, stage := range stageList {
		stageStart := b.now()
		err := stage.Run(ctx, rec, st)
		b.recorder.ObserveStageDuration(stage.Name(), time.Since(stageStart))
		if err != nil {
			if sperrors.IsFatal(err) {
				b.recorder.IncStageResult(stage.Name(), metrics.ResultFatal)
				return err
			}
			b.recorder.IncStageResult(stage.Name(), metrics.ResultSkipped)
			return err
		}
		b.recorder.IncStageResult(stage.Name(), metrics.ResultSuccess)
	}

	log.Debug("File processed", logfields.File(rec.Path))
	return b.writeDist(rec.Path, []byte(rec.Source))
}

func (b *Builder) writeDist(relPath string, data []byte) error {
	outPath := filepath.Join(b.cfg.Dist, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "creating output directory").
			WithContext("path", relPath)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return sperrors.WrapFatal(err, sperrors.CategoryFileSystem, "writing output file").
			WithContext("path", relPath)
	}
	return nil
}

func (b *Builder) writeSitemap(records []*files.Record) error {
	cfg := b.cfg.Sitemap
	if cfg.Disabled || cfg.BaseURL == "" {
		return nil
	}
	pages := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Transformable() {
			pages = append(pages, rec.Path)
		}
	}
	out, err := sitemap.Generate(cfg.BaseURL, pages, cfg.Exclude, b.now())
	if err != nil {
		return sperrors.WrapFatal(err, sperrors.CategoryInternal, "generating sitemap")
	}
	return b.writeDist("sitemap.xml", []byte(out))
}

func baseHost(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
