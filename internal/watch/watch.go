// Package watch monitors the source tree and triggers debounced rebuilds.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitepress/internal/logfields"
)

// RebuildFunc performs one full build. It is never invoked concurrently with
// itself by a single Watcher.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors the source directory and triggers rebuilds on changes.
// Rapid event bursts (editor save, git checkout) collapse into a single
// rebuild via debouncing. An optional interval schedule forces periodic full
// rebuilds independent of filesystem events.
type Watcher struct {
	srcDir       string
	rebuild      RebuildFunc
	watcher      *fsnotify.Watcher
	scheduler    gocron.Scheduler
	interval     time.Duration
	debounceTime time.Duration
	rebuildChan  chan struct{}
}

// New creates a Watcher over srcDir. A non-zero interval adds a periodic
// rebuild schedule on top of the event-driven one.
func New(srcDir string, interval time.Duration, rebuild RebuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(srcDir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	w := &Watcher{
		srcDir:       absDir,
		rebuild:      rebuild,
		watcher:      fsw,
		interval:     interval,
		debounceTime: 300 * time.Millisecond,
		rebuildChan:  make(chan struct{}, 1),
	}

	if interval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		w.scheduler = s
	}

	return w, nil
}

// Run watches until the context is canceled. It blocks; rebuilds execute on
// the calling goroutine of the internal rebuild loop, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addRecursive(w.srcDir); err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(w.srcDir))

	if w.scheduler != nil {
		_, err := w.scheduler.NewJob(
			gocron.DurationJob(w.interval),
			gocron.NewTask(w.trigger),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule periodic rebuild: %w", err)
		}
		w.scheduler.Start()
		defer w.scheduler.Shutdown()
	}

	go w.eventLoop(ctx)
	w.rebuildLoop(ctx)
	return ctx.Err()
}

// addRecursive registers the directory and every subdirectory with the
// fsnotify watcher. fsnotify is not recursive on its own.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be registered or their contents go unseen.
			if event.Op&fsnotify.Create != 0 {
				if err := w.addRecursive(event.Name); err != nil {
					slog.Debug("Not watching created path", logfields.Path(event.Name), logfields.Error(err))
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name))
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// trigger requests a rebuild. The channel has capacity one, so a pending
// request absorbs further triggers until the rebuild loop drains it.
func (w *Watcher) trigger() {
	select {
	case w.rebuildChan <- struct{}{}:
	default:
	}
}

func (w *Watcher) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.rebuildChan:
			// Let the burst settle before rebuilding.
			timer := time.NewTimer(w.debounceTime)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
				continue
			}
			slog.Info("Rebuild finished",
				logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		}
	}
}
