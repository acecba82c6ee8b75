// Package watch re-runs the batch marker whenever HTML files in the watched
// directories change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/semcheck/internal/batch"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
)

// DefaultDebounce is the quiet window before a re-run.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc receives the outcome of every re-run.
type RunFunc func(*batch.Summary, error)

// Watcher monitors input directories and re-marks them into an output CSV.
type Watcher struct {
	marker   *batch.Marker
	out      string
	dirs     []string
	debounce time.Duration
	onRun    RunFunc
	watcher  *fsnotify.Watcher

	readyOnce sync.Once
	ready     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnRun sets a callback invoked after every re-run.
func WithOnRun(fn RunFunc) Option {
	return func(w *Watcher) { w.onRun = fn }
}

// New creates a watcher over dirs and registers every non-hidden
// subdirectory.
func New(marker *batch.Marker, out string, dirs []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}

	w := &Watcher{
		marker:   marker,
		out:      out,
		dirs:     dirs,
		debounce: DefaultDebounce,
		watcher:  fw,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapError(err, errors.CategoryNotFound, "cannot watch directory").
				WithContext("dir", path).
				Build()
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "cannot watch directory").
				WithContext("dir", path).
				Build()
		}
		return nil
	})
}

// Ready is closed once Run is receiving events.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run processes events until ctx is canceled. The fsnotify watcher is closed
// on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	w.readyOnce.Do(func() { close(w.ready) })
	slog.Info("Watching for changes", slog.Any("dirs", w.dirs), logfields.File(w.out))

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))

		case <-timerCh:
			timerCh = nil
			w.rerun(ctx)
		}
	}
}

// relevant filters events down to HTML files and new directories. New
// directories are added to the watch list.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if isHidden(name) || isTempFile(name) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Cannot watch new directory", logfields.File(event.Name), logfields.Error(err))
			}
			// A new directory may already contain HTML files.
			return true
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".html")
}

func (w *Watcher) rerun(ctx context.Context) {
	summary, err := w.marker.MarkToFile(ctx, w.out, w.dirs...)
	if err != nil {
		slog.Error("Re-marking failed", logfields.Error(err))
	}
	if w.onRun != nil {
		w.onRun(summary, err)
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isTempFile(name string) bool {
	return strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasPrefix(name, "#")
}
