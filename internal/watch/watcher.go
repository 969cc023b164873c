// Package watch recomposes a request whenever one of its source documents
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/workspace"
)

// DefaultDebounce batches the burst of events editors emit for one save.
const DefaultDebounce = 150 * time.Millisecond

// Build is the outcome of one recomposition. Err is set when the request can
// no longer be composed, for example because the base was deleted.
type Build struct {
	Result   compose.Result
	Warnings []string
	Err      error
}

// Watcher recomposes a single request on change.
type Watcher struct {
	ws        *workspace.Workspace
	req       compose.Request
	separator *string
	onBuild   func(Build)
	debounce  time.Duration
	logger    *zap.Logger

	files map[string]struct{}
	dirs  map[string]struct{}
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSeparator overrides the configured separator.
func WithSeparator(sep *string) Option {
	return func(w *Watcher) {
		w.separator = sep
	}
}

// New returns a watcher that reports every build to onBuild. onBuild runs on
// the watcher goroutine, so builds are delivered one at a time.
func New(ws *workspace.Workspace, req compose.Request, onBuild func(Build), opts ...Option) *Watcher {
	w := &Watcher{
		ws:       ws,
		req:      req,
		onBuild:  onBuild,
		debounce: DefaultDebounce,
		logger:   ws.Logger,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run composes once, then keeps recomposing until ctx is done. A request that
// cannot be composed at startup is returned as an error.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	first := w.build()
	if first.Err != nil {
		return first.Err
	}
	w.emit(first)
	w.sync(fw)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			w.emit(w.build())
			w.sync(fw)
		}
	}
}

func (w *Watcher) build() Build {
	res, warnings, err := w.ws.Run(w.req, w.separator)
	return Build{Result: res, Warnings: warnings, Err: err}
}

func (w *Watcher) emit(b Build) {
	if w.onBuild != nil {
		w.onBuild(b)
	}
}

// sync watches the directory of every requested document so files that are
// created, replaced, or renamed later are noticed too.
func (w *Watcher) sync(fw *fsnotify.Watcher) {
	ids := append([]string{w.req.BaseID}, w.req.PreferenceIDs...)
	for _, id := range ids {
		path, ok := w.ws.Locator.ExpectedPath(id)
		if !ok {
			continue
		}
		w.files[filepath.Clean(path)] = struct{}{}
		dir := filepath.Dir(path)
		if _, watched := w.dirs[dir]; watched {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("watch add failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.dirs[dir] = struct{}{}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if _, ok := w.files[filepath.Clean(ev.Name)]; !ok {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
