// Package watch rebuilds output whenever a raw directory changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
)

// Defaults for Config.
const (
	DefaultQuietWindow = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

// Config controls a Watcher.
type Config struct {
	// Dir is the raw directory to watch.
	Dir string
	// QuietWindow is how long the directory must stay unchanged before a
	// rebuild starts.
	QuietWindow time.Duration
	// MaxDelay bounds how long a stream of changes can postpone a rebuild.
	MaxDelay time.Duration
	// Relevant filters file names. The default accepts the files of the raw
	// directory contract, so outputs written next to the input do not
	// retrigger a build.
	Relevant func(name string) bool
}

// RebuildFunc is called once per settled burst of changes.
type RebuildFunc func(ctx context.Context) error

// Watcher coalesces file events into rebuilds. Rebuilds never overlap.
type Watcher struct {
	cfg     Config
	rebuild RebuildFunc

	readyOnce sync.Once
	ready     chan struct{}
}

// New returns a watcher for cfg.Dir.
func New(cfg Config, rebuild RebuildFunc) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.ValidationError("watch directory is required").Build()
	}
	if rebuild == nil {
		return nil, errors.ValidationError("rebuild function is required").Build()
	}
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = DefaultQuietWindow
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.MaxDelay < cfg.QuietWindow {
		cfg.MaxDelay = cfg.QuietWindow
	}
	if cfg.Relevant == nil {
		cfg.Relevant = novel.IsContractFile
	}
	return &Watcher{cfg: cfg, rebuild: rebuild, ready: make(chan struct{})}, nil
}

// Ready is closed once Run watches the directory.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. Rebuild failures are logged and the watch
// goes on; only a failure to set up the watch is returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "create file watcher").Fatal().Build()
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			slog.Warn("Error closing file watcher", logfields.Error(cerr))
		}
	}()
	if err := fw.Add(w.cfg.Dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "watch raw directory").
			Fatal().
			WithContext("path", w.cfg.Dir).
			Build()
	}
	w.readyOnce.Do(func() { close(w.ready) })
	ctx = observability.WithOperation(ctx, "watch")
	observability.InfoContext(ctx, "Watching raw directory", logfields.Path(w.cfg.Dir))

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		firstAt time.Time
		pending int
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

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
			slog.Debug("Raw directory changed", logfields.File(filepath.Base(ev.Name)), slog.String("op", ev.Op.String()))
			now := time.Now()
			if pending == 0 {
				firstAt = now
			}
			pending++
			delay := w.cfg.QuietWindow
			if remaining := w.cfg.MaxDelay - now.Sub(firstAt); remaining < delay {
				delay = max(remaining, 0)
			}
			stopTimer()
			timer = time.NewTimer(delay)
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			observability.ErrorContext(ctx, "File watcher error", logfields.Error(err))

		case <-fire:
			fire = nil
			observability.InfoContext(ctx, "Rebuilding", logfields.Count(pending))
			pending = 0
			if err := w.rebuild(ctx); err != nil {
				observability.ErrorContext(ctx, "Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.cfg.Relevant(filepath.Base(ev.Name))
}
