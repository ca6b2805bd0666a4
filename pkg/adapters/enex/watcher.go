package enex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of write events produced while an export is saved.
const DefaultDebounce = 500 * time.Millisecond

// Event announces an archive that appeared or changed and has since settled.
type Event struct {
	Path string
	At   time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("archive %s settled at %s", e.Path, e.At.Format(time.RFC3339))
}

// Watcher watches an inbox directory for archives.
type Watcher struct {
	Dir          string
	Pattern      string
	Stability    StabilityOptions
	Debounce     time.Duration
	Logger       *slog.Logger
	ErrorHandler func(error)

	mu        sync.RWMutex
	active    bool
	delivered int
	lastEvent *time.Time
}

// Watch starts watching and returns the channel of settled archives. The channel is
// closed once ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if w.Logger == nil {
		w.Logger = slog.New(slog.DiscardHandler)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(fw, w.Dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	deb := newDebouncer(delay)
	out := make(chan Event)

	w.setActive(true)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		return w.run(ctx, fw, deb, out)
	}, lifecycle.WithErrorHandler(w.handleError))

	return out, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, deb *debouncer, out chan Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.Logger.Enabled(ctx, slog.LevelDebug) {
				w.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.Logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(out)
	defer w.setActive(false)
	defer fw.Close()

	err = w.loop(ctx, fw, deb, out)

	// Wait for pending stability checks so none sends on a closed channel.
	deb.stopAndWait(5 * time.Second)
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, deb *debouncer, out chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.handleEvent(ctx, fw, deb, out, event)

		case werr, ok := <-fw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.Logger.Error("fsnotify error", "error", werr)
			w.handleError(werr)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, deb *debouncer, out chan Event, event fsnotify.Event) {
	w.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(fw, event.Name); err != nil {
				w.handleError(err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Matches(w.Dir, w.Pattern, event.Name) {
		return
	}

	deb.add(event.Name, func(path string) {
		if err := WaitStable(ctx, path, w.Stability); err != nil {
			if ctx.Err() == nil {
				w.Logger.Warn("archive not stable", "path", path, "error", err)
				w.handleError(err)
			}
			return
		}
		w.send(ctx, out, Event{Path: path, At: time.Now()})
	})
}

// send delivers e unless the watcher is shutting down.
func (w *Watcher) send(ctx context.Context, out chan<- Event, e Event) {
	defer func() {
		// The channel may already be closed during shutdown.
		_ = recover()
	}()
	select {
	case out <- e:
		w.mu.Lock()
		w.delivered++
		at := e.At
		w.lastEvent = &at
		w.mu.Unlock()
	case <-ctx.Done():
	}
}

func (w *Watcher) handleError(err error) {
	if w.ErrorHandler != nil {
		w.ErrorHandler(err)
		return
	}
	if w.Logger != nil {
		w.Logger.Error("watcher error", "error", err)
	}
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

// addRecursive watches dir and every non-hidden directory below it.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// WatcherState exposes watcher internals for observability.
type WatcherState struct {
	Dir       string     `json:"dir"`
	Pattern   string     `json:"pattern"`
	Active    bool       `json:"active"`
	Delivered int        `json:"delivered"`
	LastEvent *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pattern := w.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return WatcherState{
		Dir:       w.Dir,
		Pattern:   pattern,
		Active:    w.active,
		Delivered: w.delivered,
		LastEvent: w.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
