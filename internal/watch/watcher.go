// Package watch re-decodes a payload file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
	"proofmark/internal/payload"
)

// DefaultDebounce is the settle time applied to bursts of writes.
const DefaultDebounce = 200 * time.Millisecond

// Update is delivered after the watched file settles. Err is set when the
// file could not be read or decoded; Document is the zero value then.
type Update struct {
	Path     string
	Document correction.Document
	Err      error
	At       time.Time
}

// Handler receives updates on the watcher goroutine.
type Handler func(Update)

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Decoded       int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// Watcher watches one payload file. The parent directory is watched so that
// editors which replace the file on save are still followed.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	codec       *payload.Codec
	handler     Handler
	debounceDur time.Duration
	pending     time.Time // zero when nothing is pending
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, codec *payload.Codec, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	if codec == nil {
		codec = payload.NewCodec("", "")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     w,
		path:        abs,
		codec:       codec,
		handler:     handler,
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce changes the settle time. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounceDur = d
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start decodes the file once if it exists, then watches it. It does not
// block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.watcher.Close()
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	logging.Watch("watching %s", w.path)

	if _, err := os.Stat(w.path); err == nil {
		w.decode()
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. It is safe
// to call on a watcher that was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	logging.Watch("stopped watching %s", w.path)
}

// Done is closed when the event loop exits, either through Stop or because
// the context passed to Start was cancelled.
func (w *Watcher) Done() <-chan struct{} { return w.doneCh }

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 4
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processPending()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}
	logging.WatchDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType

	// A removed file is left alone until it is created again.
	if eventType == "create" || eventType == "modify" {
		w.pending = time.Now()
	}
}

func (w *Watcher) processPending() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.decode()
}

func (w *Watcher) decode() {
	timer := logging.StartTimer(logging.CategoryWatch, "decode")
	defer timer.StopWithThreshold(w.debounceDur)

	update := Update{Path: w.path, At: time.Now()}

	data, err := os.ReadFile(w.path)
	if err == nil {
		update.Document, err = w.codec.DecodeFile(data)
	}

	w.mu.Lock()
	if err != nil {
		update.Err = err
		w.stats.Errors++
	} else {
		w.stats.Decoded++
	}
	w.mu.Unlock()

	if err != nil {
		logging.WatchError("decode %s: %v", w.path, err)
	} else {
		logging.Watch("decoded %s: %d corrections", w.path, len(update.Document.Corrections))
	}
	w.handler(update)
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
