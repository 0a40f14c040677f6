// Package watch notices edits to a graph's on-disk JSON file made by
// something other than the owning Store (a hand edit, another tool writing
// the same path) and folds them into a commit.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/willowgraph/willow/internal/graphstore"
	"github.com/willowgraph/willow/internal/vcs"
	"github.com/willowgraph/willow/internal/willowlog"
)

// Debouncer coalesces a burst of rapid triggers into a single call to fn,
// firing after the most recent trigger has gone quiet for delay.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer that calls fn delay after the last Trigger.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)starts the countdown to fn.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Cancel stops any pending call to fn.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Watcher watches a Store's graph file and, when it changes on disk, reloads
// it and commits the difference against HEAD.
type Watcher struct {
	store     *graphstore.Store
	path      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New opens an fsnotify watcher over path's parent directory (catching
// create/replace as well as in-place writes) and wires it to call
// CommitIfChanged on the given Store after a short quiet period.
func New(store *graphstore.Store, path string) (*Watcher, error) {
	w := &Watcher{store: store, path: path}
	w.debouncer = NewDebouncer(500*time.Millisecond, w.onChange)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.watcher = fw
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins monitoring in a background goroutine until ctx is canceled or
// Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	base := filepath.Base(w.path)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.debouncer.Trigger()
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				willowlog.Info("watch", "watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) onChange() {
	if err := w.store.Reload(); err != nil {
		willowlog.Info("watch", "reload failed", "error", err)
		return
	}
	hash, err := w.store.CommitIfChanged(vcs.CommitInput{
		Message: "external change detected",
		Source:  vcs.CommitSource{Kind: vcs.SourceMaintenance},
	})
	if err != nil {
		willowlog.Info("watch", "commit-if-changed failed", "error", err)
		return
	}
	if hash != nil {
		willowlog.Info("watch", "committed external change", "hash", *hash)
	}
}

// Close stops the background goroutine and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.debouncer.Cancel()
	return w.watcher.Close()
}
