// Package watcher turns Inbox filesystem events into queue messages. It is
// the only producer of triage work; the worker consumes from the queue so
// that overlapping watcher triggers on one file collapse into at most one
// losing triage, which the mover reports as AlreadyProcessed.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/digitalfte/taskvault/internal/core/domain"
	"github.com/digitalfte/taskvault/internal/core/ports"
)

type Lister interface {
	List(ctx context.Context, folder domain.Folder) ([]string, error)
}

type Watcher struct {
	root     string
	store    Lister
	queue    ports.MessageQueue
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(vaultRoot string, store Lister, queue ports.MessageQueue, logger *slog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		root:     vaultRoot,
		store:    store,
		queue:    queue,
		logger:   logger,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches the Inbox until the context is cancelled. Documents already
// present at startup are published first so a restart never strands files.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	inbox := filepath.Join(w.root, string(domain.FolderInbox))
	if err := fsw.Add(inbox); err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}

	if err := w.catchUp(ctx); err != nil {
		w.logger.Warn("inbox_catchup_failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !w.isNewDocument(name) {
				continue
			}
			w.schedule(ctx, name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox_watch_error", "error", err)
		}
	}
}

func (w *Watcher) catchUp(ctx context.Context) error {
	names, err := w.store.List(ctx, domain.FolderInbox)
	if err != nil {
		return err
	}
	for _, name := range names {
		if w.isNewDocument(name) {
			w.publish(ctx, name)
		}
	}
	return nil
}

// isNewDocument filters out non-documents, temp files from in-flight
// atomic writes, and documents already parked in a pseudo-state.
func (w *Watcher) isNewDocument(name string) bool {
	if !strings.HasSuffix(name, domain.DocumentExt) {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasPrefix(name, domain.PrefixClarification) || strings.HasPrefix(name, domain.PrefixBlocked) {
		return false
	}
	return true
}

// schedule coalesces the create/write event burst a single file drop
// produces into one publish after a quiet period.
func (w *Watcher) schedule(ctx context.Context, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[name]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		w.publish(ctx, name)
	})
}

func (w *Watcher) publish(ctx context.Context, name string) {
	rel := filepath.Join(string(domain.FolderInbox), name)
	if err := w.queue.PublishTaskArrived(ctx, rel); err != nil {
		w.logger.Error("task_arrival_publish_failed", "path", rel, "error", err)
		return
	}
	w.logger.Info("task_arrived", "path", rel)
}
