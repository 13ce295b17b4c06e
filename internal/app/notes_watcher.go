package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stylusnotes/internal/domain"
	"stylusnotes/internal/service"
)

// notesWatcher polls the note store for changes made by another process
// sharing the same database (e.g. the CLI while the MCP server runs) and
// emits stylus:notes-changed so clients can refresh their lists.
type notesWatcher struct {
	store    domain.StylusNoteStore
	emitter  service.EventEmitter
	interval time.Duration

	mu     sync.Mutex
	last   string
	stopCh chan struct{}
	done   chan struct{}
}

func newNotesWatcher(store domain.StylusNoteStore, emitter service.EventEmitter, interval time.Duration) *notesWatcher {
	return &notesWatcher{store: store, emitter: emitter, interval: interval}
}

// Start begins the polling loop. Call it once.
func (w *notesWatcher) Start(ctx context.Context) {
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.pollLoop(ctx)
}

// Stop terminates the polling loop and waits for it.
func (w *notesWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		<-w.done
		w.stopCh = nil
	}
}

func (w *notesWatcher) pollLoop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// check compares a count:max(updated_at) fingerprint with the previous poll.
// The first poll only records the baseline.
func (w *notesWatcher) check(ctx context.Context) bool {
	notes, err := w.store.ListNotes(ctx, "")
	if err != nil {
		return false
	}
	var newest time.Time
	for _, n := range notes {
		if n.UpdatedAt.After(newest) {
			newest = n.UpdatedAt
		}
	}
	fp := fmt.Sprintf("%d:%d", len(notes), newest.UnixNano())

	w.mu.Lock()
	changed := w.last != "" && w.last != fp
	w.last = fp
	w.mu.Unlock()

	if changed {
		w.emitter.Emit(ctx, service.EventNotesChanged, map[string]int{"count": len(notes)})
	}
	return changed
}
