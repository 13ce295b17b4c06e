package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangedHandler is called when a tracked note image is rewritten on disk.
type ChangedHandler func(noteID, path string)

// BlobWatcher reports writes to the image files of tracked notes.
type BlobWatcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangedHandler

	mu       sync.RWMutex
	tracking map[string]string // absPath -> noteID
	dirs     map[string]int    // watched dir -> tracked files in it
	done     chan struct{}
}

// New starts a watcher; onChange runs on the watcher goroutine.
func New(onChange ChangedHandler) (*BlobWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	b := &BlobWatcher{
		watcher:  w,
		onChange: onChange,
		tracking: make(map[string]string),
		dirs:     make(map[string]int),
		done:     make(chan struct{}),
	}
	go b.watchLoop()
	return b, nil
}

// Track starts following path for noteID. A note tracks one file at a time.
func (b *BlobWatcher) Track(noteID, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.tracking[absPath]; ok && id == noteID {
		return nil
	}
	b.untrackLocked(noteID)

	// fsnotify follows directories; atomic renames replace the file inode
	dir := filepath.Dir(absPath)
	if b.dirs[dir] == 0 {
		if err := b.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	b.dirs[dir]++
	b.tracking[absPath] = noteID
	return nil
}

// Untrack stops following noteID's file.
func (b *BlobWatcher) Untrack(noteID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.untrackLocked(noteID)
}

func (b *BlobWatcher) untrackLocked(noteID string) {
	for path, id := range b.tracking {
		if id != noteID {
			continue
		}
		delete(b.tracking, path)
		dir := filepath.Dir(path)
		b.dirs[dir]--
		if b.dirs[dir] <= 0 {
			delete(b.dirs, dir)
			if err := b.watcher.Remove(dir); err != nil {
				log.Printf("blob watcher: unwatch %s: %v", dir, err)
			}
		}
	}
}

// Tracked reports whether noteID currently has a file followed.
func (b *BlobWatcher) Tracked(noteID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, id := range b.tracking {
		if id == noteID {
			return true
		}
	}
	return false
}

// Close stops the watcher and waits for its goroutine.
func (b *BlobWatcher) Close() error {
	err := b.watcher.Close()
	<-b.done
	return err
}

func (b *BlobWatcher) watchLoop() {
	defer close(b.done)
	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			b.mu.RLock()
			noteID, tracked := b.tracking[absPath]
			b.mu.RUnlock()

			if tracked && b.onChange != nil {
				b.onChange(noteID, absPath)
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("blob watcher: watcher error: %v", err)
		}
	}
}
