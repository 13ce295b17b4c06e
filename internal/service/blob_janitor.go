package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"stylusnotes/internal/domain"
	"stylusnotes/internal/storage"
)

const (
	DefaultJanitorSchedule = "@every 6h"

	// blobs younger than this may belong to a create still in flight
	defaultMinOrphanAge = 5 * time.Minute
)

// ErrSweepRunning is returned when a sweep starts while another is in flight.
var ErrSweepRunning = errors.New("blob sweep already running")

// ─────────────────────────────────────────────────────────────
// Blob Janitor: removes images no note points at
// ─────────────────────────────────────────────────────────────

// BlobJanitor deletes blob files that no stored note references.
type BlobJanitor struct {
	store    domain.StylusNoteStore
	blobs    *storage.BlobStore
	schedule string
	minAge   time.Duration
	now      func() time.Time

	// one sweep at a time; scheduled and on-demand sweeps share the flag
	sweeping  atomic.Bool
	inflight  sync.WaitGroup
	cronSched *cron.Cron
}

// NewBlobJanitor creates a janitor for the given cron schedule. An empty
// schedule disables background sweeps; Sweep still works.
func NewBlobJanitor(store domain.StylusNoteStore, blobs *storage.BlobStore, schedule string) *BlobJanitor {
	return &BlobJanitor{
		store:    store,
		blobs:    blobs,
		schedule: schedule,
		minAge:   defaultMinOrphanAge,
		now:      time.Now,
	}
}

// SetMinAge changes how old an unreferenced blob must be before it is removed.
func (j *BlobJanitor) SetMinAge(d time.Duration) {
	j.minAge = d
}

// Start schedules background sweeps.
func (j *BlobJanitor) Start() error {
	if j.schedule == "" {
		log.Printf("blob janitor: no schedule, background sweeps disabled")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(j.schedule, func() {
		removed, err := j.Sweep(context.Background())
		if err != nil {
			log.Printf("blob janitor: sweep failed: %v", err)
			return
		}
		if len(removed) > 0 {
			log.Printf("blob janitor: removed %d orphaned image(s)", len(removed))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}
	c.Start()
	j.cronSched = c
	log.Printf("blob janitor: scheduled %q", j.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep, bounded by ctx.
func (j *BlobJanitor) Stop(ctx context.Context) {
	if j.cronSched != nil {
		<-j.cronSched.Stop().Done()
		j.cronSched = nil
	}
	done := make(chan struct{})
	go func() {
		j.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Sweep removes every unreferenced blob older than the minimum age and
// returns the refs it removed.
func (j *BlobJanitor) Sweep(ctx context.Context) ([]string, error) {
	if !j.sweeping.CompareAndSwap(false, true) {
		return nil, ErrSweepRunning
	}
	j.inflight.Add(1)
	defer func() {
		j.sweeping.Store(false)
		j.inflight.Done()
	}()

	notes, err := j.store.ListNotes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	referenced := make(map[string]bool, len(notes))
	for _, n := range notes {
		referenced[n.ImagePath] = true
	}

	refs, err := j.blobs.List()
	if err != nil {
		return nil, err
	}

	cutoff := j.now().Add(-j.minAge)
	var removed []string
	for _, ref := range refs {
		if referenced[ref] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		mod, err := j.blobs.ModTime(ref)
		if err != nil || mod.After(cutoff) {
			continue
		}
		if err := j.blobs.Remove(ref); err != nil {
			log.Printf("blob janitor: remove %s: %v", ref, err)
			continue
		}
		removed = append(removed, ref)
	}
	return removed, nil
}
