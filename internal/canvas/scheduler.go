package canvas

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned cancel func is called.
// Cancel must be safe to call more than once.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives periodic tasks from a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

// ManualScheduler fires tasks only when Tick is called. Tests use it to step
// the spray timer deterministically.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn     func()
	active bool
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &manualTask{fn: fn, active: true}
	m.tasks = append(m.tasks, task)
	return func() {
		m.mu.Lock()
		task.active = false
		m.mu.Unlock()
	}
}

// Tick runs every active task once.
func (m *ManualScheduler) Tick() {
	m.mu.Lock()
	var due []func()
	for _, t := range m.tasks {
		if t.active {
			due = append(due, t.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Active returns the number of tasks not yet cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if t.active {
			n++
		}
	}
	return n
}

// Fire runs every registered task once, cancelled or not. It stands in for a
// ticker that fired just before cancellation.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	all := make([]func(), 0, len(m.tasks))
	for _, t := range m.tasks {
		all = append(all, t.fn)
	}
	m.mu.Unlock()

	for _, fn := range all {
		fn()
	}
}
