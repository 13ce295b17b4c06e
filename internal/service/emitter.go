package service

import (
	"context"
	"sync"
)

// Event names emitted by the stylus services.
const (
	EventSaved        = "stylus:saved"
	EventLoadFailed   = "stylus:load-failed"
	EventDeleted      = "stylus:deleted"
	EventImageChanged = "stylus:image-changed"
	EventCanvasChange = "canvas:changed"
	EventNotesChanged = "stylus:notes-changed"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: delivers service events to the host surface
// ─────────────────────────────────────────────────────────────

// EventEmitter delivers notifications to whatever hosts the canvas: the MCP
// server forwards them to clients, the CLI just logs them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, in order.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
