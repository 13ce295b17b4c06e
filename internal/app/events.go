package app

import (
	"context"
	"log"
	"sync"

	"stylusnotes/internal/service"
)

// eventRelay is the EventEmitter handed to the services. It logs events in
// debug mode and fans them out to the attached sinks (the MCP server).
type eventRelay struct {
	debug bool

	mu    sync.RWMutex
	sinks []service.EventEmitter
}

func (r *eventRelay) Attach(sink service.EventEmitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

func (r *eventRelay) Emit(ctx context.Context, event string, data any) {
	if r.debug {
		log.Printf("event: %s %+v", event, data)
	}
	r.mu.RLock()
	sinks := r.sinks
	r.mu.RUnlock()
	for _, s := range sinks {
		s.Emit(ctx, event, data)
	}
}
