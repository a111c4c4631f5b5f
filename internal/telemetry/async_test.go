package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []*Event
	done   chan struct{}
}

func (e *captureEmitter) Emit(ctx context.Context, event *Event) error {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
	close(e.done)
	return nil
}

func TestEmitAsync_DeliversEvent(t *testing.T) {
	emitter := &captureEmitter{done: make(chan struct{})}
	event := &Event{UserID: "user-1", EventType: EventLogin, Source: "auth"}

	EmitAsync(emitter, context.Background(), event, nil)

	select {
	case <-emitter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not emitted within 2s")
	}
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.events) != 1 || emitter.events[0] != event {
		t.Errorf("events = %+v", emitter.events)
	}
}

func TestEmitAsync_NilEmitterAndEvent(t *testing.T) {
	// Must not panic or spawn anything.
	EmitAsync(nil, context.Background(), &Event{}, nil)
	EmitAsync(&captureEmitter{done: make(chan struct{})}, context.Background(), nil, nil)
}

func TestEmitAsync_SurvivesCanceledRequestContext(t *testing.T) {
	emitter := &captureEmitter{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(emitter, ctx, &Event{EventType: EventLogout, Source: "auth"}, nil)

	select {
	case <-emitter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit aborted by request-context cancellation")
	}
}
