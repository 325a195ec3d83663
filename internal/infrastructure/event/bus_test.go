package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []shared.DomainEvent
	fail   bool
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.seen = append(h.seen, event)
	h.mu.Unlock()
	if h.fail {
		return errors.New("handler failed")
	}
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Sale", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus(t *testing.T) {
	t.Run("delivers to subscribers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"SaleCompleted"}}
		bus.Subscribe(handler)

		assert.NoError(t, bus.Publish(context.Background(), testEvent("SaleCompleted")))
		assert.Len(t, handler.seen, 1)
	})

	t.Run("ignores unsubscribed event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"SaleCompleted"}}
		bus.Subscribe(handler)

		assert.NoError(t, bus.Publish(context.Background(), testEvent("BatchCreated")))
		assert.Empty(t, handler.seen)
	})

	t.Run("a failing handler does not fail the publish", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"SaleCompleted"}, fail: true}
		healthy := &recordingHandler{types: []string{"SaleCompleted"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		assert.NoError(t, bus.Publish(context.Background(), testEvent("SaleCompleted")))
		assert.Len(t, healthy.seen, 1)
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"SaleCompleted"}, panics: true})

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), testEvent("SaleCompleted"))
		})
	})
}

func TestLoggingHandlerCoversAllEventTypes(t *testing.T) {
	handler := NewLoggingHandler(zap.NewNop())
	types := handler.EventTypes()
	assert.NotEmpty(t, types)

	seen := make(map[string]bool, len(types))
	for _, et := range types {
		assert.False(t, seen[et], "duplicate event type %s", et)
		seen[et] = true
	}

	assert.NoError(t, handler.Handle(context.Background(), testEvent("SaleCompleted")))
}
