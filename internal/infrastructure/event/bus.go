// Package event provides in-process domain event distribution.
package event

import (
	"context"
	"sync"

	"github.com/afyapos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler processes domain events of the types it declares.
type Handler interface {
	Handle(ctx context.Context, event shared.DomainEvent) error
	EventTypes() []string
}

// InMemoryEventBus implements shared.EventPublisher with synchronous
// in-memory dispatch. Handler failures are logged, never propagated, so a
// misbehaving subscriber cannot fail the publishing transaction.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the event types it declares,
// or for the explicitly given types when provided
func (b *InMemoryEventBus) Subscribe(handler Handler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish dispatches the event to every handler subscribed to its type
func (b *InMemoryEventBus) Publish(ctx context.Context, event shared.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := b.dispatch(ctx, handler, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// dispatch shields the bus from handler panics
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler Handler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
