package event

import (
	"context"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoggingHandler writes a structured log line for every domain event. It is
// the default subscriber so the event stream is observable even before any
// cross-context integration exists.
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a handler that logs domain events
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHandler{logger: logger}
}

// Handle logs the event
func (h *LoggingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes lists every event type the domain emits
func (h *LoggingHandler) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCreated,
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleCancelled,
		sales.EventTypeSaleReturnCreated,
		sales.EventTypeSaleReturnProcessed,
		sales.EventTypeSaleEditRequested,
		sales.EventTypeSaleEditDecided,
		credit.EventTypeCreditAccountOpened,
		credit.EventTypeCreditPaymentReceived,
		credit.EventTypeCreditAccountPaid,
		credit.EventTypeCreditAccountOverdue,
		payment.EventTypeStkPushInitiated,
		payment.EventTypeMpesaCompleted,
		payment.EventTypeMpesaFailed,
		inventory.EventTypeBatchCreated,
		inventory.EventTypeStockAdjusted,
		inventory.EventTypeBatchDeactivated,
		inventory.EventTypeStockDepleted,
	}
}
