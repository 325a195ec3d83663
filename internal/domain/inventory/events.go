package inventory

import (
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeBatch = "InventoryBatch"

// Event type constants
const (
	EventTypeBatchCreated     = "BatchCreated"
	EventTypeStockAdjusted    = "StockAdjusted"
	EventTypeBatchDeactivated = "BatchDeactivated"
	EventTypeStockDepleted    = "StockDepleted"
)

// BatchCreatedEvent is raised when a new inventory batch is created
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	BranchID    uuid.UUID `json:"branch_id"`
	ProductID   uuid.UUID `json:"product_id"`
	BatchNumber string    `json:"batch_number,omitempty"`
	Quantity    int64     `json:"quantity"`
}

// NewBatchCreatedEvent creates a new BatchCreatedEvent
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:         batch.ID,
		BranchID:        batch.BranchID,
		ProductID:       batch.ProductID,
		BatchNumber:     batch.BatchNumber,
		Quantity:        batch.Quantity,
	}
}

// EventType returns the event type name
func (e *BatchCreatedEvent) EventType() string {
	return EventTypeBatchCreated
}

// StockAdjustedEvent is raised whenever a batch quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	BatchID        uuid.UUID `json:"batch_id"`
	BranchID       uuid.UUID `json:"branch_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(batch *Batch, delta, before, after int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:         batch.ID,
		BranchID:        batch.BranchID,
		ProductID:       batch.ProductID,
		Delta:           delta,
		QuantityBefore:  before,
		QuantityAfter:   after,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// BatchDeactivatedEvent is raised when a batch is soft-deactivated
type BatchDeactivatedEvent struct {
	shared.BaseDomainEvent
	BatchID   uuid.UUID `json:"batch_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// NewBatchDeactivatedEvent creates a new BatchDeactivatedEvent
func NewBatchDeactivatedEvent(batch *Batch) *BatchDeactivatedEvent {
	return &BatchDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchDeactivated, AggregateTypeBatch, batch.ID, batch.TenantID),
		BatchID:         batch.ID,
		BranchID:        batch.BranchID,
		ProductID:       batch.ProductID,
	}
}

// EventType returns the event type name
func (e *BatchDeactivatedEvent) EventType() string {
	return EventTypeBatchDeactivated
}
