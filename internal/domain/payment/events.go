package payment

import (
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeMpesaTransaction = "MpesaTransaction"

// Event type constants
const (
	EventTypeStkPushInitiated = "StkPushInitiated"
	EventTypeMpesaCompleted   = "MpesaCompleted"
	EventTypeMpesaFailed      = "MpesaFailed"
)

// StkPushInitiatedEvent is raised when an STK push is sent to the handset
type StkPushInitiatedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID       `json:"transaction_id"`
	SaleID            uuid.UUID       `json:"sale_id"`
	CheckoutRequestID string          `json:"checkout_request_id"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewStkPushInitiatedEvent creates a new StkPushInitiatedEvent
func NewStkPushInitiatedEvent(tx *MpesaTransaction) *StkPushInitiatedEvent {
	return &StkPushInitiatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStkPushInitiated, AggregateTypeMpesaTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		SaleID:            tx.SaleID,
		CheckoutRequestID: tx.CheckoutRequestID,
		Amount:            tx.Amount,
	}
}

// EventType returns the event type name
func (e *StkPushInitiatedEvent) EventType() string {
	return EventTypeStkPushInitiated
}

// MpesaCompletedEvent is raised when the gateway confirms payment
type MpesaCompletedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID       `json:"transaction_id"`
	SaleID            uuid.UUID       `json:"sale_id"`
	CheckoutRequestID string          `json:"checkout_request_id"`
	ReceiptNumber     string          `json:"receipt_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewMpesaCompletedEvent creates a new MpesaCompletedEvent
func NewMpesaCompletedEvent(tx *MpesaTransaction) *MpesaCompletedEvent {
	return &MpesaCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeMpesaCompleted, AggregateTypeMpesaTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		SaleID:            tx.SaleID,
		CheckoutRequestID: tx.CheckoutRequestID,
		ReceiptNumber:     tx.MpesaReceiptNumber,
		Amount:            tx.Amount,
	}
}

// EventType returns the event type name
func (e *MpesaCompletedEvent) EventType() string {
	return EventTypeMpesaCompleted
}

// MpesaFailedEvent is raised when a push is cancelled or fails
type MpesaFailedEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID         `json:"transaction_id"`
	SaleID            uuid.UUID         `json:"sale_id"`
	CheckoutRequestID string            `json:"checkout_request_id"`
	Status            TransactionStatus `json:"status"`
	ErrorMessage      string            `json:"error_message,omitempty"`
}

// NewMpesaFailedEvent creates a new MpesaFailedEvent
func NewMpesaFailedEvent(tx *MpesaTransaction) *MpesaFailedEvent {
	return &MpesaFailedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeMpesaFailed, AggregateTypeMpesaTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		SaleID:            tx.SaleID,
		CheckoutRequestID: tx.CheckoutRequestID,
		Status:            tx.Status,
		ErrorMessage:      tx.ErrorMessage,
	}
}

// EventType returns the event type name
func (e *MpesaFailedEvent) EventType() string {
	return EventTypeMpesaFailed
}
