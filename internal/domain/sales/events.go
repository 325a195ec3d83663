package sales

import (
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale            = "Sale"
	AggregateTypeSaleReturn      = "SaleReturn"
	AggregateTypeSaleEditRequest = "SaleEditRequest"
)

// Event type constants
const (
	EventTypeSaleCreated         = "SaleCreated"
	EventTypeSaleCompleted       = "SaleCompleted"
	EventTypeSaleCancelled       = "SaleCancelled"
	EventTypeSaleReturnCreated   = "SaleReturnCreated"
	EventTypeSaleReturnProcessed = "SaleReturnProcessed"
	EventTypeSaleEditRequested   = "SaleEditRequested"
	EventTypeSaleEditDecided     = "SaleEditDecided"
)

// SaleCreatedEvent is raised when a sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID `json:"sale_id"`
	SaleNumber   string    `json:"sale_number"`
	BranchID     uuid.UUID `json:"branch_id"`
	CashierID    uuid.UUID `json:"cashier_id"`
	IsCreditSale bool      `json:"is_credit_sale"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		BranchID:        sale.BranchID,
		CashierID:       sale.CashierID,
		IsCreditSale:    sale.IsCreditSale,
	}
}

// EventType returns the event type name
func (e *SaleCreatedEvent) EventType() string {
	return EventTypeSaleCreated
}

// SaleCompletedEvent is raised when a sale completes payment validation
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	BranchID    uuid.UUID       `json:"branch_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCount   int             `json:"line_count"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		BranchID:        sale.BranchID,
		TotalAmount:     sale.TotalAmount,
		LineCount:       len(sale.ActiveLines()),
	}
}

// EventType returns the event type name
func (e *SaleCompletedEvent) EventType() string {
	return EventTypeSaleCompleted
}

// SaleCancelledEvent is raised when a sale is cancelled. WasCompleted tells
// subscribers whether compensating inventory adjustments were required.
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID `json:"sale_id"`
	SaleNumber   string    `json:"sale_number"`
	WasCompleted bool      `json:"was_completed"`
	Reason       string    `json:"reason"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale, wasCompleted bool) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		WasCompleted:    wasCompleted,
		Reason:          sale.CancelReason,
	}
}

// EventType returns the event type name
func (e *SaleCancelledEvent) EventType() string {
	return EventTypeSaleCancelled
}

// SaleReturnCreatedEvent is raised when a return document is opened
type SaleReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnID       uuid.UUID `json:"return_id"`
	ReturnNumber   string    `json:"return_number"`
	OriginalSaleID uuid.UUID `json:"original_sale_id"`
}

// NewSaleReturnCreatedEvent creates a new SaleReturnCreatedEvent
func NewSaleReturnCreatedEvent(ret *SaleReturn) *SaleReturnCreatedEvent {
	return &SaleReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnCreated, AggregateTypeSaleReturn, ret.ID, ret.TenantID),
		ReturnID:        ret.ID,
		ReturnNumber:    ret.ReturnNumber,
		OriginalSaleID:  ret.OriginalSaleID,
	}
}

// EventType returns the event type name
func (e *SaleReturnCreatedEvent) EventType() string {
	return EventTypeSaleReturnCreated
}

// SaleReturnProcessedEvent is raised when a return has been committed
type SaleReturnProcessedEvent struct {
	shared.BaseDomainEvent
	ReturnID       uuid.UUID       `json:"return_id"`
	ReturnNumber   string          `json:"return_number"`
	OriginalSaleID uuid.UUID       `json:"original_sale_id"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

// NewSaleReturnProcessedEvent creates a new SaleReturnProcessedEvent
func NewSaleReturnProcessedEvent(ret *SaleReturn) *SaleReturnProcessedEvent {
	return &SaleReturnProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnProcessed, AggregateTypeSaleReturn, ret.ID, ret.TenantID),
		ReturnID:        ret.ID,
		ReturnNumber:    ret.ReturnNumber,
		OriginalSaleID:  ret.OriginalSaleID,
		RefundAmount:    ret.TotalRefundAmount,
	}
}

// EventType returns the event type name
func (e *SaleReturnProcessedEvent) EventType() string {
	return EventTypeSaleReturnProcessed
}

// SaleEditRequestedEvent is raised when a maker submits an edit request
type SaleEditRequestedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID       `json:"request_id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	RequestType EditRequestType `json:"request_type"`
	RequestedBy uuid.UUID       `json:"requested_by"`
}

// NewSaleEditRequestedEvent creates a new SaleEditRequestedEvent
func NewSaleEditRequestedEvent(req *SaleEditRequest) *SaleEditRequestedEvent {
	return &SaleEditRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleEditRequested, AggregateTypeSaleEditRequest, req.ID, req.TenantID),
		RequestID:       req.ID,
		SaleID:          req.SaleID,
		RequestType:     req.RequestType,
		RequestedBy:     req.RequestedBy,
	}
}

// EventType returns the event type name
func (e *SaleEditRequestedEvent) EventType() string {
	return EventTypeSaleEditRequested
}

// SaleEditDecidedEvent is raised when a checker approves or rejects a request
type SaleEditDecidedEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID         `json:"request_id"`
	SaleID    uuid.UUID         `json:"sale_id"`
	Status    EditRequestStatus `json:"status"`
}

// NewSaleEditDecidedEvent creates a new SaleEditDecidedEvent
func NewSaleEditDecidedEvent(req *SaleEditRequest) *SaleEditDecidedEvent {
	return &SaleEditDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleEditDecided, AggregateTypeSaleEditRequest, req.ID, req.TenantID),
		RequestID:       req.ID,
		SaleID:          req.SaleID,
		Status:          req.Status,
	}
}

// EventType returns the event type name
func (e *SaleEditDecidedEvent) EventType() string {
	return EventTypeSaleEditDecided
}
