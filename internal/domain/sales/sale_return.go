package sales

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleReturnStatus represents the status of a sale return document
type SaleReturnStatus string

const (
	SaleReturnStatusPending   SaleReturnStatus = "PENDING"
	SaleReturnStatusApproved  SaleReturnStatus = "APPROVED"
	SaleReturnStatusProcessed SaleReturnStatus = "PROCESSED"
	SaleReturnStatusRejected  SaleReturnStatus = "REJECTED"
)

// IsValid checks if the status is a valid SaleReturnStatus
func (s SaleReturnStatus) IsValid() bool {
	switch s {
	case SaleReturnStatusPending, SaleReturnStatusApproved, SaleReturnStatusProcessed, SaleReturnStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of SaleReturnStatus
func (s SaleReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleReturnStatus) CanTransitionTo(target SaleReturnStatus) bool {
	switch s {
	case SaleReturnStatusPending:
		return target == SaleReturnStatusApproved || target == SaleReturnStatusRejected
	case SaleReturnStatusApproved:
		return target == SaleReturnStatusProcessed
	case SaleReturnStatusProcessed, SaleReturnStatusRejected:
		return false // Terminal states
	}
	return false
}

// SaleReturnLineItem represents one returned line, referencing the original
// sale line it reverses
type SaleReturnLineItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReturnID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleLineItemID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID            uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityReturned   int64           `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,2);not null"` // Original sale price, not current
	RefundAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RestoreToInventory bool            `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName returns the table name for GORM
func (SaleReturnLineItem) TableName() string {
	return "sale_return_line_items"
}

// NewSaleReturnLineItem creates a return line against an original sale line.
// The refund is priced at the original sale unit price. The running
// returned-quantity watermark on the sale line is validated by the caller,
// which holds the sale aggregate.
func NewSaleReturnLineItem(returnID uuid.UUID, original *SaleLineItem, quantityReturned int64, restoreToInventory bool) (*SaleReturnLineItem, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_LINE", "Original sale line is required")
	}
	if quantityReturned <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if quantityReturned > original.ReturnableQuantity() {
		return nil, shared.NewDomainError("RETURN_EXCEEDS_QUANTITY",
			fmt.Sprintf("Cannot return %d units, only %d returnable", quantityReturned, original.ReturnableQuantity()))
	}

	now := time.Now()
	refund := original.UnitPrice.Mul(decimal.NewFromInt(quantityReturned))

	return &SaleReturnLineItem{
		ID:                 uuid.New(),
		ReturnID:           returnID,
		SaleLineItemID:     original.ID,
		ProductID:          original.ProductID,
		BatchID:            original.BatchID,
		QuantityReturned:   quantityReturned,
		UnitPrice:          original.UnitPrice,
		RefundAmount:       refund,
		RestoreToInventory: restoreToInventory,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// SaleReturn represents a reversal of part or all of a completed sale
type SaleReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber      string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_return_tenant_number"`
	OriginalSaleID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	BranchID          uuid.UUID            `gorm:"type:uuid;not null"`
	ReturnReason      string               `gorm:"type:varchar(255);not null"`
	Lines             []SaleReturnLineItem `gorm:"foreignKey:ReturnID"`
	TotalRefundAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Status            SaleReturnStatus     `gorm:"type:varchar(20);not null"`
	ProcessedBy       *uuid.UUID           `gorm:"type:uuid"`
	ProcessedAt       *time.Time
}

// TableName returns the table name for GORM
func (SaleReturn) TableName() string {
	return "sale_returns"
}

// NewSaleReturn creates a new return document in PENDING status
func NewSaleReturn(tenantID uuid.UUID, returnNumber string, originalSaleID, branchID uuid.UUID, reason string) (*SaleReturn, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if originalSaleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Original sale ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Return reason is required")
	}

	ret := &SaleReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		OriginalSaleID:      originalSaleID,
		BranchID:            branchID,
		ReturnReason:        reason,
		Lines:               make([]SaleReturnLineItem, 0),
		TotalRefundAmount:   decimal.Zero,
		Status:              SaleReturnStatusPending,
	}

	ret.AddDomainEvent(NewSaleReturnCreatedEvent(ret))

	return ret, nil
}

// AddLine adds a return line against an original sale line. Only allowed
// while PENDING.
func (r *SaleReturn) AddLine(original *SaleLineItem, quantityReturned int64, restoreToInventory bool) (*SaleReturnLineItem, error) {
	if r.Status != SaleReturnStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-pending return")
	}
	for idx := range r.Lines {
		if r.Lines[idx].SaleLineItemID == original.ID {
			return nil, shared.NewDomainError("DUPLICATE_LINE", "Sale line already on this return")
		}
	}

	line, err := NewSaleReturnLineItem(r.ID, original, quantityReturned, restoreToInventory)
	if err != nil {
		return nil, err
	}

	r.Lines = append(r.Lines, *line)
	r.recalculateRefund()
	r.UpdatedAt = time.Now()

	return line, nil
}

// recalculateRefund rederives the total refund from the lines
func (r *SaleReturn) recalculateRefund() {
	total := decimal.Zero
	for idx := range r.Lines {
		total = total.Add(r.Lines[idx].RefundAmount)
	}
	r.TotalRefundAmount = total
}

// Approve approves the return for processing
func (r *SaleReturn) Approve() error {
	if !r.Status.CanTransitionTo(SaleReturnStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if len(r.Lines) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve a return without lines")
	}
	r.Status = SaleReturnStatusApproved
	r.UpdatedAt = time.Now()
	return nil
}

// Reject rejects the return, leaving the original sale untouched
func (r *SaleReturn) Reject() error {
	if !r.Status.CanTransitionTo(SaleReturnStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}
	r.Status = SaleReturnStatusRejected
	r.UpdatedAt = time.Now()
	return nil
}

// MarkProcessed records that the refund and inventory restoration have
// been committed
func (r *SaleReturn) MarkProcessed(processedBy uuid.UUID) error {
	if !r.Status.CanTransitionTo(SaleReturnStatusProcessed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot process return in %s status", r.Status))
	}
	now := time.Now()
	r.Status = SaleReturnStatusProcessed
	r.ProcessedBy = &processedBy
	r.ProcessedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewSaleReturnProcessedEvent(r))

	return nil
}

// RestorableLines returns the lines flagged for inventory restoration
func (r *SaleReturn) RestorableLines() []SaleReturnLineItem {
	restorable := make([]SaleReturnLineItem, 0, len(r.Lines))
	for idx := range r.Lines {
		if r.Lines[idx].RestoreToInventory {
			restorable = append(restorable, r.Lines[idx])
		}
	}
	return restorable
}

// RefundMoney returns the total refund as Money
func (r *SaleReturn) RefundMoney() valueobject.Money {
	return valueobject.NewMoneyKES(r.TotalRefundAmount)
}
