package inventory

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionType classifies an inventory mutation in the audit log
type TransactionType string

const (
	TransactionTypePurchase       TransactionType = "PURCHASE"
	TransactionTypeSale           TransactionType = "SALE"
	TransactionTypeAdjustment     TransactionType = "ADJUSTMENT"
	TransactionTypeTransferIn     TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut    TransactionType = "TRANSFER_OUT"
	TransactionTypeReturn         TransactionType = "RETURN"
	TransactionTypeExpiryWriteOff TransactionType = "EXPIRY_WRITE_OFF"
	TransactionTypeDamageWriteOff TransactionType = "DAMAGE_WRITE_OFF"
	TransactionTypeInitialStock   TransactionType = "INITIAL_STOCK"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePurchase,
		TransactionTypeSale,
		TransactionTypeAdjustment,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeReturn,
		TransactionTypeExpiryWriteOff,
		TransactionTypeDamageWriteOff,
		TransactionTypeInitialStock:
		return true
	}
	return false
}

// SourceType identifies the kind of document that caused a mutation
type SourceType string

const (
	SourceTypeSale             SourceType = "SALE"
	SourceTypeSaleReturn       SourceType = "SALE_RETURN"
	SourceTypeSaleCancellation SourceType = "SALE_CANCELLATION"
	SourceTypePurchaseOrder    SourceType = "PURCHASE_ORDER"
	SourceTypeTransfer         SourceType = "TRANSFER"
	SourceTypeManualAdjustment SourceType = "MANUAL_ADJUSTMENT"
	SourceTypeWriteOff         SourceType = "WRITE_OFF"
	SourceTypeInitialStock     SourceType = "INITIAL_STOCK"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeSale,
		SourceTypeSaleReturn,
		SourceTypeSaleCancellation,
		SourceTypePurchaseOrder,
		SourceTypeTransfer,
		SourceTypeManualAdjustment,
		SourceTypeWriteOff,
		SourceTypeInitialStock:
		return true
	}
	return false
}

// AuditEntry is an immutable record of one inventory mutation.
// Once created, entries are never updated or deleted - corrections are made
// with new entries. At most one non-duplicate entry may exist per
// (product, branch, source reference, source type) tuple; retried writes are
// recorded with IsDuplicate set and a reference to the original.
type AuditEntry struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_tenant_time,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_source,priority:1"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_source,priority:2"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionType TransactionType `gorm:"type:varchar(30);not null;index"`
	QuantityChanged int64           `gorm:"not null"` // Signed, never zero
	QuantityBefore  int64           `gorm:"not null"`
	QuantityAfter   int64           `gorm:"not null"`
	SourceReference string          `gorm:"type:varchar(50);not null;index:idx_audit_source,priority:3"`
	SourceType      SourceType      `gorm:"type:varchar(30);not null;index:idx_audit_source,priority:4"`
	Reason          string          `gorm:"type:varchar(255)"`
	PerformedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	PerformedAt     time.Time       `gorm:"type:timestamptz;not null;index:idx_audit_tenant_time,priority:2"`
	IsDuplicate     bool            `gorm:"not null;default:false"`
	DuplicateRef    *uuid.UUID      `gorm:"type:uuid"` // Original entry for duplicate attempts
}

// TableName returns the table name for GORM
func (AuditEntry) TableName() string {
	return "inventory_audit_log"
}

// NewAuditEntry creates a new audit entry, enforcing the balance invariant
// quantityAfter == quantityBefore + quantityChanged
func NewAuditEntry(
	tenantID, productID, branchID, batchID uuid.UUID,
	txType TransactionType,
	quantityChanged, quantityBefore, quantityAfter int64,
	sourceRef string,
	sourceType SourceType,
	performedBy uuid.UUID,
) (*AuditEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantityChanged == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if quantityAfter != quantityBefore+quantityChanged {
		return nil, shared.ErrInvariantViolation
	}
	if sourceRef == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_REF", "Source reference cannot be empty")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source type")
	}

	return &AuditEntry{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		ProductID:       productID,
		BranchID:        branchID,
		BatchID:         batchID,
		TransactionType: txType,
		QuantityChanged: quantityChanged,
		QuantityBefore:  quantityBefore,
		QuantityAfter:   quantityAfter,
		SourceReference: sourceRef,
		SourceType:      sourceType,
		PerformedBy:     performedBy,
		PerformedAt:     time.Now(),
	}, nil
}

// WithReason sets the reason for the mutation
func (e *AuditEntry) WithReason(reason string) *AuditEntry {
	e.Reason = reason
	return e
}

// MarkDuplicate marks this entry as a suppressed duplicate of the original
func (e *AuditEntry) MarkDuplicate(originalID uuid.UUID) *AuditEntry {
	e.IsDuplicate = true
	e.DuplicateRef = &originalID
	return e
}

// Validate re-checks the balance invariant before persisting. The writer
// treats a violation as fatal rather than silently correcting it.
func (e *AuditEntry) Validate() error {
	if e.QuantityChanged == 0 {
		return shared.ErrInvariantViolation
	}
	if e.QuantityAfter != e.QuantityBefore+e.QuantityChanged {
		return shared.ErrInvariantViolation
	}
	return nil
}

// IdempotencyKey returns the natural key used to detect retried writes
// for the same underlying event
func (e *AuditEntry) IdempotencyKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", e.ProductID, e.BranchID, e.SourceReference, e.SourceType)
}
