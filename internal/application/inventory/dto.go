package inventory

import (
	"time"

	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustRequest is the input for a single ledger adjustment
type AdjustRequest struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID                 `json:"product_id" binding:"required"`
	BranchID        uuid.UUID                 `json:"branch_id" binding:"required"`
	BatchID         uuid.UUID                 `json:"batch_id"`     // Either BatchID or BatchNumber selects the batch
	BatchNumber     string                    `json:"batch_number"` //
	Delta           int64                     `json:"delta" binding:"required"`
	TransactionType inventory.TransactionType `json:"transaction_type" binding:"required"`
	SourceRef       string                    `json:"source_ref" binding:"required"`
	SourceType      inventory.SourceType      `json:"source_type" binding:"required"`
	Reason          string                    `json:"reason"`
	PerformedBy     uuid.UUID                 `json:"-"`
}

// AdjustmentResult reports the outcome of one ledger adjustment
type AdjustmentResult struct {
	BatchID        uuid.UUID `json:"batch_id"`
	AuditEntryID   uuid.UUID `json:"audit_entry_id"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Duplicate      bool      `json:"duplicate"` // True when the idempotency key suppressed the adjustment
}

// TransferRequest moves stock of one product between branches
type TransferRequest struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	FromBranch  uuid.UUID `json:"from_branch" binding:"required"`
	ToBranch    uuid.UUID `json:"to_branch" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,min=1"`
	BatchNumber string    `json:"batch_number"`
	SourceRef   string    `json:"source_ref" binding:"required"`
	Reason      string    `json:"reason"`
	PerformedBy uuid.UUID `json:"-"`
}

// TransferResult reports both legs of a transfer
type TransferResult struct {
	Outbound AdjustmentResult `json:"outbound"`
	Inbound  AdjustmentResult `json:"inbound"`
}

// ReceiveStockRequest creates or tops up a batch from a purchase receipt or
// an initial stock entry
type ReceiveStockRequest struct {
	TenantID     uuid.UUID
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	BranchID     uuid.UUID       `json:"branch_id" binding:"required"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Quantity     int64           `json:"quantity" binding:"required,min=1"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	InitialStock bool            `json:"initial_stock"` // True for opening balances rather than purchases
	SourceRef    string          `json:"source_ref" binding:"required"`
	PerformedBy  uuid.UUID       `json:"-"`
}

// WriteOffRequest removes expired or damaged stock from a batch
type WriteOffRequest struct {
	TenantID     uuid.UUID
	ProductID    uuid.UUID                 `json:"product_id" binding:"required"`
	BranchID     uuid.UUID                 `json:"branch_id" binding:"required"`
	BatchID      uuid.UUID                 `json:"batch_id" binding:"required"`
	Quantity     int64                     `json:"quantity" binding:"required,min=1"`
	WriteOffType inventory.TransactionType `json:"write_off_type" binding:"required"` // EXPIRY_WRITE_OFF or DAMAGE_WRITE_OFF
	Reason       string                    `json:"reason" binding:"required"`
	SourceRef    string                    `json:"source_ref" binding:"required"`
	PerformedBy  uuid.UUID                 `json:"-"`
}

// BatchResponse is the read model for one inventory batch
type BatchResponse struct {
	ID           uuid.UUID       `json:"id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsActive     bool            `json:"is_active"`
	IsExpired    bool            `json:"is_expired"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToBatchResponse converts a batch aggregate to its read model
func ToBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		BranchID:     b.BranchID,
		ProductID:    b.ProductID,
		BatchNumber:  b.BatchNumber,
		ExpiryDate:   b.ExpiryDate,
		Quantity:     b.Quantity,
		UnitCost:     b.UnitCost,
		SellingPrice: b.SellingPrice,
		IsActive:     b.IsActive,
		IsExpired:    b.IsExpired(),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// RegisterProductRequest adds a product to the catalog
type RegisterProductRequest struct {
	TenantID uuid.UUID
	Name     string `json:"name" binding:"required"`
	Barcode  string `json:"barcode" binding:"required"`
	SKU      string `json:"sku"`
}

// ProductResponse is the read model for one catalog product
type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode"`
	SKU       string    `json:"sku,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToProductResponse converts a product aggregate to its read model
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		SKU:       p.SKU,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ScanResult is what the till gets back for one scanned barcode: the
// resolved product and its sellable batches at the branch, soonest
// expiry first
type ScanResult struct {
	Product ProductResponse `json:"product"`
	Batches []BatchResponse `json:"batches"`
}

// AuditEntryResponse is the read model for one audit log entry
type AuditEntryResponse struct {
	ID              uuid.UUID                 `json:"id"`
	ProductID       uuid.UUID                 `json:"product_id"`
	BranchID        uuid.UUID                 `json:"branch_id"`
	BatchID         uuid.UUID                 `json:"batch_id"`
	TransactionType inventory.TransactionType `json:"transaction_type"`
	QuantityChanged int64                     `json:"quantity_changed"`
	QuantityBefore  int64                     `json:"quantity_before"`
	QuantityAfter   int64                     `json:"quantity_after"`
	SourceReference string                    `json:"source_reference"`
	SourceType      inventory.SourceType      `json:"source_type"`
	Reason          string                    `json:"reason,omitempty"`
	PerformedBy     uuid.UUID                 `json:"performed_by"`
	PerformedAt     time.Time                 `json:"performed_at"`
	IsDuplicate     bool                      `json:"is_duplicate"`
	DuplicateRef    *uuid.UUID                `json:"duplicate_ref,omitempty"`
}

// ToAuditEntryResponse converts an audit entry to its read model
func ToAuditEntryResponse(e *inventory.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:              e.ID,
		ProductID:       e.ProductID,
		BranchID:        e.BranchID,
		BatchID:         e.BatchID,
		TransactionType: e.TransactionType,
		QuantityChanged: e.QuantityChanged,
		QuantityBefore:  e.QuantityBefore,
		QuantityAfter:   e.QuantityAfter,
		SourceReference: e.SourceReference,
		SourceType:      e.SourceType,
		Reason:          e.Reason,
		PerformedBy:     e.PerformedBy,
		PerformedAt:     e.PerformedAt,
		IsDuplicate:     e.IsDuplicate,
		DuplicateRef:    e.DuplicateRef,
	}
}
