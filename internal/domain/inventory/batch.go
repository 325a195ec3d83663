package inventory

import (
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch represents the stock of one product at one branch, optionally tied
// to a manufacturing lot and expiry date. It is the aggregate root for all
// quantity mutations; the quantity never goes below zero.
type Batch struct {
	shared.TenantAggregateRoot
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_branch_product,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_branch_product,priority:2"`
	BatchNumber  string          `gorm:"type:varchar(50)"`
	ExpiryDate   *time.Time      `gorm:"type:date"`
	Quantity     int64           `gorm:"not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "inventory_batches"
}

// NewBatch creates a new inventory batch for a branch-product combination
func NewBatch(tenantID, branchID, productID uuid.UUID, batchNumber string, expiryDate *time.Time, quantity int64, unitCost, sellingPrice decimal.Decimal) (*Batch, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Opening quantity cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	batch := &Batch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		ProductID:           productID,
		BatchNumber:         batchNumber,
		ExpiryDate:          expiryDate,
		Quantity:            quantity,
		UnitCost:            unitCost,
		SellingPrice:        sellingPrice,
		IsActive:            true,
	}

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// ApplyDelta applies a signed quantity change to the batch and returns the
// quantities before and after. A delta that would drive the quantity negative
// is rejected with ErrInsufficientStock; a zero delta is rejected outright.
func (b *Batch) ApplyDelta(delta int64) (before, after int64, err error) {
	if delta == 0 {
		return b.Quantity, b.Quantity, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if !b.IsActive {
		return b.Quantity, b.Quantity, shared.NewDomainError("INACTIVE_BATCH", "Batch is not active")
	}

	before = b.Quantity
	after = before + delta
	if after < 0 {
		return before, before, shared.ErrInsufficientStock
	}

	b.Quantity = after
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewStockAdjustedEvent(b, delta, before, after))

	return before, after, nil
}

// CanFulfill returns true if the batch can cover the requested quantity
func (b *Batch) CanFulfill(quantity int64) bool {
	return b.IsActive && b.Quantity >= quantity
}

// IsExpired returns true if the batch has passed its expiry date
func (b *Batch) IsExpired() bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(time.Now())
}

// IsAvailable returns true if the batch can be sold from
// (active, has stock, not expired)
func (b *Batch) IsAvailable() bool {
	return b.IsActive && b.Quantity > 0 && !b.IsExpired()
}

// Deactivate soft-deactivates the batch. Batches referenced by sale lines
// are never hard-deleted.
func (b *Batch) Deactivate() error {
	if !b.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Batch is already inactive")
	}
	b.IsActive = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewBatchDeactivatedEvent(b))

	return nil
}

// UpdateSellingPrice updates the batch selling price
func (b *Batch) UpdateSellingPrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	b.SellingPrice = price.Amount()
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// StockValue returns the cost value of the stock held in this batch
func (b *Batch) StockValue() decimal.Decimal {
	return b.UnitCost.Mul(decimal.NewFromInt(b.Quantity))
}
