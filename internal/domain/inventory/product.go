package inventory

import (
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Product is the catalog entry batches hang off. The till resolves a
// scanned barcode to a product before picking a batch to sell from.
type Product struct {
	shared.TenantAggregateRoot
	Name     string `gorm:"type:varchar(255);not null"`
	Barcode  string `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_tenant_barcode"`
	SKU      string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(tenantID uuid.UUID, name, barcode, sku string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Product barcode cannot be empty")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Barcode:             barcode,
		SKU:                 sku,
		IsActive:            true,
	}, nil
}

// Deactivate retires the product from the catalog. Scans stop resolving
// it; historical sale lines keep their snapshot of the name.
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
