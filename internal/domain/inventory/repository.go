package inventory

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchRepository defines the interface for inventory batch persistence
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForTenant finds a batch by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate finds a batch by ID within a tenant, acquiring a
	// row-level write lock for the remainder of the current transaction.
	// Callers outside a transaction scope must not use this method.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)

	// FindByProductAndBranch finds all batches of a product at a branch
	FindByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]Batch, error)

	// FindAvailableByProductAndBranch finds sellable batches (active, quantity > 0,
	// not expired) of a product at a branch, ordered soonest expiry first
	FindAvailableByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]Batch, error)

	// FindByBatchNumber finds a batch by product, branch and batch number
	FindByBatchNumber(ctx context.Context, tenantID, productID, branchID uuid.UUID, batchNumber string) (*Batch, error)

	// FindExpiring finds active batches with stock expiring on or before the cutoff
	FindExpiring(ctx context.Context, tenantID uuid.UUID, cutoff time.Time, filter shared.Filter) ([]Batch, error)

	// FindAllForTenant finds all batches for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, batch *Batch) error

	// CountForTenant counts batches matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ProductRepository defines the interface for catalog product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByBarcode finds an active product by its barcode within a tenant
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// AuditLogRepository defines the interface for the append-only inventory
// audit log. Update and delete are deliberately absent.
type AuditLogRepository interface {
	// Create appends a new audit entry
	Create(ctx context.Context, entry *AuditEntry) error

	// FindByID finds an audit entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*AuditEntry, error)

	// FindBySourceKey finds the non-duplicate entry for an idempotency key,
	// or nil if none exists
	FindBySourceKey(ctx context.Context, tenantID, productID, branchID uuid.UUID, sourceRef string, sourceType SourceType) (*AuditEntry, error)

	// FindByFilter finds entries matching the reconciliation filter
	FindByFilter(ctx context.Context, tenantID uuid.UUID, filter AuditFilter) ([]AuditEntry, error)

	// CountByFilter counts entries matching the reconciliation filter
	CountByFilter(ctx context.Context, tenantID uuid.UUID, filter AuditFilter) (int64, error)
}

// AuditFilter holds the query filters supported by the audit log reader
type AuditFilter struct {
	shared.Filter
	ProductID       *uuid.UUID
	BranchID        *uuid.UUID
	BatchID         *uuid.UUID
	TransactionType *TransactionType
	SourceType      *SourceType
	SourceReference string
	StartDate       *time.Time
	EndDate         *time.Time
	IncludeDupes    bool
}
