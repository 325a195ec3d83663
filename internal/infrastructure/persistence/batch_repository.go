package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDForTenant finds a batch by ID within a tenant
func (r *GormBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		First(&batch, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDForUpdate finds a batch by ID, taking a row-level write lock.
// Must run inside a transaction; concurrent adjusters serialize here so the
// quantity invariant holds without lost updates.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProductAndBranch finds all batches of a product at a branch
func (r *GormBatchRepository) FindByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ?", tenantID, productID, branchID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAvailableByProductAndBranch finds sellable batches ordered soonest expiry first (FEFO)
func (r *GormBatchRepository) FindAvailableByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ?", tenantID, productID, branchID).
		Where("is_active = TRUE AND quantity > 0").
		Where("expiry_date IS NULL OR expiry_date > ?", time.Now()).
		Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByBatchNumber finds a batch by product, branch and batch number
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, tenantID, productID, branchID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ? AND batch_number = ?",
			tenantID, productID, branchID, batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindExpiring finds active batches with stock expiring on or before the cutoff
func (r *GormBatchRepository) FindExpiring(ctx context.Context, tenantID uuid.UUID, cutoff time.Time, filter shared.Filter) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Batch{}).
			Where("tenant_id = ?", tenantID).
			Where("is_active = TRUE AND quantity > 0").
			Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff),
		filter,
	)
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAllForTenant finds all batches for a tenant
func (r *GormBatchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Batch{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *inventory.Batch) error {
	result := r.db.WithContext(ctx).
		Model(batch).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
		Updates(map[string]interface{}{
			"quantity":      batch.Quantity,
			"unit_cost":     batch.UnitCost,
			"selling_price": batch.SellingPrice,
			"is_active":     batch.IsActive,
			"version":       batch.Version,
			"updated_at":    batch.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Batch was modified by another transaction")
	}
	return nil
}

// CountForTenant counts batches matching the filter
func (r *GormBatchRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Batch{}).Where("tenant_id = ?", tenantID)
	query = r.applyContentFilters(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination, ordering and content filters to the query
func (r *GormBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyContentFilters(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if field := ValidateSortField(filter.OrderBy, BatchSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC")
	}

	return query
}

func (r *GormBatchRepository) applyContentFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		}
	}
	if filter.Search != "" {
		query = query.Where("batch_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
