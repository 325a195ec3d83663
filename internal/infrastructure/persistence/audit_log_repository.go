package persistence

import (
	"context"
	"errors"

	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM.
// The log is append-only: there is no update or delete path, and the
// unique index on (product, branch, source ref, source type) for
// non-duplicate rows backs the idempotent insert.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends a new audit entry
func (r *GormAuditLogRepository) Create(ctx context.Context, entry *inventory.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID finds an audit entry by its ID
func (r *GormAuditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.AuditEntry, error) {
	var entry inventory.AuditEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindBySourceKey finds the non-duplicate entry for an idempotency key, or nil if none exists
func (r *GormAuditLogRepository) FindBySourceKey(ctx context.Context, tenantID, productID, branchID uuid.UUID, sourceRef string, sourceType inventory.SourceType) (*inventory.AuditEntry, error) {
	var entry inventory.AuditEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ? AND source_reference = ? AND source_type = ?",
			tenantID, productID, branchID, sourceRef, sourceType).
		Where("is_duplicate = FALSE").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByFilter finds entries matching the reconciliation filter
func (r *GormAuditLogRepository) FindByFilter(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) ([]inventory.AuditEntry, error) {
	var entries []inventory.AuditEntry
	query := r.buildFilterQuery(ctx, tenantID, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, AuditLogSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("performed_at DESC")
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByFilter counts entries matching the reconciliation filter
func (r *GormAuditLogRepository) CountByFilter(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) (int64, error) {
	var count int64
	if err := r.buildFilterQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAuditLogRepository) buildFilterQuery(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&inventory.AuditEntry{}).
		Where("tenant_id = ?", tenantID)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.TransactionType != nil {
		query = query.Where("transaction_type = ?", *filter.TransactionType)
	}
	if filter.SourceType != nil {
		query = query.Where("source_type = ?", *filter.SourceType)
	}
	if filter.SourceReference != "" {
		query = query.Where("source_reference = ?", filter.SourceReference)
	}
	if filter.StartDate != nil {
		query = query.Where("performed_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("performed_at <= ?", *filter.EndDate)
	}
	if !filter.IncludeDupes {
		query = query.Where("is_duplicate = FALSE")
	}
	return query
}

// Ensure GormAuditLogRepository implements AuditLogRepository
var _ inventory.AuditLogRepository = (*GormAuditLogRepository)(nil)
