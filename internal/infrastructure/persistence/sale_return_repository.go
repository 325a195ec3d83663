package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleReturnRepository implements SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

// FindByID finds a return with its lines
func (r *GormSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SaleReturn, error) {
	var ret sales.SaleReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&ret, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindByIDForTenant finds a return by ID within a tenant
func (r *GormSaleReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SaleReturn, error) {
	var ret sales.SaleReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&ret, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindBySaleID finds all returns against a sale
func (r *GormSaleReturnRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]sales.SaleReturn, error) {
	var returns []sales.SaleReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND original_sale_id = ?", tenantID, saleID).
		Order("created_at ASC").
		Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// CountForDay counts returns created on the given day, used for number generation
func (r *GormSaleReturnRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.SaleReturn{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a return with its lines
func (r *GormSaleReturnRepository) Save(ctx context.Context, ret *sales.SaleReturn) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(ret).Error
}

// Ensure GormSaleReturnRepository implements SaleReturnRepository
var _ sales.SaleReturnRepository = (*GormSaleReturnRepository)(nil)
