package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its lines and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByIDForTenant finds a sale by ID within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&sale, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindBySaleNumber finds a sale by its number within a tenant
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&sale, "tenant_id = ? AND sale_number = ?", tenantID, saleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// Search finds sales matching the filter
func (r *GormSaleRepository) Search(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, error) {
	var results []sales.Sale
	query := r.buildSearchQuery(ctx, tenantID, filter).
		Preload("Lines").
		Preload("Payments")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, SaleSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountSearch counts sales matching the filter
func (r *GormSaleRepository) CountSearch(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) (int64, error) {
	var count int64
	if err := r.buildSearchQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountForDay counts sales created on the given day, used for number generation
func (r *GormSaleRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	if err := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale with its lines and payments
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(sale).Error
}

// SaveWithLock saves with optimistic locking. Lines and payments are written
// unconditionally; the version check guards the aggregate header.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(sale).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]interface{}{
			"subtotal":        sale.Subtotal,
			"tax_amount":      sale.TaxAmount,
			"discount_amount": sale.DiscountAmount,
			"total_amount":    sale.TotalAmount,
			"status":          sale.Status,
			"return_status":   sale.ReturnStatus,
			"completed_at":    sale.CompletedAt,
			"cancelled_at":    sale.CancelledAt,
			"cancel_reason":   sale.CancelReason,
			"version":         sale.Version,
			"updated_at":      sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Sale was modified by another transaction")
	}

	if len(sale.Lines) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&sale.Lines).Error; err != nil {
			return err
		}
	}
	if len(sale.Payments) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&sale.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormSaleRepository) buildSearchQuery(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("tenant_id = ?", tenantID)

	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.CashierID != nil {
		query = query.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ReturnStatus != nil {
		query = query.Where("return_status = ?", *filter.ReturnStatus)
	}
	if filter.IsCreditSale != nil {
		query = query.Where("is_credit_sale = ?", *filter.IsCreditSale)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("sale_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
