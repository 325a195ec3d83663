package persistence

import (
	"context"
	"errors"

	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEditRequestRepository implements EditRequestRepository using GORM
type GormEditRequestRepository struct {
	db *gorm.DB
}

// NewGormEditRequestRepository creates a new GormEditRequestRepository
func NewGormEditRequestRepository(db *gorm.DB) *GormEditRequestRepository {
	return &GormEditRequestRepository{db: db}
}

// FindByID finds an edit request
func (r *GormEditRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SaleEditRequest, error) {
	var req sales.SaleEditRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByIDForTenant finds an edit request by ID within a tenant
func (r *GormEditRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SaleEditRequest, error) {
	var req sales.SaleEditRequest
	if err := r.db.WithContext(ctx).
		First(&req, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindPendingForTenant lists undecided requests for checker review
func (r *GormEditRequestRepository) FindPendingForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SaleEditRequest, error) {
	var requests []sales.SaleEditRequest
	query := r.db.WithContext(ctx).Model(&sales.SaleEditRequest{}).
		Where("tenant_id = ? AND status = ?", tenantID, sales.EditRequestStatusPending)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, EditRequestSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at ASC")
	}

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindBySaleID finds all requests against a sale
func (r *GormEditRequestRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]sales.SaleEditRequest, error) {
	var requests []sales.SaleEditRequest
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Save creates or updates an edit request
func (r *GormEditRequestRepository) Save(ctx context.Context, req *sales.SaleEditRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// Ensure GormEditRequestRepository implements EditRequestRepository
var _ sales.EditRequestRepository = (*GormEditRequestRepository)(nil)
