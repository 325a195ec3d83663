package sales

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale with its lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForTenant finds a sale by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber finds a sale by its number within a tenant
	FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*Sale, error)

	// Search finds sales matching the filter
	Search(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, error)

	// CountSearch counts sales matching the filter
	CountSearch(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) (int64, error)

	// CountForDay counts sales created on the given day, used for number generation
	CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error)

	// Save creates or updates a sale with its lines and payments
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, sale *Sale) error
}

// SaleFilter holds the query filters supported by sale search
type SaleFilter struct {
	shared.Filter
	BranchID     *uuid.UUID
	CashierID    *uuid.UUID
	CustomerID   *uuid.UUID
	Status       *SaleStatus
	ReturnStatus *ReturnStatus
	IsCreditSale *bool
	StartDate    *time.Time
	EndDate      *time.Time
}

// SaleReturnRepository defines the interface for sale return persistence
type SaleReturnRepository interface {
	// FindByID finds a return with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SaleReturn, error)

	// FindByIDForTenant finds a return by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SaleReturn, error)

	// FindBySaleID finds all returns against a sale
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]SaleReturn, error)

	// CountForDay counts returns created on the given day, used for number generation
	CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error)

	// Save creates or updates a return with its lines
	Save(ctx context.Context, ret *SaleReturn) error
}

// EditRequestRepository defines the interface for edit request persistence
type EditRequestRepository interface {
	// FindByID finds an edit request
	FindByID(ctx context.Context, id uuid.UUID) (*SaleEditRequest, error)

	// FindByIDForTenant finds an edit request by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SaleEditRequest, error)

	// FindPendingForTenant lists undecided requests for checker review
	FindPendingForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SaleEditRequest, error)

	// FindBySaleID finds all requests against a sale
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]SaleEditRequest, error)

	// Save creates or updates an edit request
	Save(ctx context.Context, req *SaleEditRequest) error
}
