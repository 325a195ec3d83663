package inventory

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBatchRepository is a mock implementation of inventory.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Batch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]inventory.Batch, error) {
	args := m.Called(ctx, tenantID, productID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindAvailableByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]inventory.Batch, error) {
	args := m.Called(ctx, tenantID, productID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByBatchNumber(ctx context.Context, tenantID, productID, branchID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	args := m.Called(ctx, tenantID, productID, branchID, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindExpiring(ctx context.Context, tenantID uuid.UUID, cutoff time.Time, filter shared.Filter) ([]inventory.Batch, error) {
	args := m.Called(ctx, tenantID, cutoff, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Batch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) SaveWithLock(ctx context.Context, batch *inventory.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of inventory.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*inventory.Product, error) {
	args := m.Called(ctx, tenantID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of inventory.AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *inventory.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.AuditEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AuditEntry), args.Error(1)
}

func (m *MockAuditLogRepository) FindBySourceKey(ctx context.Context, tenantID, productID, branchID uuid.UUID, sourceRef string, sourceType inventory.SourceType) (*inventory.AuditEntry, error) {
	args := m.Called(ctx, tenantID, productID, branchID, sourceRef, sourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AuditEntry), args.Error(1)
}

func (m *MockAuditLogRepository) FindByFilter(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) ([]inventory.AuditEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.AuditEntry), args.Error(1)
}

func (m *MockAuditLogRepository) CountByFilter(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}
