package sales

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
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

// MockSaleRepository is a mock implementation of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Search(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountSearch(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

// MockSaleReturnRepository is a mock implementation of sales.SaleReturnRepository
type MockSaleReturnRepository struct {
	mock.Mock
}

func (m *MockSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SaleReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SaleReturn, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]sales.SaleReturn, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SaleReturn), args.Error(1)
}

func (m *MockSaleReturnRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleReturnRepository) Save(ctx context.Context, ret *sales.SaleReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

// MockEditRequestRepository is a mock implementation of sales.EditRequestRepository
type MockEditRequestRepository struct {
	mock.Mock
}

func (m *MockEditRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SaleEditRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleEditRequest), args.Error(1)
}

func (m *MockEditRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SaleEditRequest, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleEditRequest), args.Error(1)
}

func (m *MockEditRequestRepository) FindPendingForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SaleEditRequest, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SaleEditRequest), args.Error(1)
}

func (m *MockEditRequestRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]sales.SaleEditRequest, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SaleEditRequest), args.Error(1)
}

func (m *MockEditRequestRepository) Save(ctx context.Context, req *sales.SaleEditRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockCreditAccountRepository is a mock implementation of credit.CreditAccountRepository
type MockCreditAccountRepository struct {
	mock.Mock
}

func (m *MockCreditAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.CreditAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status credit.AccountStatus, filter shared.Filter) ([]credit.CreditAccount, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time, limit int) ([]credit.CreditAccount, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]credit.CreditAccount), args.Error(1)
}

func (m *MockCreditAccountRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditAccountRepository) Save(ctx context.Context, account *credit.CreditAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockCreditAccountRepository) SaveWithLock(ctx context.Context, account *credit.CreditAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}
