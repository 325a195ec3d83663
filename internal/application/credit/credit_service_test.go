package credit

import (
	"context"
	"testing"
	"time"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func newCreditFixture(t *testing.T) (*CreditService, *MockCreditAccountRepository) {
	t.Helper()
	repo := new(MockCreditAccountRepository)
	return NewCreditService(NewNoOpTransactionScope(repo)), repo
}

func newAccount(t *testing.T, tenantID uuid.UUID, total, paid int64, due time.Time) *credit.CreditAccount {
	t.Helper()
	account, err := credit.NewCreditAccount(tenantID, "CRD-20260830-0001", uuid.New(), uuid.New(),
		valueobject.NewMoneyKES(decimal.NewFromInt(total)), valueobject.NewMoneyKES(decimal.NewFromInt(paid)), due)
	require.NoError(t, err)
	account.ClearDomainEvents()
	return account
}

func TestCreditService_MakePayment(t *testing.T) {
	due := time.Now().AddDate(0, 0, 30)

	t.Run("partial payment keeps account active", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 1000, 0, due)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)
		repo.On("SaveWithLock", mock.Anything, account).Return(nil)

		resp, err := service.MakePayment(context.Background(), MakePaymentRequest{
			TenantID:   tenantID,
			AccountID:  account.ID,
			Amount:     decimal.NewFromInt(400),
			Method:     "CASH",
			ReceivedBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, credit.AccountStatusActive, resp.Status)
		assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(600)))
		assert.Len(t, resp.Payments, 1)
	})

	t.Run("final payment settles the account as PAID", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 1000, 600, due)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)
		repo.On("SaveWithLock", mock.Anything, account).Return(nil)

		resp, err := service.MakePayment(context.Background(), MakePaymentRequest{
			TenantID:   tenantID,
			AccountID:  account.ID,
			Amount:     decimal.NewFromInt(400),
			Method:     "MPESA",
			ReceivedBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, credit.AccountStatusPaid, resp.Status)
		assert.True(t, resp.RemainingAmount.IsZero())
		assert.NotNil(t, resp.ClosedAt)
	})

	t.Run("overpayment rejected not clamped", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 1000, 900, due)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)

		_, err := service.MakePayment(context.Background(), MakePaymentRequest{
			TenantID:   tenantID,
			AccountID:  account.ID,
			Amount:     decimal.NewFromInt(200),
			Method:     "CASH",
			ReceivedBy: uuid.New(),
		})

		assert.True(t, shared.IsDomainErrorCode(err, "VALIDATION_ERROR"))
		assert.True(t, account.RemainingAmount.Equal(decimal.NewFromInt(100)))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("payment on a settled account rejected", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 500, 0, due)
		_, err := account.MakePayment(valueobject.NewMoneyKES(decimal.NewFromInt(500)), "CASH", "", uuid.New())
		require.NoError(t, err)
		account.ClearDomainEvents()

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)

		_, err = service.MakePayment(context.Background(), MakePaymentRequest{
			TenantID:   tenantID,
			AccountID:  account.ID,
			Amount:     decimal.NewFromInt(1),
			Method:     "CASH",
			ReceivedBy: uuid.New(),
		})

		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_STATE"))
	})

	t.Run("overdue account still accepts payments", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 800, 0, time.Now().AddDate(0, 0, -5))
		require.True(t, account.MarkOverdue(time.Now()))
		account.ClearDomainEvents()

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)
		repo.On("SaveWithLock", mock.Anything, account).Return(nil)

		resp, err := service.MakePayment(context.Background(), MakePaymentRequest{
			TenantID:   tenantID,
			AccountID:  account.ID,
			Amount:     decimal.NewFromInt(800),
			Method:     "CASH",
			ReceivedBy: uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, credit.AccountStatusPaid, resp.Status)
	})
}

func TestCreditService_UpdateOverdueAccounts(t *testing.T) {
	t.Run("marks only accounts past their due date", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		asOf := time.Now()

		past := newAccount(t, tenantID, 1000, 0, asOf.AddDate(0, 0, -3))
		future := newAccount(t, tenantID, 500, 0, asOf.AddDate(0, 0, 3))

		repo.On("FindOverdueCandidates", mock.Anything, asOf, overdueSweepBatchSize).
			Return([]credit.CreditAccount{*past, *future}, nil)
		repo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(a *credit.CreditAccount) bool {
			return a.ID == past.ID && a.Status == credit.AccountStatusOverdue
		})).Return(nil)

		marked, err := service.UpdateOverdueAccounts(context.Background(), asOf)

		require.NoError(t, err)
		assert.Equal(t, 1, marked)
		repo.AssertExpectations(t)
	})

	t.Run("rerunning the sweep is a no-op", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		asOf := time.Now()

		account := newAccount(t, tenantID, 1000, 0, asOf.AddDate(0, 0, -3))
		require.True(t, account.MarkOverdue(asOf))
		account.ClearDomainEvents()

		repo.On("FindOverdueCandidates", mock.Anything, asOf, overdueSweepBatchSize).
			Return([]credit.CreditAccount{*account}, nil)

		marked, err := service.UpdateOverdueAccounts(context.Background(), asOf)

		require.NoError(t, err)
		assert.Equal(t, 0, marked)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("empty candidate set", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		asOf := time.Now()

		repo.On("FindOverdueCandidates", mock.Anything, asOf, overdueSweepBatchSize).
			Return([]credit.CreditAccount{}, nil)

		marked, err := service.UpdateOverdueAccounts(context.Background(), asOf)

		require.NoError(t, err)
		assert.Equal(t, 0, marked)
	})
}

func TestCreditService_Transitions(t *testing.T) {
	due := time.Now().AddDate(0, 0, 30)

	t.Run("suspend then reactivate", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 1000, 0, due)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)
		repo.On("SaveWithLock", mock.Anything, account).Return(nil)

		resp, err := service.SuspendAccount(context.Background(), tenantID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, credit.AccountStatusSuspended, resp.Status)

		resp, err = service.ReactivateAccount(context.Background(), tenantID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, credit.AccountStatusActive, resp.Status)
	})

	t.Run("closing a paid account rejected", func(t *testing.T) {
		service, repo := newCreditFixture(t)
		tenantID := uuid.New()
		account := newAccount(t, tenantID, 100, 0, due)
		_, err := account.MakePayment(valueobject.NewMoneyKES(decimal.NewFromInt(100)), "CASH", "", uuid.New())
		require.NoError(t, err)
		account.ClearDomainEvents()

		repo.On("FindByIDForTenant", mock.Anything, tenantID, account.ID).Return(account, nil)

		_, err = service.CloseAccount(context.Background(), tenantID, account.ID)
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_STATE"))
	})
}
