package credit

import (
	"testing"
	"time"

	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, total, paid float64) *CreditAccount {
	t.Helper()
	account, err := NewCreditAccount(
		uuid.New(), "CRD-20260830-0001", uuid.New(), uuid.New(),
		valueobject.NewMoneyKESFromFloat(total),
		valueobject.NewMoneyKESFromFloat(paid),
		time.Now().AddDate(0, 0, 14),
	)
	require.NoError(t, err)
	return account
}

func TestNewCreditAccount(t *testing.T) {
	t.Run("opens active account with shortfall as remaining", func(t *testing.T) {
		account := newTestAccount(t, 1000, 400)

		assert.Equal(t, AccountStatusActive, account.Status)
		assert.True(t, account.PaidAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, account.RemainingAmount.Equal(decimal.NewFromInt(600)))
		assert.NoError(t, account.Validate())

		events := account.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCreditAccountOpened, events[0].EventType())
	})

	t.Run("rejects paid amount above total", func(t *testing.T) {
		_, err := NewCreditAccount(
			uuid.New(), "CRD-1", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(100),
			valueobject.NewMoneyKESFromFloat(101),
			time.Now().AddDate(0, 0, 14),
		)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive total", func(t *testing.T) {
		_, err := NewCreditAccount(
			uuid.New(), "CRD-1", uuid.New(), uuid.New(),
			valueobject.ZeroKES(), valueobject.ZeroKES(),
			time.Now().AddDate(0, 0, 14),
		)
		assert.Error(t, err)
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewCreditAccount(
			uuid.New(), "CRD-1", uuid.New(), uuid.Nil,
			valueobject.NewMoneyKESFromFloat(100), valueobject.ZeroKES(),
			time.Now().AddDate(0, 0, 14),
		)
		assert.Error(t, err)
	})
}

func TestCreditAccount_MakePayment(t *testing.T) {
	t.Run("applies payment and keeps balance invariant", func(t *testing.T) {
		account := newTestAccount(t, 1000, 400)

		payment, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(200), "CASH", "", uuid.New())

		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(200)))
		assert.True(t, account.PaidAmount.Equal(decimal.NewFromInt(600)))
		assert.True(t, account.RemainingAmount.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, AccountStatusActive, account.Status)
		assert.NoError(t, account.Validate())
	})

	t.Run("settling payment transitions to PAID", func(t *testing.T) {
		account := newTestAccount(t, 1000, 400)

		_, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(600), "MPESA", "TGH7KLM9QR", uuid.New())

		require.NoError(t, err)
		assert.Equal(t, AccountStatusPaid, account.Status)
		assert.True(t, account.IsSettled())
		assert.NotNil(t, account.ClosedAt)
	})

	t.Run("overpayment rejected without mutation", func(t *testing.T) {
		account := newTestAccount(t, 1000, 400)

		_, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(601), "CASH", "", uuid.New())

		assert.Error(t, err)
		assert.True(t, account.PaidAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, account.RemainingAmount.Equal(decimal.NewFromInt(600)))
		assert.Empty(t, account.Payments)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		account := newTestAccount(t, 1000, 0)

		_, err := account.MakePayment(valueobject.ZeroKES(), "CASH", "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("paid account accepts no further payments", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		_, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(100), "CASH", "", uuid.New())
		require.NoError(t, err)

		_, err = account.MakePayment(valueobject.NewMoneyKESFromFloat(1), "CASH", "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("overdue account still accepts payments", func(t *testing.T) {
		account, err := NewCreditAccount(
			uuid.New(), "CRD-2", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(500), valueobject.ZeroKES(),
			time.Now().AddDate(0, 0, -7),
		)
		require.NoError(t, err)
		require.True(t, account.MarkOverdue(time.Now()))

		_, err = account.MakePayment(valueobject.NewMoneyKESFromFloat(500), "CASH", "", uuid.New())

		require.NoError(t, err)
		assert.Equal(t, AccountStatusPaid, account.Status)
	})

	t.Run("suspended account rejects payments", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		require.NoError(t, account.Suspend())

		_, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(50), "CASH", "", uuid.New())
		assert.Error(t, err)
	})
}

func TestCreditAccount_MarkOverdue(t *testing.T) {
	t.Run("active account past due date becomes overdue", func(t *testing.T) {
		account, err := NewCreditAccount(
			uuid.New(), "CRD-3", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(500), valueobject.ZeroKES(),
			time.Now().AddDate(0, 0, -1),
		)
		require.NoError(t, err)

		assert.True(t, account.MarkOverdue(time.Now()))
		assert.Equal(t, AccountStatusOverdue, account.Status)
	})

	t.Run("sweep is idempotent on overdue accounts", func(t *testing.T) {
		account, err := NewCreditAccount(
			uuid.New(), "CRD-4", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(500), valueobject.ZeroKES(),
			time.Now().AddDate(0, 0, -1),
		)
		require.NoError(t, err)
		require.True(t, account.MarkOverdue(time.Now()))
		versionAfterFirst := account.Version

		assert.False(t, account.MarkOverdue(time.Now()))
		assert.Equal(t, versionAfterFirst, account.Version)
	})

	t.Run("account not yet due is untouched", func(t *testing.T) {
		account := newTestAccount(t, 500, 0)

		assert.False(t, account.MarkOverdue(time.Now()))
		assert.Equal(t, AccountStatusActive, account.Status)
	})

	t.Run("paid account is untouched", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		_, err := account.MakePayment(valueobject.NewMoneyKESFromFloat(100), "CASH", "", uuid.New())
		require.NoError(t, err)

		assert.False(t, account.MarkOverdue(time.Now().AddDate(1, 0, 0)))
		assert.Equal(t, AccountStatusPaid, account.Status)
	})
}

func TestCreditAccount_AdministrativeTransitions(t *testing.T) {
	t.Run("close active account", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		require.NoError(t, account.Close())
		assert.Equal(t, AccountStatusClosed, account.Status)
		assert.NotNil(t, account.ClosedAt)
	})

	t.Run("suspend and reactivate", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		require.NoError(t, account.Suspend())
		require.NoError(t, account.Reactivate())
		assert.Equal(t, AccountStatusActive, account.Status)
	})

	t.Run("closed account is terminal", func(t *testing.T) {
		account := newTestAccount(t, 100, 0)
		require.NoError(t, account.Close())

		assert.Error(t, account.Close())
		assert.Error(t, account.Suspend())
		assert.Error(t, account.Reactivate())
	})
}
