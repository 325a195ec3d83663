package sales

import (
	"testing"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commissionSale(t *testing.T, batchID uuid.UUID, quantity, unitPrice int64, tax TaxSettings) *Sale {
	t.Helper()
	sale, err := NewSale(uuid.New(), "SAL-20260830-0001", uuid.New(), uuid.New(), nil, "", "", false, tax)
	require.NoError(t, err)
	_, err = sale.AddLine(uuid.New(), "Amoxicillin 500mg", batchID, quantity,
		valueobject.NewMoneyKES(decimal.NewFromInt(unitPrice)), valueobject.ZeroKES())
	require.NoError(t, err)
	_, err = sale.AddPayment(PaymentMethodCash, valueobject.NewMoneyKES(sale.TotalAmount), "")
	require.NoError(t, err)
	require.NoError(t, sale.Complete())
	return sale
}

func TestPercentOfProfitPolicy(t *testing.T) {
	policy, err := NewPercentOfProfitPolicy(DefaultCommissionRate)
	require.NoError(t, err)

	t.Run("pays fifteen percent of gross profit", func(t *testing.T) {
		batchID := uuid.New()
		// 5 units sold at 200 against a 120 cost: profit 400
		sale := commissionSale(t, batchID, 5, 200, NoTax())
		costs := map[uuid.UUID]decimal.Decimal{batchID: decimal.NewFromInt(120)}

		commission, err := policy.Commission(sale, costs)

		require.NoError(t, err)
		assert.True(t, commission.Amount().Equal(decimal.NewFromInt(60)), "got %s", commission)
	})

	t.Run("loss making sale earns nothing", func(t *testing.T) {
		batchID := uuid.New()
		sale := commissionSale(t, batchID, 2, 100, NoTax())
		costs := map[uuid.UUID]decimal.Decimal{batchID: decimal.NewFromInt(150)}

		commission, err := policy.Commission(sale, costs)

		require.NoError(t, err)
		assert.True(t, commission.IsZero())
	})

	t.Run("inclusive tax is stripped from the revenue basis", func(t *testing.T) {
		batchID := uuid.New()
		// 116 inclusive of 16% VAT nets 100; profit 100-60=40, commission 6
		sale := commissionSale(t, batchID, 1, 116, TaxSettings{Rate: decimal.NewFromFloat(0.16), Inclusive: true})
		costs := map[uuid.UUID]decimal.Decimal{batchID: decimal.NewFromInt(60)}

		commission, err := policy.Commission(sale, costs)

		require.NoError(t, err)
		assert.True(t, commission.Amount().Equal(decimal.NewFromInt(6)), "got %s", commission)
	})

	t.Run("deleted lines do not contribute", func(t *testing.T) {
		batchID := uuid.New()
		otherBatch := uuid.New()
		sale, err := NewSale(uuid.New(), "SAL-20260830-0002", uuid.New(), uuid.New(), nil, "", "", false, NoTax())
		require.NoError(t, err)
		line, err := sale.AddLine(uuid.New(), "Paracetamol", batchID, 2,
			valueobject.NewMoneyKES(decimal.NewFromInt(100)), valueobject.ZeroKES())
		require.NoError(t, err)
		_, err = sale.AddLine(uuid.New(), "Ibuprofen", otherBatch, 1,
			valueobject.NewMoneyKES(decimal.NewFromInt(300)), valueobject.ZeroKES())
		require.NoError(t, err)
		_, err = sale.AddPayment(PaymentMethodCash, valueobject.NewMoneyKES(sale.TotalAmount), "")
		require.NoError(t, err)
		require.NoError(t, sale.Complete())

		for idx := range sale.Lines {
			if sale.Lines[idx].ID == line.ID {
				sale.Lines[idx].IsDeleted = true
			}
		}

		// Only the 300-revenue line counts: profit 300-180=120, commission 18
		commission, err := policy.Commission(sale, map[uuid.UUID]decimal.Decimal{
			otherBatch: decimal.NewFromInt(180),
		})

		require.NoError(t, err)
		assert.True(t, commission.Amount().Equal(decimal.NewFromInt(18)), "got %s", commission)
	})

	t.Run("pending sale rejected", func(t *testing.T) {
		batchID := uuid.New()
		sale, err := NewSale(uuid.New(), "SAL-20260830-0003", uuid.New(), uuid.New(), nil, "", "", false, NoTax())
		require.NoError(t, err)
		_, err = sale.AddLine(uuid.New(), "Syringes", batchID, 1,
			valueobject.NewMoneyKES(decimal.NewFromInt(50)), valueobject.ZeroKES())
		require.NoError(t, err)

		_, err = policy.Commission(sale, map[uuid.UUID]decimal.Decimal{batchID: decimal.NewFromInt(20)})

		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_STATE"))
	})

	t.Run("missing unit cost rejected", func(t *testing.T) {
		sale := commissionSale(t, uuid.New(), 1, 100, NoTax())

		_, err := policy.Commission(sale, map[uuid.UUID]decimal.Decimal{})

		assert.True(t, shared.IsDomainErrorCode(err, "MISSING_UNIT_COST"))
	})
}

func TestNewPercentOfProfitPolicy(t *testing.T) {
	t.Run("rejects out of range rates", func(t *testing.T) {
		_, err := NewPercentOfProfitPolicy(decimal.NewFromInt(-1))
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_COMMISSION_RATE"))

		_, err = NewPercentOfProfitPolicy(decimal.NewFromInt(2))
		assert.True(t, shared.IsDomainErrorCode(err, "INVALID_COMMISSION_RATE"))
	})
}
