package sales

import (
	"testing"

	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSaleWithLine(t *testing.T, qty int64, price float64) (*Sale, *SaleLineItem) {
	t.Helper()
	sale := newTestSale(t, NoTax())
	line := addLine(t, sale, qty, price)
	_, err := sale.AddPayment(PaymentMethodCash, valueobject.NewMoneyKESFromFloat(float64(qty)*price), "")
	require.NoError(t, err)
	require.NoError(t, sale.Complete())
	return sale, line
}

func TestNewSaleReturn(t *testing.T) {
	t.Run("creates pending return", func(t *testing.T) {
		ret, err := NewSaleReturn(uuid.New(), "RET-20260830-0001", uuid.New(), uuid.New(), "damaged packaging")

		require.NoError(t, err)
		assert.Equal(t, SaleReturnStatusPending, ret.Status)
		assert.True(t, ret.TotalRefundAmount.IsZero())
	})

	t.Run("requires reason", func(t *testing.T) {
		_, err := NewSaleReturn(uuid.New(), "RET-1", uuid.New(), uuid.New(), "")
		assert.Error(t, err)
	})

	t.Run("requires original sale", func(t *testing.T) {
		_, err := NewSaleReturn(uuid.New(), "RET-1", uuid.Nil, uuid.New(), "damaged")
		assert.Error(t, err)
	})
}

func TestSaleReturn_AddLine(t *testing.T) {
	t.Run("refund priced at original sale price", func(t *testing.T) {
		sale, line := completedSaleWithLine(t, 3, 100)
		ret, err := NewSaleReturn(sale.TenantID, "RET-1", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)

		retLine, err := ret.AddLine(line, 2, true)

		require.NoError(t, err)
		assert.True(t, retLine.RefundAmount.Equal(decimal.NewFromInt(200)))
		assert.True(t, ret.TotalRefundAmount.Equal(decimal.NewFromInt(200)))
		assert.True(t, retLine.RestoreToInventory)
		assert.Equal(t, line.BatchID, retLine.BatchID)
	})

	t.Run("rejects quantity beyond returnable watermark", func(t *testing.T) {
		sale, line := completedSaleWithLine(t, 3, 100)
		require.NoError(t, sale.RecordLineReturn(line.ID, 2))
		ret, err := NewSaleReturn(sale.TenantID, "RET-2", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)

		_, err = ret.AddLine(sale.GetLine(line.ID), 2, true)

		assert.Error(t, err)
	})

	t.Run("rejects duplicate sale line on one return", func(t *testing.T) {
		sale, line := completedSaleWithLine(t, 3, 100)
		ret, err := NewSaleReturn(sale.TenantID, "RET-3", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)
		_, err = ret.AddLine(line, 1, true)
		require.NoError(t, err)

		_, err = ret.AddLine(line, 1, true)

		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		sale, line := completedSaleWithLine(t, 3, 100)
		ret, err := NewSaleReturn(sale.TenantID, "RET-4", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)

		_, err = ret.AddLine(line, 0, true)

		assert.Error(t, err)
	})
}

func TestSaleReturn_StatusTransitions(t *testing.T) {
	pendingReturn := func(t *testing.T) *SaleReturn {
		sale, line := completedSaleWithLine(t, 3, 100)
		ret, err := NewSaleReturn(sale.TenantID, "RET-5", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)
		_, err = ret.AddLine(line, 1, true)
		require.NoError(t, err)
		return ret
	}

	t.Run("approve then process", func(t *testing.T) {
		ret := pendingReturn(t)
		processor := uuid.New()

		require.NoError(t, ret.Approve())
		require.NoError(t, ret.MarkProcessed(processor))

		assert.Equal(t, SaleReturnStatusProcessed, ret.Status)
		require.NotNil(t, ret.ProcessedBy)
		assert.Equal(t, processor, *ret.ProcessedBy)
		assert.NotNil(t, ret.ProcessedAt)
	})

	t.Run("cannot approve empty return", func(t *testing.T) {
		sale, _ := completedSaleWithLine(t, 1, 100)
		ret, err := NewSaleReturn(sale.TenantID, "RET-6", sale.ID, sale.BranchID, "expired")
		require.NoError(t, err)

		assert.Error(t, ret.Approve())
	})

	t.Run("cannot process without approval", func(t *testing.T) {
		ret := pendingReturn(t)
		assert.Error(t, ret.MarkProcessed(uuid.New()))
	})

	t.Run("rejected return is terminal", func(t *testing.T) {
		ret := pendingReturn(t)
		require.NoError(t, ret.Reject())

		assert.Error(t, ret.Approve())
		assert.Error(t, ret.MarkProcessed(uuid.New()))
	})
}

func TestSaleReturn_RestorableLines(t *testing.T) {
	sale := newTestSale(t, NoTax())
	restock := addLine(t, sale, 2, 100)
	discard := addLine(t, sale, 1, 50)
	_, err := sale.AddPayment(PaymentMethodCash, valueobject.NewMoneyKESFromFloat(250), "")
	require.NoError(t, err)
	require.NoError(t, sale.Complete())

	ret, err := NewSaleReturn(sale.TenantID, "RET-7", sale.ID, sale.BranchID, "mixed")
	require.NoError(t, err)
	_, err = ret.AddLine(restock, 2, true)
	require.NoError(t, err)
	_, err = ret.AddLine(discard, 1, false)
	require.NoError(t, err)

	restorable := ret.RestorableLines()
	require.Len(t, restorable, 1)
	assert.Equal(t, restock.ID, restorable[0].SaleLineItemID)
	assert.True(t, ret.TotalRefundAmount.Equal(decimal.NewFromInt(250)))
}
