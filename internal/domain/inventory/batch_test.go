package inventory

import (
	"testing"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, quantity int64) *Batch {
	t.Helper()
	batch, err := NewBatch(
		uuid.New(), uuid.New(), uuid.New(),
		"BN-001", nil, quantity,
		decimal.NewFromInt(80), decimal.NewFromInt(120),
	)
	require.NoError(t, err)
	return batch
}

func TestNewBatch(t *testing.T) {
	t.Run("creates batch with valid inputs", func(t *testing.T) {
		tenantID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()
		expiry := time.Now().AddDate(1, 0, 0)

		batch, err := NewBatch(tenantID, branchID, productID, "BN-2026-01", &expiry, 100, decimal.NewFromInt(50), decimal.NewFromInt(75))

		require.NoError(t, err)
		assert.Equal(t, tenantID, batch.TenantID)
		assert.Equal(t, branchID, batch.BranchID)
		assert.Equal(t, productID, batch.ProductID)
		assert.Equal(t, int64(100), batch.Quantity)
		assert.True(t, batch.IsActive)

		events := batch.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBatchCreated, events[0].EventType())
	})

	t.Run("fails with empty branch", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.Nil, uuid.New(), "", nil, 10, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails with empty product", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), uuid.Nil, "", nil, 10, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails with negative opening quantity", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), uuid.New(), "", nil, -1, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails with negative unit cost", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), uuid.New(), "", nil, 10, decimal.NewFromInt(-1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestBatch_ApplyDelta(t *testing.T) {
	t.Run("decrements stock and reports before and after", func(t *testing.T) {
		batch := newTestBatch(t, 100)
		batch.ClearDomainEvents()
		versionBefore := batch.Version

		before, after, err := batch.ApplyDelta(-30)

		require.NoError(t, err)
		assert.Equal(t, int64(100), before)
		assert.Equal(t, int64(70), after)
		assert.Equal(t, int64(70), batch.Quantity)
		assert.Equal(t, versionBefore+1, batch.Version)

		events := batch.GetDomainEvents()
		require.Len(t, events, 1)
		adjusted, ok := events[0].(*StockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(-30), adjusted.Delta)
		assert.Equal(t, int64(100), adjusted.QuantityBefore)
		assert.Equal(t, int64(70), adjusted.QuantityAfter)
	})

	t.Run("increments stock", func(t *testing.T) {
		batch := newTestBatch(t, 10)

		before, after, err := batch.ApplyDelta(25)

		require.NoError(t, err)
		assert.Equal(t, int64(10), before)
		assert.Equal(t, int64(35), after)
	})

	t.Run("allows draining stock to exactly zero", func(t *testing.T) {
		batch := newTestBatch(t, 5)

		_, after, err := batch.ApplyDelta(-5)

		require.NoError(t, err)
		assert.Equal(t, int64(0), after)
	})

	t.Run("rejects delta that would drive stock negative", func(t *testing.T) {
		batch := newTestBatch(t, 5)
		versionBefore := batch.Version

		_, _, err := batch.ApplyDelta(-6)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(5), batch.Quantity)
		assert.Equal(t, versionBefore, batch.Version)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		batch := newTestBatch(t, 5)

		_, _, err := batch.ApplyDelta(0)

		assert.Error(t, err)
		assert.Equal(t, int64(5), batch.Quantity)
	})

	t.Run("rejects mutation of inactive batch", func(t *testing.T) {
		batch := newTestBatch(t, 5)
		require.NoError(t, batch.Deactivate())

		_, _, err := batch.ApplyDelta(-1)

		assert.Error(t, err)
	})
}

func TestBatch_Availability(t *testing.T) {
	t.Run("available when active with stock and unexpired", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		assert.True(t, batch.IsAvailable())
	})

	t.Run("not available when drained", func(t *testing.T) {
		batch := newTestBatch(t, 1)
		_, _, err := batch.ApplyDelta(-1)
		require.NoError(t, err)
		assert.False(t, batch.IsAvailable())
	})

	t.Run("not available when expired", func(t *testing.T) {
		expiry := time.Now().AddDate(0, 0, -1)
		batch, err := NewBatch(uuid.New(), uuid.New(), uuid.New(), "BN-OLD", &expiry, 10, decimal.NewFromInt(10), decimal.NewFromInt(15))
		require.NoError(t, err)

		assert.True(t, batch.IsExpired())
		assert.False(t, batch.IsAvailable())
	})

	t.Run("no expiry date never expires", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		assert.False(t, batch.IsExpired())
	})

	t.Run("can fulfill within stock", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		assert.True(t, batch.CanFulfill(10))
		assert.False(t, batch.CanFulfill(11))
	})
}

func TestBatch_Deactivate(t *testing.T) {
	t.Run("deactivates active batch", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		batch.ClearDomainEvents()

		err := batch.Deactivate()

		require.NoError(t, err)
		assert.False(t, batch.IsActive)
		events := batch.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBatchDeactivated, events[0].EventType())
	})

	t.Run("fails when already inactive", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		require.NoError(t, batch.Deactivate())

		err := batch.Deactivate()

		assert.Error(t, err)
	})
}

func TestBatch_UpdateSellingPrice(t *testing.T) {
	t.Run("updates price", func(t *testing.T) {
		batch := newTestBatch(t, 10)

		err := batch.UpdateSellingPrice(valueobject.NewMoneyKESFromFloat(150))

		require.NoError(t, err)
		assert.True(t, batch.SellingPrice.Equal(decimal.NewFromInt(150)))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		batch := newTestBatch(t, 10)

		err := batch.UpdateSellingPrice(valueobject.NewMoneyKES(decimal.NewFromInt(-1)))

		assert.Error(t, err)
	})
}

func TestBatch_StockValue(t *testing.T) {
	batch := newTestBatch(t, 7)
	assert.True(t, batch.StockValue().Equal(decimal.NewFromInt(560)))
}
