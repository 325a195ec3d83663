package integration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/infrastructure/persistence"
)

// seedBatch receives opening stock and returns the batch ID.
func seedBatch(t *testing.T, svc *appinv.LedgerService, tenantID, productID, branchID, userID uuid.UUID, quantity int64) uuid.UUID {
	t.Helper()

	result, err := svc.ReceiveStock(context.Background(), appinv.ReceiveStockRequest{
		TenantID:     tenantID,
		ProductID:    productID,
		BranchID:     branchID,
		BatchNumber:  "LOT-001",
		Quantity:     quantity,
		UnitCost:     decimal.NewFromInt(100),
		SellingPrice: decimal.NewFromInt(150),
		InitialStock: true,
		SourceRef:    "OPENING-001",
		PerformedBy:  userID,
	})
	require.NoError(t, err)
	require.Equal(t, quantity, result.QuantityAfter)
	return result.BatchID
}

// Concurrent sale deductions against one batch must never drive its quantity
// negative: row locking serializes the adjusters, and demand beyond the stock
// on hand fails with an insufficient stock error instead of overselling.
func TestLedgerService_ConcurrentDeductions(t *testing.T) {
	tdb := NewTestDB(t)
	svc := appinv.NewLedgerService(persistence.NewGormInventoryTransactionScope(tdb.DB))

	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	branchID := uuid.New()
	userID := uuid.New()

	const (
		opening  = 50
		workers  = 20
		perSale  = 5
	)
	batchID := seedBatch(t, svc, tenantID, productID, branchID, userID, opening)

	var succeeded, insufficient, failed int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Adjust(ctx, appinv.AdjustRequest{
				TenantID:        tenantID,
				ProductID:       productID,
				BranchID:        branchID,
				BatchID:         batchID,
				Delta:           -perSale,
				TransactionType: inventory.TransactionTypeSale,
				SourceRef:       fmt.Sprintf("SALE-%03d", i),
				SourceType:      inventory.SourceTypeSale,
				PerformedBy:     userID,
			})
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case shared.IsDomainErrorCode(err, shared.ErrInsufficientStock.Code):
				atomic.AddInt64(&insufficient, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(opening/perSale), succeeded, "exactly the stock on hand should sell")
	assert.Equal(t, int64(workers-opening/perSale), insufficient, "remaining attempts should be rejected")
	assert.Zero(t, failed, "no adjuster should fail with a non-domain error")

	batch, err := svc.GetBatch(ctx, tenantID, batchID)
	require.NoError(t, err)
	assert.Zero(t, batch.Quantity)

	// The surviving ledger must balance: opening stock plus all deductions
	// lands at zero, and every entry's before/after arithmetic holds.
	entries, total, err := svc.GetAuditTrail(ctx, tenantID, inventory.AuditFilter{
		Filter:  shared.Filter{Page: 1, PageSize: 100},
		BatchID: &batchID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1+opening/perSale), total)

	var sum int64
	for _, e := range entries {
		assert.Equal(t, e.QuantityBefore+e.QuantityChanged, e.QuantityAfter)
		sum += e.QuantityChanged
	}
	assert.Zero(t, sum)
}

// Replaying an adjustment with the same source reference records a duplicate
// marker and leaves the quantity untouched.
func TestLedgerService_IdempotentReplay(t *testing.T) {
	tdb := NewTestDB(t)
	svc := appinv.NewLedgerService(persistence.NewGormInventoryTransactionScope(tdb.DB))

	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	branchID := uuid.New()
	userID := uuid.New()

	batchID := seedBatch(t, svc, tenantID, productID, branchID, userID, 30)

	req := appinv.AdjustRequest{
		TenantID:        tenantID,
		ProductID:       productID,
		BranchID:        branchID,
		BatchID:         batchID,
		Delta:           -8,
		TransactionType: inventory.TransactionTypeSale,
		SourceRef:       "SALE-RETRY-001",
		SourceType:      inventory.SourceTypeSale,
		PerformedBy:     userID,
	}

	first, err := svc.Adjust(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, int64(22), first.QuantityAfter)

	second, err := svc.Adjust(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, int64(22), second.QuantityAfter)

	batch, err := svc.GetBatch(ctx, tenantID, batchID)
	require.NoError(t, err)
	assert.Equal(t, int64(22), batch.Quantity)

	// Both attempts leave a trace; only the first counts toward the balance.
	entries, _, err := svc.GetAuditTrail(ctx, tenantID, inventory.AuditFilter{
		Filter:          shared.Filter{Page: 1, PageSize: 10},
		SourceReference: "SALE-RETRY-001",
		IncludeDupes:    true,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	duplicates := 0
	for _, e := range entries {
		if e.IsDuplicate {
			duplicates++
			require.NotNil(t, e.DuplicateRef)
			assert.Equal(t, first.AuditEntryID, *e.DuplicateRef)
		}
	}
	assert.Equal(t, 1, duplicates)
}

// Batches are invisible across tenants even with the real database underneath.
func TestLedgerService_TenantIsolation(t *testing.T) {
	tdb := NewTestDB(t)
	svc := appinv.NewLedgerService(persistence.NewGormInventoryTransactionScope(tdb.DB))

	ctx := context.Background()
	ownerTenant := uuid.New()
	otherTenant := uuid.New()
	productID := uuid.New()
	branchID := uuid.New()
	userID := uuid.New()

	batchID := seedBatch(t, svc, ownerTenant, productID, branchID, userID, 10)

	_, err := svc.GetBatch(ctx, otherTenant, batchID)
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorCode(err, shared.ErrNotFound.Code))

	_, err = svc.Adjust(ctx, appinv.AdjustRequest{
		TenantID:        otherTenant,
		ProductID:       productID,
		BranchID:        branchID,
		BatchID:         batchID,
		Delta:           -1,
		TransactionType: inventory.TransactionTypeSale,
		SourceRef:       "SALE-XT-001",
		SourceType:      inventory.SourceTypeSale,
		PerformedBy:     userID,
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorCode(err, shared.ErrNotFound.Code))

	batch, err := svc.GetBatch(ctx, ownerTenant, batchID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), batch.Quantity)
}
