package inventory

import (
	"testing"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditEntry(t *testing.T, changed, before, after int64) *AuditEntry {
	t.Helper()
	entry, err := NewAuditEntry(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		TransactionTypeSale,
		changed, before, after,
		"SAL-2026-00042", SourceTypeSale,
		uuid.New(),
	)
	require.NoError(t, err)
	return entry
}

func TestNewAuditEntry(t *testing.T) {
	t.Run("creates entry when balance holds", func(t *testing.T) {
		entry := newTestAuditEntry(t, -5, 100, 95)

		assert.Equal(t, int64(-5), entry.QuantityChanged)
		assert.Equal(t, int64(100), entry.QuantityBefore)
		assert.Equal(t, int64(95), entry.QuantityAfter)
		assert.False(t, entry.IsDuplicate)
		assert.Nil(t, entry.DuplicateRef)
		assert.False(t, entry.PerformedAt.IsZero())
	})

	t.Run("rejects entry violating the balance invariant", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			TransactionTypeSale,
			-5, 100, 96,
			"SAL-2026-00042", SourceTypeSale,
			uuid.New(),
		)
		assert.ErrorIs(t, err, shared.ErrInvariantViolation)
	})

	t.Run("rejects zero quantity change", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			TransactionTypeAdjustment,
			0, 100, 100,
			"ADJ-1", SourceTypeManualAdjustment,
			uuid.New(),
		)
		assert.Error(t, err)
	})

	t.Run("rejects empty source reference", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			TransactionTypeSale,
			-1, 10, 9,
			"", SourceTypeSale,
			uuid.New(),
		)
		assert.Error(t, err)
	})

	t.Run("rejects invalid transaction type", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			TransactionType("BOGUS"),
			-1, 10, 9,
			"SAL-1", SourceTypeSale,
			uuid.New(),
		)
		assert.Error(t, err)
	})

	t.Run("rejects invalid source type", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			TransactionTypeSale,
			-1, 10, 9,
			"SAL-1", SourceType("BOGUS"),
			uuid.New(),
		)
		assert.Error(t, err)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewAuditEntry(
			uuid.Nil, uuid.New(), uuid.New(), uuid.New(),
			TransactionTypeSale,
			-1, 10, 9,
			"SAL-1", SourceTypeSale,
			uuid.New(),
		)
		assert.Error(t, err)
	})
}

func TestAuditEntry_Validate(t *testing.T) {
	t.Run("passes for a consistent entry", func(t *testing.T) {
		entry := newTestAuditEntry(t, 10, 0, 10)
		assert.NoError(t, entry.Validate())
	})

	t.Run("fails when balance broken after construction", func(t *testing.T) {
		entry := newTestAuditEntry(t, 10, 0, 10)
		entry.QuantityAfter = 11
		assert.ErrorIs(t, entry.Validate(), shared.ErrInvariantViolation)
	})
}

func TestAuditEntry_MarkDuplicate(t *testing.T) {
	entry := newTestAuditEntry(t, -5, 100, 95)
	originalID := uuid.New()

	entry.MarkDuplicate(originalID)

	assert.True(t, entry.IsDuplicate)
	require.NotNil(t, entry.DuplicateRef)
	assert.Equal(t, originalID, *entry.DuplicateRef)
}

func TestAuditEntry_IdempotencyKey(t *testing.T) {
	t.Run("same source yields same key", func(t *testing.T) {
		productID := uuid.New()
		branchID := uuid.New()
		a, err := NewAuditEntry(uuid.New(), productID, branchID, uuid.New(),
			TransactionTypeSale, -2, 10, 8, "SAL-1", SourceTypeSale, uuid.New())
		require.NoError(t, err)
		b, err := NewAuditEntry(uuid.New(), productID, branchID, uuid.New(),
			TransactionTypeSale, -2, 8, 6, "SAL-1", SourceTypeSale, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, a.IdempotencyKey(), b.IdempotencyKey())
	})

	t.Run("different source type yields different key", func(t *testing.T) {
		productID := uuid.New()
		branchID := uuid.New()
		a, err := NewAuditEntry(uuid.New(), productID, branchID, uuid.New(),
			TransactionTypeSale, -2, 10, 8, "SAL-1", SourceTypeSale, uuid.New())
		require.NoError(t, err)
		b, err := NewAuditEntry(uuid.New(), productID, branchID, uuid.New(),
			TransactionTypeReturn, 2, 8, 10, "SAL-1", SourceTypeSaleReturn, uuid.New())
		require.NoError(t, err)

		assert.NotEqual(t, a.IdempotencyKey(), b.IdempotencyKey())
	})
}

func TestTransactionType_IsValid(t *testing.T) {
	valid := []TransactionType{
		TransactionTypePurchase, TransactionTypeSale, TransactionTypeAdjustment,
		TransactionTypeTransferIn, TransactionTypeTransferOut, TransactionTypeReturn,
		TransactionTypeExpiryWriteOff, TransactionTypeDamageWriteOff, TransactionTypeInitialStock,
	}
	for _, tt := range valid {
		assert.True(t, tt.IsValid(), tt.String())
	}
	assert.False(t, TransactionType("UNKNOWN").IsValid())
}
