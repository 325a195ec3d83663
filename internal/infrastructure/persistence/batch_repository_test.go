package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockBatchRepository creates a GormBatchRepository backed by a mocked
// SQL connection
func newMockBatchRepository(t *testing.T) (*GormBatchRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBatchRepository(gormDB), mock, mockDB
}

func batchRows(batchID, tenantID, branchID, productID uuid.UUID, quantity int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "branch_id", "product_id",
		"batch_number", "quantity", "unit_cost", "selling_price",
		"is_active", "version",
	}).AddRow(
		batchID, tenantID, branchID, productID,
		"LOT-001", quantity, decimal.NewFromInt(100), decimal.NewFromInt(150),
		true, 1,
	)
}

func TestGormBatchRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds batch within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()
		tenantID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_batches" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, batchID, 1).
			WillReturnRows(batchRows(batchID, tenantID, branchID, productID, 40))

		batch, err := repo.FindByIDForTenant(context.Background(), tenantID, batchID)

		assert.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, batchID, batch.ID)
		assert.Equal(t, int64(40), batch.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for another tenant's batch", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_batches" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, batchID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		batch, err := repo.FindByIDForTenant(context.Background(), tenantID, batchID)

		assert.Error(t, err)
		assert.Nil(t, batch)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock on the batch", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()
		tenantID := uuid.New()
		branchID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_batches" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
			WithArgs(tenantID, batchID, 1).
			WillReturnRows(batchRows(batchID, tenantID, branchID, productID, 25))

		batch, err := repo.FindByIDForUpdate(context.Background(), tenantID, batchID)

		assert.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, int64(25), batch.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_SaveWithLock(t *testing.T) {
	newBatch := func(t *testing.T) *inventory.Batch {
		t.Helper()
		batch, err := inventory.NewBatch(
			uuid.New(), uuid.New(), uuid.New(),
			"LOT-001", nil, 40,
			decimal.NewFromInt(100), decimal.NewFromInt(150),
		)
		require.NoError(t, err)
		return batch
	}

	t.Run("updates when the version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batch := newBatch(t)

		mock.ExpectExec(`UPDATE "inventory_batches" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), batch)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when another writer got there first", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batch := newBatch(t)

		mock.ExpectExec(`UPDATE "inventory_batches" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), batch)

		assert.Error(t, err)
		assert.True(t, shared.IsDomainErrorCode(err, "OPTIMISTIC_LOCK_FAILED"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_FindAllForTenant_Ordering(t *testing.T) {
	t.Run("whitelisted sort field is applied", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_batches" WHERE tenant_id = \$1 ORDER BY quantity DESC`).
			WithArgs(tenantID).
			WillReturnRows(batchRows(uuid.New(), tenantID, uuid.New(), uuid.New(), 40))

		_, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{
			OrderBy:  "quantity",
			OrderDir: "desc",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sort field outside the whitelist never reaches the sql", func(t *testing.T) {
		repo, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		// A hostile order_by must be replaced by the default ordering
		mock.ExpectQuery(`SELECT \* FROM "inventory_batches" WHERE tenant_id = \$1 ORDER BY COALESCE\(expiry_date, '9999-12-31'\) ASC, created_at ASC`).
			WithArgs(tenantID).
			WillReturnRows(batchRows(uuid.New(), tenantID, uuid.New(), uuid.New(), 40))

		_, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{
			OrderBy:  "(SELECT pg_sleep(10))--",
			OrderDir: "asc",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditLogRepository_FindBySourceKey(t *testing.T) {
	t.Run("returns nil when the idempotency key is unused", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		repo := NewGormAuditLogRepository(gormDB)

		tenantID := uuid.New()
		productID := uuid.New()
		branchID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_audit_log" WHERE .*is_duplicate = FALSE`).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.FindBySourceKey(context.Background(), tenantID, productID, branchID, "SALE-001", inventory.SourceTypeSale)

		assert.NoError(t, err)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
