package persistence

import (
	"context"

	appsales "github.com/afyapos/backend/internal/application/sales"
	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesTransactionScope implements the sales TransactionScope using
// GORM transactions. A sale commit spans the sale itself, the inventory
// ledger adjustments and any credit account it opens.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSalesRepositories{tx: tx})
	})
}

type gormSalesRepositories struct {
	tx *gorm.DB
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormSalesRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// AuditLog returns the audit log repository scoped to the current transaction
func (r *gormSalesRepositories) AuditLog() inventory.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction
func (r *gormSalesRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Returns returns the sale return repository scoped to the current transaction
func (r *gormSalesRepositories) Returns() sales.SaleReturnRepository {
	return NewGormSaleReturnRepository(r.tx)
}

// EditRequests returns the edit request repository scoped to the current transaction
func (r *gormSalesRepositories) EditRequests() sales.EditRequestRepository {
	return NewGormEditRequestRepository(r.tx)
}

// CreditAccounts returns the credit account repository scoped to the current transaction
func (r *gormSalesRepositories) CreditAccounts() credit.CreditAccountRepository {
	return NewGormCreditAccountRepository(r.tx)
}

var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)
var _ appsales.TransactionalRepositories = (*gormSalesRepositories)(nil)
