package persistence

import (
	"context"

	appinv "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. The batch mutation and its audit entry always
// commit or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

type gormInventoryRepositories struct {
	tx *gorm.DB
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormInventoryRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// AuditLog returns the audit log repository scoped to the current transaction
func (r *gormInventoryRepositories) AuditLog() inventory.AuditLogRepository {
	return NewGormAuditLogRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormInventoryRepositories)(nil)
