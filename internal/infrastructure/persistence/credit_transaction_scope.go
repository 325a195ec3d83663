package persistence

import (
	"context"

	appcredit "github.com/afyapos/backend/internal/application/credit"
	"github.com/afyapos/backend/internal/domain/credit"
	"gorm.io/gorm"
)

// GormCreditTransactionScope implements the credit TransactionScope using
// GORM transactions.
type GormCreditTransactionScope struct {
	db *gorm.DB
}

// NewGormCreditTransactionScope creates a new GormCreditTransactionScope
func NewGormCreditTransactionScope(db *gorm.DB) *GormCreditTransactionScope {
	return &GormCreditTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormCreditTransactionScope) Execute(ctx context.Context, fn func(repos appcredit.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCreditRepositories{tx: tx})
	})
}

type gormCreditRepositories struct {
	tx *gorm.DB
}

// CreditAccounts returns the account repository scoped to the current transaction
func (r *gormCreditRepositories) CreditAccounts() credit.CreditAccountRepository {
	return NewGormCreditAccountRepository(r.tx)
}

var _ appcredit.TransactionScope = (*GormCreditTransactionScope)(nil)
var _ appcredit.TransactionalRepositories = (*gormCreditRepositories)(nil)
