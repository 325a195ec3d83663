package persistence

import (
	"context"

	apppayment "github.com/afyapos/backend/internal/application/payment"
	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the payment TransactionScope using
// GORM transactions. The M-Pesa transaction record and the sale payment it
// settles commit together.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPaymentRepositories{tx: tx})
	})
}

type gormPaymentRepositories struct {
	tx *gorm.DB
}

// MpesaTransactions returns the transaction repository scoped to the current transaction
func (r *gormPaymentRepositories) MpesaTransactions() payment.MpesaTransactionRepository {
	return NewGormMpesaTransactionRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction
func (r *gormPaymentRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)
var _ apppayment.TransactionalRepositories = (*gormPaymentRepositories)(nil)
