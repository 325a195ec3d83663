package payment

import (
	"context"

	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the payment repositories.
// A gateway callback mutates the transaction record and the sale's payment
// together; both must share one commit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the payment-side repositories
// within one transaction
type TransactionalRepositories interface {
	// MpesaTransactions returns the transaction repository scoped to the current transaction
	MpesaTransactions() payment.MpesaTransactionRepository
	// Sales returns the sale repository scoped to the current transaction
	Sales() sales.SaleRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	txRepo   payment.MpesaTransactionRepository
	saleRepo sales.SaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(txRepo payment.MpesaTransactionRepository, saleRepo sales.SaleRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{txRepo: txRepo, saleRepo: saleRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MpesaTransactions returns the transaction repository.
func (s *NoOpTransactionScope) MpesaTransactions() payment.MpesaTransactionRepository {
	return s.txRepo
}

// Sales returns the sale repository.
func (s *NoOpTransactionScope) Sales() sales.SaleRepository {
	return s.saleRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
