package credit

import (
	"context"

	"github.com/afyapos/backend/internal/domain/credit"
)

// TransactionScope provides transactional access to the credit repositories
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the credit repositories
// within one transaction
type TransactionalRepositories interface {
	// CreditAccounts returns the account repository scoped to the current transaction
	CreditAccounts() credit.CreditAccountRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	accountRepo credit.CreditAccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository.
func NewNoOpTransactionScope(accountRepo credit.CreditAccountRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{accountRepo: accountRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CreditAccounts returns the account repository.
func (s *NoOpTransactionScope) CreditAccounts() credit.CreditAccountRepository {
	return s.accountRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
