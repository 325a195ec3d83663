package sales

import (
	"context"

	inventoryapp "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a sale
// touches. A completed sale mutates the sale, the inventory ledger and
// possibly a credit account; all of that must share one commit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the sales-side repositories
// within one transaction. It embeds the inventory repositories so the ledger
// service can fold its adjustments into the same unit of work.
type TransactionalRepositories interface {
	inventoryapp.TransactionalRepositories

	// Sales returns the sale repository scoped to the current transaction
	Sales() sales.SaleRepository
	// Returns returns the sale return repository scoped to the current transaction
	Returns() sales.SaleReturnRepository
	// EditRequests returns the edit request repository scoped to the current transaction
	EditRequests() sales.EditRequestRepository
	// CreditAccounts returns the credit account repository scoped to the current transaction
	CreditAccounts() credit.CreditAccountRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	batchRepo  inventory.BatchRepository
	auditRepo  inventory.AuditLogRepository
	saleRepo   sales.SaleRepository
	returnRepo sales.SaleReturnRepository
	editRepo   sales.EditRequestRepository
	creditRepo credit.CreditAccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	batchRepo inventory.BatchRepository,
	auditRepo inventory.AuditLogRepository,
	saleRepo sales.SaleRepository,
	returnRepo sales.SaleReturnRepository,
	editRepo sales.EditRequestRepository,
	creditRepo credit.CreditAccountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:  batchRepo,
		auditRepo:  auditRepo,
		saleRepo:   saleRepo,
		returnRepo: returnRepo,
		editRepo:   editRepo,
		creditRepo: creditRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Batches returns the batch repository.
func (s *NoOpTransactionScope) Batches() inventory.BatchRepository {
	return s.batchRepo
}

// AuditLog returns the audit log repository.
func (s *NoOpTransactionScope) AuditLog() inventory.AuditLogRepository {
	return s.auditRepo
}

// Sales returns the sale repository.
func (s *NoOpTransactionScope) Sales() sales.SaleRepository {
	return s.saleRepo
}

// Returns returns the sale return repository.
func (s *NoOpTransactionScope) Returns() sales.SaleReturnRepository {
	return s.returnRepo
}

// EditRequests returns the edit request repository.
func (s *NoOpTransactionScope) EditRequests() sales.EditRequestRepository {
	return s.editRepo
}

// CreditAccounts returns the credit account repository.
func (s *NoOpTransactionScope) CreditAccounts() credit.CreditAccountRepository {
	return s.creditRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
