package inventory

import (
	"context"

	"github.com/afyapos/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// within one transaction. The adjust-plus-audit pair must always go through
// the same instance so both mutations share a commit.
type TransactionalRepositories interface {
	// Batches returns the batch repository scoped to the current transaction
	Batches() inventory.BatchRepository
	// AuditLog returns the audit log repository scoped to the current transaction
	AuditLog() inventory.AuditLogRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	batchRepo inventory.BatchRepository
	auditRepo inventory.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(batchRepo inventory.BatchRepository, auditRepo inventory.AuditLogRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo: batchRepo,
		auditRepo: auditRepo,
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

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
