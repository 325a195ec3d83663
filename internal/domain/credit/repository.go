package credit

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreditAccountRepository defines the interface for credit account persistence
type CreditAccountRepository interface {
	// FindByID finds an account with its payments
	FindByID(ctx context.Context, id uuid.UUID) (*CreditAccount, error)

	// FindByIDForTenant finds an account by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditAccount, error)

	// FindBySaleID finds the account opened for a sale, or nil if none
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*CreditAccount, error)

	// FindByCustomer finds all accounts for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]CreditAccount, error)

	// FindByStatus finds accounts in a given status
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status AccountStatus, filter shared.Filter) ([]CreditAccount, error)

	// FindOverdueCandidates finds ACTIVE accounts with an expected payment
	// date before the cutoff, across all tenants, for the periodic sweep
	FindOverdueCandidates(ctx context.Context, cutoff time.Time, limit int) ([]CreditAccount, error)

	// CountForDay counts accounts opened on the given day, used for number generation
	CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error)

	// Save creates or updates an account with its payments
	Save(ctx context.Context, account *CreditAccount) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, account *CreditAccount) error
}
