package payment

import (
	"context"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MpesaTransactionRepository defines the interface for transaction persistence
type MpesaTransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MpesaTransaction, error)

	// FindByCheckoutRequestID finds a transaction by the gateway's checkout
	// request key, or nil if unknown
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*MpesaTransaction, error)

	// FindBySaleID finds all transactions attempted against a sale
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]MpesaTransaction, error)

	// FindPending finds transactions still awaiting a callback
	FindPending(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MpesaTransaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, tx *MpesaTransaction) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, tx *MpesaTransaction) error
}
