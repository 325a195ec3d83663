package persistence

import (
	"context"
	"errors"

	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMpesaTransactionRepository implements MpesaTransactionRepository using GORM
type GormMpesaTransactionRepository struct {
	db *gorm.DB
}

// NewGormMpesaTransactionRepository creates a new GormMpesaTransactionRepository
func NewGormMpesaTransactionRepository(db *gorm.DB) *GormMpesaTransactionRepository {
	return &GormMpesaTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormMpesaTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.MpesaTransaction, error) {
	var tx payment.MpesaTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByCheckoutRequestID finds a transaction by the gateway's checkout
// request key, or nil if unknown
func (r *GormMpesaTransactionRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.MpesaTransaction, error) {
	var tx payment.MpesaTransaction
	err := r.db.WithContext(ctx).
		First(&tx, "checkout_request_id = ?", checkoutRequestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindBySaleID finds all transactions attempted against a sale
func (r *GormMpesaTransactionRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) ([]payment.MpesaTransaction, error) {
	var txs []payment.MpesaTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindPending finds transactions still awaiting a callback
func (r *GormMpesaTransactionRepository) FindPending(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.MpesaTransaction, error) {
	var txs []payment.MpesaTransaction
	query := r.db.WithContext(ctx).Model(&payment.MpesaTransaction{}).
		Where("tenant_id = ? AND status = ?", tenantID, payment.TransactionStatusPending)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, MpesaTransactionSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at ASC")
	}

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save creates or updates a transaction
func (r *GormMpesaTransactionRepository) Save(ctx context.Context, tx *payment.MpesaTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormMpesaTransactionRepository) SaveWithLock(ctx context.Context, tx *payment.MpesaTransaction) error {
	result := r.db.WithContext(ctx).
		Model(tx).
		Where("id = ? AND version = ?", tx.ID, tx.Version-1).
		Updates(map[string]interface{}{
			"status":               tx.Status,
			"mpesa_receipt_number": tx.MpesaReceiptNumber,
			"error_code":           tx.ErrorCode,
			"error_message":        tx.ErrorMessage,
			"callback_received":    tx.CallbackReceived,
			"callback_at":          tx.CallbackAt,
			"version":              tx.Version,
			"updated_at":           tx.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Transaction was modified by another process")
	}
	return nil
}

// Ensure GormMpesaTransactionRepository implements MpesaTransactionRepository
var _ payment.MpesaTransactionRepository = (*GormMpesaTransactionRepository)(nil)
