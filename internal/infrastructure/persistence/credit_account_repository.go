package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditAccountRepository implements CreditAccountRepository using GORM
type GormCreditAccountRepository struct {
	db *gorm.DB
}

// NewGormCreditAccountRepository creates a new GormCreditAccountRepository
func NewGormCreditAccountRepository(db *gorm.DB) *GormCreditAccountRepository {
	return &GormCreditAccountRepository{db: db}
}

// FindByID finds an account with its payments
func (r *GormCreditAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.CreditAccount, error) {
	var account credit.CreditAccount
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormCreditAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditAccount, error) {
	var account credit.CreditAccount
	if err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&account, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindBySaleID finds the account opened for a sale, or nil if none
func (r *GormCreditAccountRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*credit.CreditAccount, error) {
	var account credit.CreditAccount
	err := r.db.WithContext(ctx).
		Preload("Payments").
		First(&account, "tenant_id = ? AND sale_id = ?", tenantID, saleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByCustomer finds all accounts for a customer
func (r *GormCreditAccountRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]credit.CreditAccount, error) {
	var accounts []credit.CreditAccount
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&credit.CreditAccount{}).
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID),
		filter,
	).Preload("Payments")

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByStatus finds accounts in a given status
func (r *GormCreditAccountRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status credit.AccountStatus, filter shared.Filter) ([]credit.CreditAccount, error) {
	var accounts []credit.CreditAccount
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&credit.CreditAccount{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	).Preload("Payments")

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindOverdueCandidates finds ACTIVE accounts with an expected payment date
// before the cutoff, across all tenants, for the periodic sweep. SKIP LOCKED
// keeps concurrent sweeps from contending on the same rows.
func (r *GormCreditAccountRepository) FindOverdueCandidates(ctx context.Context, cutoff time.Time, limit int) ([]credit.CreditAccount, error) {
	var accounts []credit.CreditAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND expected_payment_date < ?", credit.AccountStatusActive, cutoff).
		Order("expected_payment_date ASC").
		Limit(limit).
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountForDay counts accounts opened on the given day, used for number generation
func (r *GormCreditAccountRepository) CountForDay(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	if err := r.db.WithContext(ctx).Model(&credit.CreditAccount{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an account with its payments
func (r *GormCreditAccountRepository) Save(ctx context.Context, account *credit.CreditAccount) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(account).Error
}

// SaveWithLock saves with optimistic locking. Payments are appended
// unconditionally; the version check guards the balance fields.
func (r *GormCreditAccountRepository) SaveWithLock(ctx context.Context, account *credit.CreditAccount) error {
	result := r.db.WithContext(ctx).
		Model(account).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"paid_amount":      account.PaidAmount,
			"remaining_amount": account.RemainingAmount,
			"status":           account.Status,
			"closed_at":        account.ClosedAt,
			"version":          account.Version,
			"updated_at":       account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Credit account was modified by another transaction")
	}

	if len(account.Payments) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&account.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormCreditAccountRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if field := ValidateSortField(filter.OrderBy, CreditAccountSortFields, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

// Ensure GormCreditAccountRepository implements CreditAccountRepository
var _ credit.CreditAccountRepository = (*GormCreditAccountRepository)(nil)
