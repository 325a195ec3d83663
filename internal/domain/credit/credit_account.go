package credit

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the status of a credit account
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusPaid      AccountStatus = "PAID"
	AccountStatusOverdue   AccountStatus = "OVERDUE"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// IsValid checks if the status is a valid AccountStatus
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusPaid, AccountStatusOverdue, AccountStatusClosed, AccountStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of AccountStatus
func (s AccountStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further payments
func (s AccountStatus) IsTerminal() bool {
	return s == AccountStatusPaid || s == AccountStatusClosed
}

// CanTransitionTo checks if the status can transition to the target status
func (s AccountStatus) CanTransitionTo(target AccountStatus) bool {
	switch s {
	case AccountStatusActive:
		return target == AccountStatusPaid || target == AccountStatusOverdue ||
			target == AccountStatusClosed || target == AccountStatusSuspended
	case AccountStatusOverdue:
		return target == AccountStatusPaid || target == AccountStatusClosed || target == AccountStatusSuspended
	case AccountStatusSuspended:
		return target == AccountStatusActive || target == AccountStatusClosed
	case AccountStatusPaid, AccountStatusClosed:
		return false // Terminal states
	}
	return false
}

// CreditPayment represents one payment received against a credit account
type CreditPayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreditAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method          string          `gorm:"type:varchar(20);not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	ReceivedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	PaymentDate     time.Time       `gorm:"type:timestamptz;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (CreditPayment) TableName() string {
	return "credit_payments"
}

// CreditAccount tracks the amount a customer owes for one credit sale.
// PaidAmount + RemainingAmount always equals TotalAmount, and neither side
// ever goes negative.
type CreditAccount struct {
	shared.TenantAggregateRoot
	CreditNumber        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_tenant_number"`
	SaleID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExpectedPaymentDate time.Time       `gorm:"type:date;not null;index"`
	Status              AccountStatus   `gorm:"type:varchar(20);not null;index"`
	Payments            []CreditPayment `gorm:"foreignKey:CreditAccountID"`
	ClosedAt            *time.Time
}

// TableName returns the table name for GORM
func (CreditAccount) TableName() string {
	return "credit_accounts"
}

// NewCreditAccount opens a credit account for the unpaid balance of a sale
func NewCreditAccount(tenantID uuid.UUID, creditNumber string, saleID, customerID uuid.UUID, totalAmount, paidAmount valueobject.Money, expectedPaymentDate time.Time) (*CreditAccount, error) {
	if creditNumber == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT_NUMBER", "Credit number cannot be empty")
	}
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit total must be positive")
	}
	if paidAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	if paidAmount.Amount().GreaterThan(totalAmount.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot exceed credit total")
	}
	if expectedPaymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expected payment date is required")
	}

	account := &CreditAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CreditNumber:        creditNumber,
		SaleID:              saleID,
		CustomerID:          customerID,
		TotalAmount:         totalAmount.Amount(),
		PaidAmount:          paidAmount.Amount(),
		RemainingAmount:     totalAmount.Amount().Sub(paidAmount.Amount()),
		ExpectedPaymentDate: expectedPaymentDate,
		Status:              AccountStatusActive,
		Payments:            make([]CreditPayment, 0),
	}

	account.AddDomainEvent(NewCreditAccountOpenedEvent(account))

	return account, nil
}

// MakePayment applies a payment to the account. Overpayment is rejected,
// not clamped, so the operator can reconcile the discrepancy. Reaching a
// zero remaining balance transitions the account to PAID.
func (a *CreditAccount) MakePayment(amount valueobject.Money, method, referenceNumber string, receivedBy uuid.UUID) (*CreditPayment, error) {
	if a.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept payment on a %s account", a.Status))
	}
	if a.Status == AccountStatusSuspended {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot accept payment on a suspended account")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(a.RemainingAmount) {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Payment %s exceeds remaining balance %s", amount.StringFixed(2), a.RemainingAmount.StringFixed(2)))
	}
	if method == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment method is required")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receiver is required")
	}

	now := time.Now()
	payment := CreditPayment{
		ID:              uuid.New(),
		CreditAccountID: a.ID,
		Amount:          amount.Amount(),
		Method:          method,
		ReferenceNumber: referenceNumber,
		ReceivedBy:      receivedBy,
		PaymentDate:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	a.Payments = append(a.Payments, payment)
	a.PaidAmount = a.PaidAmount.Add(amount.Amount())
	a.RemainingAmount = a.RemainingAmount.Sub(amount.Amount())
	a.UpdatedAt = now
	a.IncrementVersion()

	a.AddDomainEvent(NewCreditPaymentReceivedEvent(a, &payment))

	if a.RemainingAmount.IsZero() {
		a.Status = AccountStatusPaid
		a.ClosedAt = &now
		a.AddDomainEvent(NewCreditAccountPaidEvent(a))
	}

	return &payment, nil
}

// MarkOverdue transitions an ACTIVE account past its expected payment date
// to OVERDUE. Accounts in any other status are left untouched, which keeps
// the periodic sweep idempotent.
func (a *CreditAccount) MarkOverdue(asOf time.Time) bool {
	if a.Status != AccountStatusActive {
		return false
	}
	if !a.ExpectedPaymentDate.Before(asOf) {
		return false
	}

	a.Status = AccountStatusOverdue
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewCreditAccountOverdueEvent(a))

	return true
}

// Close administratively closes the account
func (a *CreditAccount) Close() error {
	if !a.Status.CanTransitionTo(AccountStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close account in %s status", a.Status))
	}
	now := time.Now()
	a.Status = AccountStatusClosed
	a.ClosedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// Suspend administratively suspends the account
func (a *CreditAccount) Suspend() error {
	if !a.Status.CanTransitionTo(AccountStatusSuspended) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot suspend account in %s status", a.Status))
	}
	a.Status = AccountStatusSuspended
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Reactivate moves a suspended account back to ACTIVE
func (a *CreditAccount) Reactivate() error {
	if a.Status != AccountStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reactivate account in %s status", a.Status))
	}
	a.Status = AccountStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Validate re-checks the balance invariant
func (a *CreditAccount) Validate() error {
	if a.PaidAmount.IsNegative() || a.RemainingAmount.IsNegative() {
		return shared.ErrInvariantViolation
	}
	if !a.PaidAmount.Add(a.RemainingAmount).Equal(a.TotalAmount) {
		return shared.ErrInvariantViolation
	}
	return nil
}

// IsSettled returns true once nothing is owed
func (a *CreditAccount) IsSettled() bool {
	return a.RemainingAmount.IsZero()
}
