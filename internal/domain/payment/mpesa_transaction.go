package payment

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the state of one STK push attempt
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that never revert
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled || s == TransactionStatusFailed
}

// Gateway result codes with defined meanings. Zero is success, one is a
// user cancellation on the handset; everything else is a failure.
const (
	ResultCodeSuccess   = 0
	ResultCodeCancelled = 1
)

// MpesaTransaction tracks one STK push attempt against a sale. The state
// machine is driven by the asynchronous gateway callback and terminal
// states never revert.
type MpesaTransaction struct {
	shared.TenantAggregateRoot
	SaleID             uuid.UUID         `gorm:"type:uuid;not null;index"`
	CheckoutRequestID  string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	MerchantRequestID  string            `gorm:"type:varchar(100)"`
	PhoneNumber        string            `gorm:"type:varchar(20);not null"`
	Amount             decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status             TransactionStatus `gorm:"type:varchar(20);not null;index"`
	MpesaReceiptNumber string            `gorm:"type:varchar(50)"`
	ErrorCode          *int
	ErrorMessage       string `gorm:"type:varchar(255)"`
	CallbackReceived   bool   `gorm:"not null;default:false"`
	CallbackAt         *time.Time
}

// TableName returns the table name for GORM
func (MpesaTransaction) TableName() string {
	return "mpesa_transactions"
}

// NewMpesaTransaction records an initiated STK push in PENDING status
func NewMpesaTransaction(tenantID, saleID uuid.UUID, checkoutRequestID, merchantRequestID, phoneNumber string, amount valueobject.Money) (*MpesaTransaction, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if checkoutRequestID == "" {
		return nil, shared.NewDomainError("INVALID_CHECKOUT_REQUEST", "Checkout request ID cannot be empty")
	}
	if phoneNumber == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	tx := &MpesaTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleID:              saleID,
		CheckoutRequestID:   checkoutRequestID,
		MerchantRequestID:   merchantRequestID,
		PhoneNumber:         phoneNumber,
		Amount:              amount.Amount(),
		Status:              TransactionStatusPending,
	}

	tx.AddDomainEvent(NewStkPushInitiatedEvent(tx))

	return tx, nil
}

// ApplyCallback drives the state machine from a gateway callback result
// code. A callback on an already terminal transaction is ignored so
// gateway retries stay harmless.
func (t *MpesaTransaction) ApplyCallback(resultCode int, resultDesc, receiptNumber string) error {
	if t.Status.IsTerminal() {
		return nil // Retried callback, keep first outcome
	}

	now := time.Now()
	t.CallbackReceived = true
	t.CallbackAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	switch resultCode {
	case ResultCodeSuccess:
		if receiptNumber == "" {
			return shared.NewDomainError("INVALID_RECEIPT", "Successful callback carries no receipt number")
		}
		t.Status = TransactionStatusCompleted
		t.MpesaReceiptNumber = receiptNumber
		t.AddDomainEvent(NewMpesaCompletedEvent(t))
	case ResultCodeCancelled:
		t.Status = TransactionStatusCancelled
		t.ErrorCode = &resultCode
		t.ErrorMessage = resultDesc
		t.AddDomainEvent(NewMpesaFailedEvent(t))
	default:
		t.Status = TransactionStatusFailed
		t.ErrorCode = &resultCode
		t.ErrorMessage = resultDesc
		t.AddDomainEvent(NewMpesaFailedEvent(t))
	}

	return nil
}

// MarkFailed fails a pending transaction from the initiating side, for
// example when the gateway rejects the push outright
func (t *MpesaTransaction) MarkFailed(message string) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail transaction in %s status", t.Status))
	}
	t.Status = TransactionStatusFailed
	t.ErrorMessage = message
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewMpesaFailedEvent(t))

	return nil
}

// IsCompleted returns true if the payment went through
func (t *MpesaTransaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}
