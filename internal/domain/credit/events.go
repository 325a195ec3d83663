package credit

import (
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCreditAccount = "CreditAccount"

// Event type constants
const (
	EventTypeCreditAccountOpened   = "CreditAccountOpened"
	EventTypeCreditPaymentReceived = "CreditPaymentReceived"
	EventTypeCreditAccountPaid     = "CreditAccountPaid"
	EventTypeCreditAccountOverdue  = "CreditAccountOverdue"
)

// CreditAccountOpenedEvent is raised when a credit account is opened for a sale
type CreditAccountOpenedEvent struct {
	shared.BaseDomainEvent
	AccountID       uuid.UUID       `json:"account_id"`
	CreditNumber    string          `json:"credit_number"`
	SaleID          uuid.UUID       `json:"sale_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewCreditAccountOpenedEvent creates a new CreditAccountOpenedEvent
func NewCreditAccountOpenedEvent(account *CreditAccount) *CreditAccountOpenedEvent {
	return &CreditAccountOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditAccountOpened, AggregateTypeCreditAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		CreditNumber:    account.CreditNumber,
		SaleID:          account.SaleID,
		CustomerID:      account.CustomerID,
		TotalAmount:     account.TotalAmount,
		RemainingAmount: account.RemainingAmount,
	}
}

// EventType returns the event type name
func (e *CreditAccountOpenedEvent) EventType() string {
	return EventTypeCreditAccountOpened
}

// CreditPaymentReceivedEvent is raised when a payment is applied to an account
type CreditPaymentReceivedEvent struct {
	shared.BaseDomainEvent
	AccountID       uuid.UUID       `json:"account_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewCreditPaymentReceivedEvent creates a new CreditPaymentReceivedEvent
func NewCreditPaymentReceivedEvent(account *CreditAccount, payment *CreditPayment) *CreditPaymentReceivedEvent {
	return &CreditPaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditPaymentReceived, AggregateTypeCreditAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		RemainingAmount: account.RemainingAmount,
	}
}

// EventType returns the event type name
func (e *CreditPaymentReceivedEvent) EventType() string {
	return EventTypeCreditPaymentReceived
}

// CreditAccountPaidEvent is raised when the remaining balance reaches zero
type CreditAccountPaidEvent struct {
	shared.BaseDomainEvent
	AccountID    uuid.UUID `json:"account_id"`
	CreditNumber string    `json:"credit_number"`
}

// NewCreditAccountPaidEvent creates a new CreditAccountPaidEvent
func NewCreditAccountPaidEvent(account *CreditAccount) *CreditAccountPaidEvent {
	return &CreditAccountPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditAccountPaid, AggregateTypeCreditAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		CreditNumber:    account.CreditNumber,
	}
}

// EventType returns the event type name
func (e *CreditAccountPaidEvent) EventType() string {
	return EventTypeCreditAccountPaid
}

// CreditAccountOverdueEvent is raised by the periodic sweep when an account
// passes its expected payment date with a balance outstanding
type CreditAccountOverdueEvent struct {
	shared.BaseDomainEvent
	AccountID       uuid.UUID       `json:"account_id"`
	CreditNumber    string          `json:"credit_number"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewCreditAccountOverdueEvent creates a new CreditAccountOverdueEvent
func NewCreditAccountOverdueEvent(account *CreditAccount) *CreditAccountOverdueEvent {
	return &CreditAccountOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditAccountOverdue, AggregateTypeCreditAccount, account.ID, account.TenantID),
		AccountID:       account.ID,
		CreditNumber:    account.CreditNumber,
		RemainingAmount: account.RemainingAmount,
	}
}

// EventType returns the event type name
func (e *CreditAccountOverdueEvent) EventType() string {
	return EventTypeCreditAccountOverdue
}
