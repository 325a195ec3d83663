package credit

import (
	"time"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MakePaymentRequest records a payment received against a credit account
type MakePaymentRequest struct {
	TenantID        uuid.UUID
	AccountID       uuid.UUID       `json:"-"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"method" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	ReceivedBy      uuid.UUID       `json:"-"`
}

// PaymentResponse is the read model for one credit payment
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	ReceivedBy      uuid.UUID       `json:"received_by"`
	PaymentDate     time.Time       `json:"payment_date"`
}

// AccountResponse is the read model for one credit account
type AccountResponse struct {
	ID                  uuid.UUID            `json:"id"`
	CreditNumber        string               `json:"credit_number"`
	SaleID              uuid.UUID            `json:"sale_id"`
	CustomerID          uuid.UUID            `json:"customer_id"`
	TotalAmount         decimal.Decimal      `json:"total_amount"`
	PaidAmount          decimal.Decimal      `json:"paid_amount"`
	RemainingAmount     decimal.Decimal      `json:"remaining_amount"`
	ExpectedPaymentDate time.Time            `json:"expected_payment_date"`
	Status              credit.AccountStatus `json:"status"`
	Payments            []PaymentResponse    `json:"payments"`
	ClosedAt            *time.Time           `json:"closed_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// ToAccountResponse converts an account aggregate to its read model
func ToAccountResponse(a *credit.CreditAccount) AccountResponse {
	payments := make([]PaymentResponse, 0, len(a.Payments))
	for idx := range a.Payments {
		p := &a.Payments[idx]
		payments = append(payments, PaymentResponse{
			ID:              p.ID,
			Amount:          p.Amount,
			Method:          p.Method,
			ReferenceNumber: p.ReferenceNumber,
			ReceivedBy:      p.ReceivedBy,
			PaymentDate:     p.PaymentDate,
		})
	}

	return AccountResponse{
		ID:                  a.ID,
		CreditNumber:        a.CreditNumber,
		SaleID:              a.SaleID,
		CustomerID:          a.CustomerID,
		TotalAmount:         a.TotalAmount,
		PaidAmount:          a.PaidAmount,
		RemainingAmount:     a.RemainingAmount,
		ExpectedPaymentDate: a.ExpectedPaymentDate,
		Status:              a.Status,
		Payments:            payments,
		ClosedAt:            a.ClosedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}
