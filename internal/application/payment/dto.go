package payment

import (
	"time"

	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitiateStkPushRequest starts an M-Pesa payment prompt for a sale
type InitiateStkPushRequest struct {
	TenantID    uuid.UUID
	SaleID      uuid.UUID `json:"sale_id" binding:"required"`
	PhoneNumber string    `json:"phone_number" binding:"required,msisdn"`
}

// TransactionResponse is the read model for one STK push attempt
type TransactionResponse struct {
	ID                 uuid.UUID                 `json:"id"`
	SaleID             uuid.UUID                 `json:"sale_id"`
	CheckoutRequestID  string                    `json:"checkout_request_id"`
	MerchantRequestID  string                    `json:"merchant_request_id,omitempty"`
	PhoneNumber        string                    `json:"phone_number"`
	Amount             decimal.Decimal           `json:"amount"`
	Status             payment.TransactionStatus `json:"status"`
	MpesaReceiptNumber string                    `json:"mpesa_receipt_number,omitempty"`
	ErrorMessage       string                    `json:"error_message,omitempty"`
	CallbackReceived   bool                      `json:"callback_received"`
	CallbackAt         *time.Time                `json:"callback_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// ToTransactionResponse converts a transaction aggregate to its read model
func ToTransactionResponse(t *payment.MpesaTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                 t.ID,
		SaleID:             t.SaleID,
		CheckoutRequestID:  t.CheckoutRequestID,
		MerchantRequestID:  t.MerchantRequestID,
		PhoneNumber:        t.PhoneNumber,
		Amount:             t.Amount,
		Status:             t.Status,
		MpesaReceiptNumber: t.MpesaReceiptNumber,
		ErrorMessage:       t.ErrorMessage,
		CallbackReceived:   t.CallbackReceived,
		CallbackAt:         t.CallbackAt,
		CreatedAt:          t.CreatedAt,
	}
}

// CallbackEnvelope is the Daraja STK callback wire format
type CallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// CallbackItem is one name/value pair in the callback metadata
type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// ToResult normalizes the wire envelope into a CallbackResult, extracting
// the receipt number, phone and amount from the metadata items
func (e *CallbackEnvelope) ToResult() payment.CallbackResult {
	cb := e.Body.StkCallback
	result := payment.CallbackResult{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok {
				result.ReceiptNumber = v
			}
		case "PhoneNumber":
			switch v := item.Value.(type) {
			case string:
				result.PhoneNumber = v
			case float64:
				result.PhoneNumber = decimal.NewFromFloat(v).String()
			}
		case "Amount":
			if v, ok := item.Value.(float64); ok {
				result.Amount = decimal.NewFromFloat(v)
			}
		}
	}

	return result
}
