package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// StkPushRequest carries the parameters for initiating an STK push
type StkPushRequest struct {
	PhoneNumber      string
	Amount           decimal.Decimal
	AccountReference string // Sale number shown on the customer statement
	Description      string
}

// StkPushResponse is the gateway's synchronous answer to an initiation
type StkPushResponse struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResponseCode      string
	CustomerMessage   string
}

// CallbackResult is the normalized outcome of one gateway callback,
// already extracted from the wire payload
type CallbackResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	PhoneNumber       string
	Amount            decimal.Decimal
}

// Gateway abstracts the mobile-money provider. The production
// implementation talks to the Daraja API; tests substitute a stub.
type Gateway interface {
	// InitiateStkPush prompts the customer's handset for payment approval
	InitiateStkPush(ctx context.Context, req StkPushRequest) (*StkPushResponse, error)
}
