package payment

import (
	"context"
	"fmt"

	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyStore deduplicates gateway callbacks. Seen reports whether a
// key was already marked within the retention window; MarkOnce marks it and
// returns true the first time.
type IdempotencyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkOnce(ctx context.Context, key string) (bool, error)
}

// MpesaService bridges sales to the M-Pesa gateway. Initiation records a
// pending transaction; the asynchronous callback drives it to a terminal
// state and settles the sale's matching payment.
type MpesaService struct {
	scope          TransactionScope
	gateway        payment.Gateway
	dedup          IdempotencyStore
	eventPublisher shared.EventPublisher
}

// NewMpesaService creates a new MpesaService
func NewMpesaService(scope TransactionScope, gateway payment.Gateway, dedup IdempotencyStore) *MpesaService {
	return &MpesaService{scope: scope, gateway: gateway, dedup: dedup}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *MpesaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// InitiateStkPush prompts the customer's handset for the sale's pending
// M-Pesa payment amount and records the attempt. The gateway checkout
// request ID is stamped on the sale payment so the callback can find it.
func (s *MpesaService) InitiateStkPush(ctx context.Context, req InitiateStkPushRequest) (*TransactionResponse, error) {
	if s.gateway == nil {
		return nil, shared.NewDomainError("MPESA_NOT_CONFIGURED", "M-Pesa is not configured for this deployment")
	}
	if req.PhoneNumber == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone number cannot be empty")
	}

	var resp *TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, req.TenantID, req.SaleID)
		if err != nil {
			return err
		}

		amount := pendingMpesaAmount(sale)
		if !amount.IsPositive() {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Sale has no pending M-Pesa payment")
		}

		pushResp, err := s.gateway.InitiateStkPush(ctx, payment.StkPushRequest{
			PhoneNumber:      req.PhoneNumber,
			Amount:           amount,
			AccountReference: sale.SaleNumber,
			Description:      fmt.Sprintf("Payment for %s", sale.SaleNumber),
		})
		if err != nil {
			return err
		}

		tx, err := payment.NewMpesaTransaction(req.TenantID, sale.ID,
			pushResp.CheckoutRequestID, pushResp.MerchantRequestID, req.PhoneNumber,
			valueobject.NewMoneyKES(amount))
		if err != nil {
			return err
		}
		if err := sale.AssignMpesaReference(pushResp.CheckoutRequestID); err != nil {
			return err
		}

		if err := repos.MpesaTransactions().Save(ctx, tx); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		s.publishEvents(ctx, tx)
		r := ToTransactionResponse(tx)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// pendingMpesaAmount sums the sale's unreferenced pending M-Pesa payments
func pendingMpesaAmount(sale *sales.Sale) decimal.Decimal {
	amount := decimal.Zero
	for idx := range sale.Payments {
		p := &sale.Payments[idx]
		if p.Method == sales.PaymentMethodMpesa && p.Status == sales.PaymentStatusPending && p.Reference == "" {
			amount = amount.Add(p.Amount)
		}
	}
	return amount
}

// HandleCallback applies one gateway callback. Unknown checkout request IDs
// are acknowledged without error so the gateway stops retrying, and a
// callback replay is a no-op on both the transaction and the sale.
func (s *MpesaService) HandleCallback(ctx context.Context, result payment.CallbackResult) error {
	if result.CheckoutRequestID == "" {
		return shared.NewDomainError("INVALID_CHECKOUT_REQUEST", "Checkout request ID cannot be empty")
	}

	dedupKey := fmt.Sprintf("mpesa:callback:%s", result.CheckoutRequestID)
	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, dedupKey)
		if err == nil && seen {
			return nil
		}
		// A store failure falls through; the terminal-state check below
		// keeps the replay harmless anyway
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.MpesaTransactions().FindByCheckoutRequestID(ctx, result.CheckoutRequestID)
		if err != nil {
			return err
		}
		if tx == nil {
			return nil // Unknown attempt, acknowledge and drop
		}
		if tx.Status.IsTerminal() {
			return nil
		}

		if err := tx.ApplyCallback(result.ResultCode, result.ResultDesc, result.ReceiptNumber); err != nil {
			return err
		}

		sale, err := repos.Sales().FindByIDForTenant(ctx, tx.TenantID, tx.SaleID)
		if err != nil {
			return err
		}
		if tx.IsCompleted() {
			if err := sale.ConfirmMpesaPayment(tx.CheckoutRequestID, tx.MpesaReceiptNumber); err != nil {
				return err
			}
		} else {
			if err := sale.FailMpesaPayment(tx.CheckoutRequestID); err != nil {
				return err
			}
		}

		if err := repos.MpesaTransactions().SaveWithLock(ctx, tx); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		s.publishEvents(ctx, tx)
		return nil
	})
	if err != nil {
		return err
	}

	// Marked only after the commit; a failure above leaves the key unmarked
	// so the gateway's retry is processed instead of short-circuited
	if s.dedup != nil {
		_, _ = s.dedup.MarkOnce(ctx, dedupKey)
	}
	return nil
}

// GetTransaction returns one transaction attempt
func (s *MpesaService) GetTransaction(ctx context.Context, tenantID, txID uuid.UUID) (*TransactionResponse, error) {
	var resp *TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.MpesaTransactions().FindByID(ctx, txID)
		if err != nil {
			return err
		}
		if tx.TenantID != tenantID {
			return shared.ErrNotFound
		}
		r := ToTransactionResponse(tx)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListForSale returns every STK push attempt against a sale
func (s *MpesaService) ListForSale(ctx context.Context, tenantID, saleID uuid.UUID) ([]TransactionResponse, error) {
	var responses []TransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txs, err := repos.MpesaTransactions().FindBySaleID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		responses = make([]TransactionResponse, 0, len(txs))
		for idx := range txs {
			responses = append(responses, ToTransactionResponse(&txs[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// publishEvents publishes and clears the transaction's pending events
func (s *MpesaService) publishEvents(ctx context.Context, tx *payment.MpesaTransaction) {
	if s.eventPublisher == nil {
		tx.ClearDomainEvents()
		return
	}
	for _, event := range tx.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	tx.ClearDomainEvents()
}
