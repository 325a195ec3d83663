package credit

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// overdueSweepBatchSize caps how many accounts one sweep pass touches
const overdueSweepBatchSize = 500

// CreditService manages customer credit accounts. Accounts are opened by
// the sale flow; this service records repayments, answers balance queries
// and runs the periodic overdue sweep.
type CreditService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewCreditService creates a new CreditService
func NewCreditService(scope TransactionScope) *CreditService {
	return &CreditService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CreditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// MakePayment applies a repayment to an account. Reaching a zero balance
// settles the account as PAID in the same transaction.
func (s *CreditService) MakePayment(ctx context.Context, req MakePaymentRequest) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.CreditAccounts().FindByIDForTenant(ctx, req.TenantID, req.AccountID)
		if err != nil {
			return err
		}

		money := valueobject.NewMoneyKES(req.Amount)
		if _, err := account.MakePayment(money, req.Method, req.ReferenceNumber, req.ReceivedBy); err != nil {
			return err
		}
		if err := account.Validate(); err != nil {
			return err
		}
		if err := repos.CreditAccounts().SaveWithLock(ctx, account); err != nil {
			return err
		}
		s.publishEvents(ctx, account)
		r := ToAccountResponse(account)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAccount returns one account for a tenant
func (s *CreditService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.CreditAccounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		r := ToAccountResponse(account)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAccountForSale returns the account opened for a sale, if any
func (s *CreditService) GetAccountForSale(ctx context.Context, tenantID, saleID uuid.UUID) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.CreditAccounts().FindBySaleID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if account == nil {
			return shared.ErrNotFound
		}
		r := ToAccountResponse(account)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListCustomerAccounts returns a customer's credit accounts
func (s *CreditService) ListCustomerAccounts(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]AccountResponse, error) {
	var responses []AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		accounts, err := repos.CreditAccounts().FindByCustomer(ctx, tenantID, customerID, filter)
		if err != nil {
			return err
		}
		responses = make([]AccountResponse, 0, len(accounts))
		for idx := range accounts {
			responses = append(responses, ToAccountResponse(&accounts[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ListAccountsByStatus returns a tenant's accounts in a given status
func (s *CreditService) ListAccountsByStatus(ctx context.Context, tenantID uuid.UUID, status credit.AccountStatus, filter shared.Filter) ([]AccountResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid account status")
	}

	var responses []AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		accounts, err := repos.CreditAccounts().FindByStatus(ctx, tenantID, status, filter)
		if err != nil {
			return err
		}
		responses = make([]AccountResponse, 0, len(accounts))
		for idx := range accounts {
			responses = append(responses, ToAccountResponse(&accounts[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// CloseAccount administratively closes an account
func (s *CreditService) CloseAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	return s.transition(ctx, tenantID, accountID, (*credit.CreditAccount).Close)
}

// SuspendAccount administratively suspends an account
func (s *CreditService) SuspendAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	return s.transition(ctx, tenantID, accountID, (*credit.CreditAccount).Suspend)
}

// ReactivateAccount moves a suspended account back to ACTIVE
func (s *CreditService) ReactivateAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	return s.transition(ctx, tenantID, accountID, (*credit.CreditAccount).Reactivate)
}

func (s *CreditService) transition(ctx context.Context, tenantID, accountID uuid.UUID, apply func(*credit.CreditAccount) error) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.CreditAccounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if err := apply(account); err != nil {
			return err
		}
		if err := repos.CreditAccounts().SaveWithLock(ctx, account); err != nil {
			return err
		}
		s.publishEvents(ctx, account)
		r := ToAccountResponse(account)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateOverdueAccounts sweeps ACTIVE accounts past their expected payment
// date to OVERDUE and returns how many transitioned. The domain transition
// is idempotent, so rerunning the sweep is harmless.
func (s *CreditService) UpdateOverdueAccounts(ctx context.Context, asOf time.Time) (int, error) {
	marked := 0
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		candidates, err := repos.CreditAccounts().FindOverdueCandidates(ctx, asOf, overdueSweepBatchSize)
		if err != nil {
			return err
		}
		for idx := range candidates {
			account := &candidates[idx]
			if !account.MarkOverdue(asOf) {
				continue
			}
			if err := repos.CreditAccounts().SaveWithLock(ctx, account); err != nil {
				return err
			}
			s.publishEvents(ctx, account)
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// publishEvents publishes and clears the account's pending events
func (s *CreditService) publishEvents(ctx context.Context, account *credit.CreditAccount) {
	if s.eventPublisher == nil {
		account.ClearDomainEvents()
		return
	}
	for _, event := range account.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	account.ClearDomainEvents()
}
