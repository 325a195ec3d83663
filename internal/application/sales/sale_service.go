package sales

import (
	"context"
	"fmt"
	"time"

	inventoryapp "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// defaultCreditTermDays is applied when a credit sale names no expected
// payment date
const defaultCreditTermDays = 30

// nextDocumentNumber builds a per-tenant, per-day sequential document number
func nextDocumentNumber(prefix string, day time.Time, countSoFar int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), countSoFar+1)
}

// lineSourceRef builds the ledger idempotency reference for one sale line.
// Keying on the line rather than the sale keeps two lines of the same
// product at the same branch from colliding.
func lineSourceRef(documentNumber string, lineID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", documentNumber, lineID)
}

// SaleService coordinates the point-of-sale transaction flow. Completing a
// sale deducts inventory through the ledger and opens a credit account for
// any unpaid balance, all inside one transaction.
type SaleService struct {
	scope          TransactionScope
	ledger         *inventoryapp.LedgerService
	tax            sales.TaxSettings
	eventPublisher shared.EventPublisher
}

// NewSaleService creates a new SaleService. The tax settings are the tenant
// VAT configuration snapshotted onto each new sale.
func NewSaleService(scope TransactionScope, ledger *inventoryapp.LedgerService, tax sales.TaxSettings) *SaleService {
	return &SaleService{scope: scope, ledger: ledger, tax: tax}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateSale creates a sale. Unless the request asks for suspension the sale
// is completed in the same transaction: payments are validated against the
// total, every line deducts its batch through the ledger, and a credit sale
// with an unpaid balance opens a credit account.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Sale must have at least one line item")
	}

	var resp *SaleResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		now := time.Now()
		count, err := repos.Sales().CountForDay(ctx, req.TenantID, now)
		if err != nil {
			return err
		}
		saleNumber := nextDocumentNumber("SAL", now, count)

		sale, err := sales.NewSale(req.TenantID, saleNumber, req.BranchID, req.CashierID,
			req.CustomerID, req.CustomerName, req.CustomerPhone, req.IsCreditSale, s.tax)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			if _, err := sale.AddLine(line.ProductID, line.ProductName, line.BatchID, line.Quantity,
				valueobject.NewMoneyKES(line.UnitPrice), valueobject.NewMoneyKES(line.Discount)); err != nil {
				return err
			}
		}
		if req.Discount.IsPositive() {
			if err := sale.ApplyDiscount(valueobject.NewMoneyKES(req.Discount)); err != nil {
				return err
			}
		}
		for _, payment := range req.Payments {
			if _, err := sale.AddPayment(payment.Method, valueobject.NewMoneyKES(payment.Amount), payment.Reference); err != nil {
				return err
			}
		}

		if req.Suspend {
			if err := sale.Suspend(); err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
			s.publishEvents(ctx, sale)
			r := ToSaleResponse(sale)
			resp = &r
			return nil
		}

		if err := s.completeInScope(ctx, repos, sale, req.ExpectedPaymentDate, req.CashierID); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		s.publishEvents(ctx, sale)
		r := ToSaleResponse(sale)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CompleteSale finishes a suspended sale with the given payments
func (s *SaleService) CompleteSale(ctx context.Context, req CompleteSaleRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, req.TenantID, req.SaleID)
		if err != nil {
			return err
		}
		if err := sale.Resume(); err != nil {
			return err
		}
		for _, payment := range req.Payments {
			if _, err := sale.AddPayment(payment.Method, valueobject.NewMoneyKES(payment.Amount), payment.Reference); err != nil {
				return err
			}
		}

		if err := s.completeInScope(ctx, repos, sale, nil, req.PerformedBy); err != nil {
			return err
		}
		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		s.publishEvents(ctx, sale)
		r := ToSaleResponse(sale)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// completeInScope validates payments, transitions the sale to COMPLETED,
// deducts every active line through the ledger and opens a credit account
// for any unpaid balance on a credit sale
func (s *SaleService) completeInScope(ctx context.Context, repos TransactionalRepositories, sale *sales.Sale, expectedPaymentDate *time.Time, performedBy uuid.UUID) error {
	if err := sale.Complete(); err != nil {
		return err
	}

	for _, line := range sale.ActiveLines() {
		_, err := s.ledger.AdjustWithRepos(ctx, repos, inventoryapp.AdjustRequest{
			TenantID:        sale.TenantID,
			ProductID:       line.ProductID,
			BranchID:        sale.BranchID,
			BatchID:         line.BatchID,
			Delta:           -line.Quantity,
			TransactionType: inventory.TransactionTypeSale,
			SourceRef:       lineSourceRef(sale.SaleNumber, line.ID),
			SourceType:      inventory.SourceTypeSale,
			PerformedBy:     performedBy,
		})
		if err != nil {
			return err
		}
	}

	if !sale.IsCreditSale {
		return nil
	}
	shortfall := sale.CreditShortfall()
	if !shortfall.IsPositive() {
		return nil
	}

	dueDate := time.Now().AddDate(0, 0, defaultCreditTermDays)
	if expectedPaymentDate != nil {
		dueDate = *expectedPaymentDate
	}

	count, err := repos.CreditAccounts().CountForDay(ctx, sale.TenantID, time.Now())
	if err != nil {
		return err
	}
	account, err := credit.NewCreditAccount(sale.TenantID, nextDocumentNumber("CRD", time.Now(), count),
		sale.ID, *sale.CustomerID,
		valueobject.NewMoneyKES(sale.TotalAmount), valueobject.NewMoneyKES(sale.PaymentsTotal()), dueDate)
	if err != nil {
		return err
	}
	if err := repos.CreditAccounts().Save(ctx, account); err != nil {
		return err
	}
	s.publishEventsFrom(ctx, account.GetDomainEvents())
	account.ClearDomainEvents()

	return nil
}

// CancelSale cancels a sale. Cancelling a completed sale reverses every
// active line's deduction with a compensating ledger adjustment in the same
// transaction.
func (s *SaleService) CancelSale(ctx context.Context, req CancelSaleRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, req.TenantID, req.SaleID)
		if err != nil {
			return err
		}

		wasCompleted := sale.IsCompleted()
		if err := sale.Cancel(req.Reason); err != nil {
			return err
		}

		if wasCompleted {
			for _, line := range sale.ActiveLines() {
				_, err := s.ledger.AdjustWithRepos(ctx, repos, inventoryapp.AdjustRequest{
					TenantID:        sale.TenantID,
					ProductID:       line.ProductID,
					BranchID:        sale.BranchID,
					BatchID:         line.BatchID,
					Delta:           line.Quantity,
					TransactionType: inventory.TransactionTypeReturn,
					SourceRef:       lineSourceRef(sale.SaleNumber, line.ID),
					SourceType:      inventory.SourceTypeSaleCancellation,
					Reason:          req.Reason,
					PerformedBy:     req.PerformedBy,
				})
				if err != nil {
					return err
				}
			}
		}

		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		s.publishEvents(ctx, sale)
		r := ToSaleResponse(sale)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSale returns one sale for a tenant
func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		r := ToSaleResponse(sale)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSaleByNumber returns one sale looked up by its number
func (s *SaleService) GetSaleByNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindBySaleNumber(ctx, tenantID, saleNumber)
		if err != nil {
			return err
		}
		r := ToSaleResponse(sale)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchSales returns sales matching the filter with a total count
func (s *SaleService) SearchSales(ctx context.Context, tenantID uuid.UUID, filter sales.SaleFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var responses []SaleResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.Sales().Search(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.Sales().CountSearch(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		responses = make([]SaleResponse, 0, len(found))
		for idx := range found {
			responses = append(responses, ToSaleResponse(&found[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// publishEvents publishes and clears the sale's pending events
func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale) {
	s.publishEventsFrom(ctx, sale.GetDomainEvents())
	sale.ClearDomainEvents()
}

// publishEventsFrom publishes a batch of events best-effort
func (s *SaleService) publishEventsFrom(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		_ = s.eventPublisher.Publish(ctx, event)
	}
}
