package sales

import (
	"context"
	"time"

	inventoryapp "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReturnService handles the return workflow against completed sales. A
// return is drafted, approved, then processed; only processing mutates the
// original sale's watermark and restores inventory.
type ReturnService struct {
	scope          TransactionScope
	ledger         *inventoryapp.LedgerService
	eventPublisher shared.EventPublisher
}

// NewReturnService creates a new ReturnService
func NewReturnService(scope TransactionScope, ledger *inventoryapp.LedgerService) *ReturnService {
	return &ReturnService{scope: scope, ledger: ledger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateReturn drafts a return against a completed sale. Line quantities
// are validated against each original line's remaining returnable quantity,
// but the sale itself is not mutated until processing.
func (s *ReturnService) CreateReturn(ctx context.Context, req CreateReturnRequest) (*ReturnResponse, error) {
	var resp *ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, req.TenantID, req.SaleID)
		if err != nil {
			return err
		}
		if sale.Status != sales.SaleStatusCompleted && sale.Status != sales.SaleStatusRefunded {
			return shared.NewDomainError("INVALID_STATE", "Only completed sales accept returns")
		}

		now := time.Now()
		count, err := repos.Returns().CountForDay(ctx, req.TenantID, now)
		if err != nil {
			return err
		}

		ret, err := sales.NewSaleReturn(req.TenantID, nextDocumentNumber("RET", now, count),
			sale.ID, sale.BranchID, req.Reason)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			original := sale.GetLine(line.SaleLineItemID)
			if original == nil {
				return shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found on this sale")
			}
			if original.IsDeleted {
				return shared.NewDomainError("INVALID_STATE", "Cannot return a removed line")
			}
			if _, err := ret.AddLine(original, line.Quantity, line.RestoreToInventory); err != nil {
				return err
			}
		}

		if err := repos.Returns().Save(ctx, ret); err != nil {
			return err
		}
		s.publishEvents(ctx, ret)
		r := ToReturnResponse(ret)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ApproveReturn approves a pending return for processing
func (s *ReturnService) ApproveReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	return s.decide(ctx, tenantID, returnID, func(ret *sales.SaleReturn) error {
		return ret.Approve()
	})
}

// RejectReturn rejects a pending return, leaving the sale untouched
func (s *ReturnService) RejectReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	return s.decide(ctx, tenantID, returnID, func(ret *sales.SaleReturn) error {
		return ret.Reject()
	})
}

func (s *ReturnService) decide(ctx context.Context, tenantID, returnID uuid.UUID, decision func(*sales.SaleReturn) error) (*ReturnResponse, error) {
	var resp *ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ret, err := repos.Returns().FindByIDForTenant(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := decision(ret); err != nil {
			return err
		}
		if err := repos.Returns().Save(ctx, ret); err != nil {
			return err
		}
		r := ToReturnResponse(ret)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ProcessReturn commits an approved return: the original sale's returned
// quantities advance, flagged lines restore their batches through the
// ledger, and a fully returned sale is marked refunded. All of it shares
// one transaction.
func (s *ReturnService) ProcessReturn(ctx context.Context, tenantID, returnID, processedBy uuid.UUID) (*ReturnResponse, error) {
	var resp *ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ret, err := repos.Returns().FindByIDForTenant(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if ret.Status != sales.SaleReturnStatusApproved {
			return shared.NewDomainError("INVALID_STATE", "Only approved returns can be processed")
		}

		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, ret.OriginalSaleID)
		if err != nil {
			return err
		}

		for idx := range ret.Lines {
			if err := sale.RecordLineReturn(ret.Lines[idx].SaleLineItemID, ret.Lines[idx].QuantityReturned); err != nil {
				return err
			}
		}

		for _, line := range ret.RestorableLines() {
			_, err := s.ledger.AdjustWithRepos(ctx, repos, inventoryapp.AdjustRequest{
				TenantID:        tenantID,
				ProductID:       line.ProductID,
				BranchID:        ret.BranchID,
				BatchID:         line.BatchID,
				Delta:           line.QuantityReturned,
				TransactionType: inventory.TransactionTypeReturn,
				SourceRef:       lineSourceRef(ret.ReturnNumber, line.ID),
				SourceType:      inventory.SourceTypeSaleReturn,
				Reason:          ret.ReturnReason,
				PerformedBy:     processedBy,
			})
			if err != nil {
				return err
			}
		}

		if sale.ReturnStatus == sales.ReturnStatusFull && sale.Status == sales.SaleStatusCompleted {
			if err := sale.MarkRefunded(); err != nil {
				return err
			}
		}
		if err := ret.MarkProcessed(processedBy); err != nil {
			return err
		}

		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		if err := repos.Returns().Save(ctx, ret); err != nil {
			return err
		}
		s.publishEvents(ctx, ret)
		r := ToReturnResponse(ret)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetReturn returns one return document for a tenant
func (s *ReturnService) GetReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	var resp *ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ret, err := repos.Returns().FindByIDForTenant(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		r := ToReturnResponse(ret)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListReturnsForSale returns all return documents against a sale
func (s *ReturnService) ListReturnsForSale(ctx context.Context, tenantID, saleID uuid.UUID) ([]ReturnResponse, error) {
	var responses []ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		returns, err := repos.Returns().FindBySaleID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		responses = make([]ReturnResponse, 0, len(returns))
		for idx := range returns {
			responses = append(responses, ToReturnResponse(&returns[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// publishEvents publishes and clears the return's pending events
func (s *ReturnService) publishEvents(ctx context.Context, ret *sales.SaleReturn) {
	if s.eventPublisher == nil {
		ret.ClearDomainEvents()
		return
	}
	for _, event := range ret.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	ret.ClearDomainEvents()
}
