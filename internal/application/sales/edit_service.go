package sales

import (
	"context"
	"fmt"

	inventoryapp "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// EditService runs the maker-checker workflow for amendments to completed
// sales. A cashier requests a price change or line removal; a different
// user approves or rejects it, and only approval touches the sale.
type EditService struct {
	scope          TransactionScope
	ledger         *inventoryapp.LedgerService
	eventPublisher shared.EventPublisher
}

// NewEditService creates a new EditService
func NewEditService(scope TransactionScope, ledger *inventoryapp.LedgerService) *EditService {
	return &EditService{scope: scope, ledger: ledger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *EditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RequestPriceChange files a pending price-change request for a line on a
// completed sale
func (s *EditService) RequestPriceChange(ctx context.Context, req PriceChangeRequest) (*EditRequestResponse, error) {
	return s.request(ctx, req.TenantID, req.SaleID, req.LineItemID, func() (*sales.SaleEditRequest, error) {
		return sales.NewPriceChangeRequest(req.TenantID, req.SaleID, req.LineItemID,
			valueobject.NewMoneyKES(req.NewUnitPrice), req.Reason, req.RequestedBy)
	})
}

// RequestLineDelete files a pending line-removal request for a line on a
// completed sale
func (s *EditService) RequestLineDelete(ctx context.Context, req LineDeleteRequest) (*EditRequestResponse, error) {
	return s.request(ctx, req.TenantID, req.SaleID, req.LineItemID, func() (*sales.SaleEditRequest, error) {
		return sales.NewLineDeleteRequest(req.TenantID, req.SaleID, req.LineItemID, req.Reason, req.RequestedBy)
	})
}

func (s *EditService) request(ctx context.Context, tenantID, saleID, lineItemID uuid.UUID, build func() (*sales.SaleEditRequest, error)) (*EditRequestResponse, error) {
	var resp *EditRequestResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if !sale.IsCompleted() {
			return shared.NewDomainError("INVALID_STATE", "Only completed sales can be amended")
		}
		line := sale.GetLine(lineItemID)
		if line == nil {
			return shared.NewDomainError("LINE_NOT_FOUND", "Sale line not found on this sale")
		}
		if line.IsDeleted {
			return shared.NewDomainError("INVALID_STATE", "Line is already removed")
		}

		// A second pending request on the same line would race the first
		pending, err := repos.EditRequests().FindBySaleID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		for idx := range pending {
			if pending[idx].LineItemID == lineItemID && !pending[idx].IsDecided() {
				return shared.NewDomainError("DUPLICATE_REQUEST", "Line already has a pending edit request")
			}
		}

		editReq, err := build()
		if err != nil {
			return err
		}
		if err := repos.EditRequests().Save(ctx, editReq); err != nil {
			return err
		}
		s.publishEvents(ctx, editReq)
		r := ToEditRequestResponse(editReq)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ApproveEdit approves a pending request and applies its mutation to the
// sale in the same transaction. An approved line removal restores the
// line's stock through the ledger since the sale no longer carries it.
func (s *EditService) ApproveEdit(ctx context.Context, tenantID, requestID, approvedBy uuid.UUID) (*EditRequestResponse, error) {
	var resp *EditRequestResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		editReq, err := repos.EditRequests().FindByIDForTenant(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, editReq.SaleID)
		if err != nil {
			return err
		}

		if err := editReq.Approve(approvedBy); err != nil {
			return err
		}
		if err := editReq.ApplyTo(sale); err != nil {
			return err
		}

		if editReq.RequestType == sales.EditRequestTypeLineDelete {
			line := sale.GetLine(editReq.LineItemID)
			if line == nil {
				return shared.ErrNotFound
			}
			_, err := s.ledger.AdjustWithRepos(ctx, repos, inventoryapp.AdjustRequest{
				TenantID:        tenantID,
				ProductID:       line.ProductID,
				BranchID:        sale.BranchID,
				BatchID:         line.BatchID,
				Delta:           line.Quantity,
				TransactionType: inventory.TransactionTypeAdjustment,
				SourceRef:       fmt.Sprintf("EDIT/%s", editReq.ID),
				SourceType:      inventory.SourceTypeManualAdjustment,
				Reason:          editReq.Reason,
				PerformedBy:     approvedBy,
			})
			if err != nil {
				return err
			}
		}

		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		if err := repos.EditRequests().Save(ctx, editReq); err != nil {
			return err
		}
		s.publishEvents(ctx, editReq)
		r := ToEditRequestResponse(editReq)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RejectEdit rejects a pending request, leaving the sale untouched
func (s *EditService) RejectEdit(ctx context.Context, tenantID, requestID, rejectedBy uuid.UUID, reason string) (*EditRequestResponse, error) {
	var resp *EditRequestResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		editReq, err := repos.EditRequests().FindByIDForTenant(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if err := editReq.Reject(rejectedBy, reason); err != nil {
			return err
		}
		if err := repos.EditRequests().Save(ctx, editReq); err != nil {
			return err
		}
		s.publishEvents(ctx, editReq)
		r := ToEditRequestResponse(editReq)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPendingEdits returns the undecided requests awaiting a checker
func (s *EditService) ListPendingEdits(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]EditRequestResponse, error) {
	var responses []EditRequestResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		requests, err := repos.EditRequests().FindPendingForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		responses = make([]EditRequestResponse, 0, len(requests))
		for idx := range requests {
			responses = append(responses, ToEditRequestResponse(&requests[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetEditRequest returns one edit request for a tenant
func (s *EditService) GetEditRequest(ctx context.Context, tenantID, requestID uuid.UUID) (*EditRequestResponse, error) {
	var resp *EditRequestResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		editReq, err := repos.EditRequests().FindByIDForTenant(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		r := ToEditRequestResponse(editReq)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// publishEvents publishes and clears the request's pending events
func (s *EditService) publishEvents(ctx context.Context, req *sales.SaleEditRequest) {
	if s.eventPublisher == nil {
		req.ClearDomainEvents()
		return
	}
	for _, event := range req.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	req.ClearDomainEvents()
}
