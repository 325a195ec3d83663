package inventory

import (
	"context"
	"time"

	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerService owns all quantity mutations on inventory batches. Every
// adjustment appends exactly one audit entry in the same transaction, and
// a repeated idempotency key turns the adjustment into a recorded no-op.
type LedgerService struct {
	scope          TransactionScope
	products       inventory.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope) *LedgerService {
	return &LedgerService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetProductRepository sets the catalog repository backing barcode scans
func (s *LedgerService) SetProductRepository(products inventory.ProductRepository) {
	s.products = products
}

// Adjust applies one signed quantity change inside its own transaction scope
func (s *LedgerService) Adjust(ctx context.Context, req AdjustRequest) (*AdjustmentResult, error) {
	var result *AdjustmentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var innerErr error
		result, innerErr = s.AdjustWithRepos(ctx, repos, req)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustWithRepos applies one adjustment using repositories that already
// belong to a caller-owned transaction. The sale and return processors use
// this to fold their deductions into their own unit of work.
func (s *LedgerService) AdjustWithRepos(ctx context.Context, repos TransactionalRepositories, req AdjustRequest) (*AdjustmentResult, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	if !req.TransactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if !req.SourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source type")
	}
	if req.SourceRef == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_REF", "Source reference cannot be empty")
	}

	batch, err := s.resolveBatchForUpdate(ctx, repos, req)
	if err != nil {
		return nil, err
	}

	// Duplicate idempotency key makes this attempt a recorded no-op
	existing, err := repos.AuditLog().FindBySourceKey(ctx, req.TenantID, batch.ProductID, batch.BranchID, req.SourceRef, req.SourceType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		dup, err := inventory.NewAuditEntry(
			req.TenantID, batch.ProductID, batch.BranchID, batch.ID,
			req.TransactionType,
			req.Delta, batch.Quantity, batch.Quantity+req.Delta,
			req.SourceRef, req.SourceType, req.PerformedBy,
		)
		if err != nil {
			return nil, err
		}
		dup.WithReason(req.Reason).MarkDuplicate(existing.ID)
		if err := repos.AuditLog().Create(ctx, dup); err != nil {
			return nil, err
		}
		return &AdjustmentResult{
			BatchID:        batch.ID,
			AuditEntryID:   dup.ID,
			QuantityBefore: batch.Quantity,
			QuantityAfter:  batch.Quantity,
			Duplicate:      true,
		}, nil
	}

	before, after, err := batch.ApplyDelta(req.Delta)
	if err != nil {
		return nil, err
	}
	if err := repos.Batches().SaveWithLock(ctx, batch); err != nil {
		return nil, err
	}

	entry, err := inventory.NewAuditEntry(
		req.TenantID, batch.ProductID, batch.BranchID, batch.ID,
		req.TransactionType,
		req.Delta, before, after,
		req.SourceRef, req.SourceType, req.PerformedBy,
	)
	if err != nil {
		return nil, err
	}
	entry.WithReason(req.Reason)
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := repos.AuditLog().Create(ctx, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, batch)

	return &AdjustmentResult{
		BatchID:        batch.ID,
		AuditEntryID:   entry.ID,
		QuantityBefore: before,
		QuantityAfter:  after,
	}, nil
}

// resolveBatchForUpdate locates the target batch by ID or batch number and
// takes a row lock on it for the rest of the transaction
func (s *LedgerService) resolveBatchForUpdate(ctx context.Context, repos TransactionalRepositories, req AdjustRequest) (*inventory.Batch, error) {
	if req.BatchID != uuid.Nil {
		batch, err := repos.Batches().FindByIDForUpdate(ctx, req.TenantID, req.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.ProductID != req.ProductID || batch.BranchID != req.BranchID {
			return nil, shared.NewDomainError("BATCH_MISMATCH", "Batch does not belong to the given product and branch")
		}
		return batch, nil
	}

	if req.BatchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID or batch number is required")
	}
	batch, err := repos.Batches().FindByBatchNumber(ctx, req.TenantID, req.ProductID, req.BranchID, req.BatchNumber)
	if err != nil {
		return nil, err
	}
	// Re-read under lock now that the ID is known
	return repos.Batches().FindByIDForUpdate(ctx, req.TenantID, batch.ID)
}

// Transfer moves stock between branches as TRANSFER_OUT plus TRANSFER_IN
// in a single unit of work; both legs commit or neither does
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer quantity must be positive")
	}
	if req.FromBranch == req.ToBranch {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Cannot transfer within one branch")
	}

	var result TransferResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sourceBatch, err := repos.Batches().FindByBatchNumber(ctx, req.TenantID, req.ProductID, req.FromBranch, req.BatchNumber)
		if err != nil {
			return err
		}

		out, err := s.AdjustWithRepos(ctx, repos, AdjustRequest{
			TenantID:        req.TenantID,
			ProductID:       req.ProductID,
			BranchID:        req.FromBranch,
			BatchID:         sourceBatch.ID,
			Delta:           -req.Quantity,
			TransactionType: inventory.TransactionTypeTransferOut,
			SourceRef:       req.SourceRef,
			SourceType:      inventory.SourceTypeTransfer,
			Reason:          req.Reason,
			PerformedBy:     req.PerformedBy,
		})
		if err != nil {
			return err
		}

		destBatch, err := s.findOrCreateDestinationBatch(ctx, repos, req, sourceBatch)
		if err != nil {
			return err
		}

		in, err := s.AdjustWithRepos(ctx, repos, AdjustRequest{
			TenantID:        req.TenantID,
			ProductID:       req.ProductID,
			BranchID:        req.ToBranch,
			BatchID:         destBatch.ID,
			Delta:           req.Quantity,
			TransactionType: inventory.TransactionTypeTransferIn,
			SourceRef:       req.SourceRef,
			SourceType:      inventory.SourceTypeTransfer,
			Reason:          req.Reason,
			PerformedBy:     req.PerformedBy,
		})
		if err != nil {
			return err
		}

		result = TransferResult{Outbound: *out, Inbound: *in}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// findOrCreateDestinationBatch mirrors the source batch at the destination
// branch, keeping lot number, expiry and pricing
func (s *LedgerService) findOrCreateDestinationBatch(ctx context.Context, repos TransactionalRepositories, req TransferRequest, source *inventory.Batch) (*inventory.Batch, error) {
	dest, err := repos.Batches().FindByBatchNumber(ctx, req.TenantID, req.ProductID, req.ToBranch, source.BatchNumber)
	if err == nil {
		return dest, nil
	}
	if !shared.IsDomainErrorCode(err, shared.ErrNotFound.Code) {
		return nil, err
	}

	dest, err = inventory.NewBatch(req.TenantID, req.ToBranch, req.ProductID, source.BatchNumber, source.ExpiryDate, 0, source.UnitCost, source.SellingPrice)
	if err != nil {
		return nil, err
	}
	if err := repos.Batches().Save(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// ReceiveStock creates a batch (or tops up an existing one) from a purchase
// receipt or an initial stock entry
func (s *LedgerService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*AdjustmentResult, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	txType := inventory.TransactionTypePurchase
	srcType := inventory.SourceTypePurchaseOrder
	if req.InitialStock {
		txType = inventory.TransactionTypeInitialStock
		srcType = inventory.SourceTypeInitialStock
	}

	var result *AdjustmentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches().FindByBatchNumber(ctx, req.TenantID, req.ProductID, req.BranchID, req.BatchNumber)
		if err != nil {
			if !shared.IsDomainErrorCode(err, shared.ErrNotFound.Code) {
				return err
			}
			batch, err = inventory.NewBatch(req.TenantID, req.BranchID, req.ProductID, req.BatchNumber, req.ExpiryDate, 0, req.UnitCost, req.SellingPrice)
			if err != nil {
				return err
			}
			if err := repos.Batches().Save(ctx, batch); err != nil {
				return err
			}
		}

		result, err = s.AdjustWithRepos(ctx, repos, AdjustRequest{
			TenantID:        req.TenantID,
			ProductID:       req.ProductID,
			BranchID:        req.BranchID,
			BatchID:         batch.ID,
			Delta:           req.Quantity,
			TransactionType: txType,
			SourceRef:       req.SourceRef,
			SourceType:      srcType,
			PerformedBy:     req.PerformedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WriteOff removes expired or damaged stock from a batch
func (s *LedgerService) WriteOff(ctx context.Context, req WriteOffRequest) (*AdjustmentResult, error) {
	if req.WriteOffType != inventory.TransactionTypeExpiryWriteOff && req.WriteOffType != inventory.TransactionTypeDamageWriteOff {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Write-off type must be expiry or damage")
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Write-off reason is required")
	}

	return s.Adjust(ctx, AdjustRequest{
		TenantID:        req.TenantID,
		ProductID:       req.ProductID,
		BranchID:        req.BranchID,
		BatchID:         req.BatchID,
		Delta:           -req.Quantity,
		TransactionType: req.WriteOffType,
		SourceRef:       req.SourceRef,
		SourceType:      inventory.SourceTypeWriteOff,
		Reason:          req.Reason,
		PerformedBy:     req.PerformedBy,
	})
}

// GetBatch returns one batch for a tenant
func (s *LedgerService) GetBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*BatchResponse, error) {
	var resp *BatchResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches().FindByIDForTenant(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		r := ToBatchResponse(batch)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListBatches returns the batches of a product at a branch
func (s *LedgerService) ListBatches(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]BatchResponse, error) {
	var responses []BatchResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.Batches().FindByProductAndBranch(ctx, tenantID, productID, branchID)
		if err != nil {
			return err
		}
		responses = make([]BatchResponse, 0, len(batches))
		for idx := range batches {
			responses = append(responses, ToBatchResponse(&batches[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// AvailableBatches returns the sellable batches of a product at a branch,
// soonest expiry first, for the POS pick-batch flow
func (s *LedgerService) AvailableBatches(ctx context.Context, tenantID, productID, branchID uuid.UUID) ([]BatchResponse, error) {
	var responses []BatchResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.Batches().FindAvailableByProductAndBranch(ctx, tenantID, productID, branchID)
		if err != nil {
			return err
		}
		responses = make([]BatchResponse, 0, len(batches))
		for idx := range batches {
			responses = append(responses, ToBatchResponse(&batches[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ScanBarcode resolves a scanned barcode to a product and returns its
// sellable batches at the branch, soonest expiry first. This is the
// read-only lookup the till runs before adding a line to the sale.
func (s *LedgerService) ScanBarcode(ctx context.Context, tenantID, branchID uuid.UUID, barcode string) (*ScanResult, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Barcode cannot be empty")
	}
	if s.products == nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Product catalog is not configured")
	}

	product, err := s.products.FindByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, err
	}

	batches, err := s.AvailableBatches(ctx, tenantID, product.ID, branchID)
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		Product: ToProductResponse(product),
		Batches: batches,
	}, nil
}

// RegisterProduct adds a product to the catalog
func (s *LedgerService) RegisterProduct(ctx context.Context, req RegisterProductRequest) (*ProductResponse, error) {
	if s.products == nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Product catalog is not configured")
	}

	// A barcode maps to at most one product per tenant
	existing, err := s.products.FindByBarcode(ctx, req.TenantID, req.Barcode)
	if err != nil && !shared.IsDomainErrorCode(err, shared.ErrNotFound.Code) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_BARCODE", "A product with this barcode already exists")
	}

	product, err := inventory.NewProduct(req.TenantID, req.Name, req.Barcode, req.SKU)
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// ExpiringBatches returns active stocked batches expiring within the window
func (s *LedgerService) ExpiringBatches(ctx context.Context, tenantID uuid.UUID, within time.Duration, filter shared.Filter) ([]BatchResponse, error) {
	var responses []BatchResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batches, err := repos.Batches().FindExpiring(ctx, tenantID, time.Now().Add(within), filter)
		if err != nil {
			return err
		}
		responses = make([]BatchResponse, 0, len(batches))
		for idx := range batches {
			responses = append(responses, ToBatchResponse(&batches[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetAuditTrail returns audit entries matching the reconciliation filter
func (s *LedgerService) GetAuditTrail(ctx context.Context, tenantID uuid.UUID, filter inventory.AuditFilter) ([]AuditEntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var responses []AuditEntryResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.AuditLog().FindByFilter(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.AuditLog().CountByFilter(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		responses = make([]AuditEntryResponse, 0, len(entries))
		for idx := range entries {
			responses = append(responses, ToAuditEntryResponse(&entries[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// publishEvents publishes and clears the aggregate's pending events.
// Publication is best-effort; failures must not roll back the ledger.
func (s *LedgerService) publishEvents(ctx context.Context, batch *inventory.Batch) {
	if s.eventPublisher == nil {
		batch.ClearDomainEvents()
		return
	}
	for _, event := range batch.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	batch.ClearDomainEvents()
}
