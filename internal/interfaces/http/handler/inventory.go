package handler

import (
	"time"

	invapp "github.com/afyapos/backend/internal/application/inventory"
	"github.com/afyapos/backend/internal/domain/inventory"
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/infrastructure/telemetry"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/afyapos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler exposes the batch ledger: stock receipts, manual
// adjustments, transfers, write-offs and the audit trail.
type InventoryHandler struct {
	BaseHandler
	ledgerService *invapp.LedgerService
	metrics       *telemetry.PosMetrics
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *invapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// SetMetrics attaches business metrics recording; a nil value disables it
func (h *InventoryHandler) SetMetrics(metrics *telemetry.PosMetrics) {
	h.metrics = metrics
}

// RegisterRoutes registers inventory routes on the given group
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	{
		inv.POST("/adjustments", h.Adjust)
		inv.POST("/transfers", h.Transfer)
		inv.POST("/receipts", h.ReceiveStock)
		inv.POST("/write-offs", h.WriteOff)
		inv.GET("/batches/:id", h.GetBatch)
		inv.GET("/batches", h.ListBatches)
		inv.GET("/batches/available", h.AvailableBatches)
		inv.GET("/batches/expiring", h.ExpiringBatches)
		inv.GET("/audit-trail", h.AuditTrail)
		inv.GET("/scan", h.ScanBarcode)
		inv.POST("/products", h.RegisterProduct)
	}
}

// Adjust applies one manual ledger adjustment
func (h *InventoryHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req invapp.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.PerformedBy = userID

	result, err := h.ledgerService.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordStockAdjustment(c.Request.Context(), tenantID, "adjustment")
	h.Success(c, result)
}

// Transfer moves stock between branches
func (h *InventoryHandler) Transfer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req invapp.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.PerformedBy = userID

	result, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordStockAdjustment(c.Request.Context(), tenantID, "transfer")
	h.Success(c, result)
}

// ReceiveStock creates or tops up a batch from a receipt
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req invapp.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.PerformedBy = userID

	result, err := h.ledgerService.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordStockAdjustment(c.Request.Context(), tenantID, "receipt")
	h.Created(c, result)
}

// WriteOff removes expired or damaged stock
func (h *InventoryHandler) WriteOff(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req invapp.WriteOffRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.PerformedBy = userID

	result, err := h.ledgerService.WriteOff(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordStockAdjustment(c.Request.Context(), tenantID, "write_off")
	h.Success(c, result)
}

// GetBatch returns one batch
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}
	batchID, _ := uuid.Parse(uri.ID)

	batch, err := h.ledgerService.GetBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// ListBatches returns all batches of a product at a branch
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id query parameter is required")
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "branch_id query parameter is required")
		return
	}

	batches, err := h.ledgerService.ListBatches(c.Request.Context(), tenantID, productID, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// AvailableBatches returns sellable batches for a product at a branch,
// soonest expiry first, backing the barcode scan flow at the till
func (h *InventoryHandler) AvailableBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id query parameter is required")
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "branch_id query parameter is required")
		return
	}

	batches, err := h.ledgerService.AvailableBatches(c.Request.Context(), tenantID, productID, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ScanBarcode resolves a scanned barcode to its product and the sellable
// batches at the till's branch, soonest expiry first
func (h *InventoryHandler) ScanBarcode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	barcode := c.Query("barcode")
	if barcode == "" {
		h.BadRequest(c, "barcode query parameter is required")
		return
	}
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		h.BadRequest(c, "branch_id query parameter is required")
		return
	}

	result, err := h.ledgerService.ScanBarcode(c.Request.Context(), tenantID, branchID, barcode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterProduct adds a product to the catalog
func (h *InventoryHandler) RegisterProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req invapp.RegisterProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID

	product, err := h.ledgerService.RegisterProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// ExpiringBatches returns batches expiring within the requested window
func (h *InventoryHandler) ExpiringBatches(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	days := 30
	if v := c.Query("within_days"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.BadRequest(c, "Invalid within_days")
			return
		}
		days = parsed
	}

	filter, ok := bindListFilter(c)
	if !ok {
		return
	}
	batches, err := h.ledgerService.ExpiringBatches(c.Request.Context(), tenantID,
		time.Duration(days)*24*time.Hour, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// AuditTrail returns audit log entries matching the query filters
func (h *InventoryHandler) AuditTrail(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	listFilter, ok := bindListFilter(c)
	if !ok {
		return
	}
	filter := inventory.AuditFilter{Filter: listFilter}

	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid product_id")
			return
		}
		filter.ProductID = &id
	}
	if v := c.Query("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		filter.BranchID = &id
	}
	if v := c.Query("batch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid batch_id")
			return
		}
		filter.BatchID = &id
	}
	if v := c.Query("transaction_type"); v != "" {
		tt := inventory.TransactionType(v)
		filter.TransactionType = &tt
	}
	if v := c.Query("source_type"); v != "" {
		st := inventory.SourceType(v)
		filter.SourceType = &st
	}
	filter.SourceReference = c.Query("source_ref")
	filter.IncludeDupes = c.Query("include_duplicates") == "true"

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected RFC3339")
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected RFC3339")
			return
		}
		filter.EndDate = &t
	}

	entries, total, err := h.ledgerService.GetAuditTrail(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// bindListFilter reads the common pagination parameters. A malformed query
// writes a 400 with per-field details and reports false.
func bindListFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return shared.Filter{}, false
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}
