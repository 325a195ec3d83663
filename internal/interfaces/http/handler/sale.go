package handler

import (
	"time"

	salesapp "github.com/afyapos/backend/internal/application/sales"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/infrastructure/telemetry"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler exposes the sale lifecycle: create, complete, cancel, lookup
// and search, plus cashier commission for completed sales.
type SaleHandler struct {
	BaseHandler
	saleService       *salesapp.SaleService
	commissionService *salesapp.CommissionService
	metrics           *telemetry.PosMetrics
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService, commissionService *salesapp.CommissionService) *SaleHandler {
	return &SaleHandler{
		saleService:       saleService,
		commissionService: commissionService,
	}
}

// SetMetrics attaches business metrics recording; a nil value disables it
func (h *SaleHandler) SetMetrics(metrics *telemetry.PosMetrics) {
	h.metrics = metrics
}

func (h *SaleHandler) recordCompleted(c *gin.Context, tenantID uuid.UUID, sale *salesapp.SaleResponse) {
	if sale == nil || sale.Status != sales.SaleStatusCompleted {
		return
	}
	method := "none"
	switch len(sale.Payments) {
	case 0:
	case 1:
		method = string(sale.Payments[0].Method)
	default:
		method = "mixed"
	}
	h.metrics.RecordSaleCompleted(c.Request.Context(), tenantID, sale.TotalAmount, method)
}

// RegisterRoutes registers sale routes on the given group
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sl := rg.Group("/sales")
	{
		sl.POST("", h.Create)
		sl.GET("", h.Search)
		sl.GET("/:id", h.Get)
		sl.GET("/number/:number", h.GetByNumber)
		sl.POST("/:id/complete", h.Complete)
		sl.POST("/:id/cancel", h.Cancel)
		sl.GET("/:id/commission", h.Commission)
	}
}

// Create creates a sale; unless suspended it completes immediately
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	cashierID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req salesapp.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.CashierID = cashierID

	sale, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.recordCompleted(c, tenantID, sale)
	h.Created(c, sale)
}

// Complete finishes a suspended sale
func (h *SaleHandler) Complete(c *gin.Context) {
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

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID, _ := uuid.Parse(uri.ID)

	var req salesapp.CompleteSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.SaleID = saleID
	req.PerformedBy = userID

	sale, err := h.saleService.CompleteSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.recordCompleted(c, tenantID, sale)
	h.Success(c, sale)
}

// Cancel voids a sale, reversing inventory when it had been completed
func (h *SaleHandler) Cancel(c *gin.Context) {
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

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID, _ := uuid.Parse(uri.ID)

	var req salesapp.CancelSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.SaleID = saleID
	req.PerformedBy = userID

	sale, err := h.saleService.CancelSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Get returns one sale
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID, _ := uuid.Parse(uri.ID)

	sale, err := h.saleService.GetSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByNumber returns one sale by its human-readable number
func (h *SaleHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Sale number is required")
		return
	}

	sale, err := h.saleService.GetSaleByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Search returns sales matching the query filters
func (h *SaleHandler) Search(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	listFilter, ok := bindListFilter(c)
	if !ok {
		return
	}
	filter := sales.SaleFilter{Filter: listFilter}

	if v := c.Query("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		filter.BranchID = &id
	}
	if v := c.Query("cashier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid cashier_id")
			return
		}
		filter.CashierID = &id
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("status"); v != "" {
		st := sales.SaleStatus(v)
		filter.Status = &st
	}
	if v := c.Query("return_status"); v != "" {
		rs := sales.ReturnStatus(v)
		filter.ReturnStatus = &rs
	}
	if v := c.Query("is_credit_sale"); v != "" {
		credit := v == "true"
		filter.IsCreditSale = &credit
	}
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

	results, total, err := h.saleService.SearchSales(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Commission returns the cashier commission for a completed sale
func (h *SaleHandler) Commission(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID, _ := uuid.Parse(uri.ID)

	commission, err := h.commissionService.ForSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, commission)
}
