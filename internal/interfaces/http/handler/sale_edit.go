package handler

import (
	salesapp "github.com/afyapos/backend/internal/application/sales"
	"github.com/afyapos/backend/internal/infrastructure/telemetry"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/afyapos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EditHandler exposes the maker-checker flow for completed sales: cashiers
// raise price change or line delete requests, managers decide them.
type EditHandler struct {
	BaseHandler
	editService *salesapp.EditService
	metrics     *telemetry.PosMetrics
}

// NewEditHandler creates a new EditHandler
func NewEditHandler(editService *salesapp.EditService) *EditHandler {
	return &EditHandler{editService: editService}
}

// SetMetrics attaches business metrics recording; a nil value disables it
func (h *EditHandler) SetMetrics(metrics *telemetry.PosMetrics) {
	h.metrics = metrics
}

// RegisterRoutes registers edit request routes on the given group
func (h *EditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	edits := rg.Group("/edit-requests")
	{
		edits.POST("/price-change", h.RequestPriceChange)
		edits.POST("/line-delete", h.RequestLineDelete)
		edits.GET("", h.ListPending)
		edits.GET("/:id", h.Get)
		edits.POST("/:id/approve", middleware.RequireManager(), h.Approve)
		edits.POST("/:id/reject", middleware.RequireManager(), h.Reject)
	}
}

// RequestPriceChange raises a price change request for a checker
func (h *EditHandler) RequestPriceChange(c *gin.Context) {
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

	var req salesapp.PriceChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.RequestedBy = userID

	edit, err := h.editService.RequestPriceChange(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, edit)
}

// RequestLineDelete raises a line removal request for a checker
func (h *EditHandler) RequestLineDelete(c *gin.Context) {
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

	var req salesapp.LineDeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.RequestedBy = userID

	edit, err := h.editService.RequestLineDelete(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, edit)
}

// Approve applies a pending edit to its sale
func (h *EditHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid edit request ID")
		return
	}
	requestID, _ := uuid.Parse(uri.ID)

	edit, err := h.editService.ApproveEdit(c.Request.Context(), tenantID, requestID, approverID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordEditDecision(c.Request.Context(), tenantID, "approved")
	h.Success(c, edit)
}

// RejectEditRequest carries the checker's rejection reason
type RejectEditRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject declines a pending edit, leaving the sale untouched
func (h *EditHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	rejecterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid edit request ID")
		return
	}
	requestID, _ := uuid.Parse(uri.ID)

	var req RejectEditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	edit, err := h.editService.RejectEdit(c.Request.Context(), tenantID, requestID, rejecterID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordEditDecision(c.Request.Context(), tenantID, "rejected")
	h.Success(c, edit)
}

// ListPending returns edit requests awaiting a decision
func (h *EditHandler) ListPending(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	filter, ok := bindListFilter(c)
	if !ok {
		return
	}
	edits, err := h.editService.ListPendingEdits(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, edits)
}

// Get returns one edit request
func (h *EditHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid edit request ID")
		return
	}
	requestID, _ := uuid.Parse(uri.ID)

	edit, err := h.editService.GetEditRequest(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, edit)
}
