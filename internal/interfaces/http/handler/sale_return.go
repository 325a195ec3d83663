package handler

import (
	"context"

	salesapp "github.com/afyapos/backend/internal/application/sales"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/afyapos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReturnHandler exposes the sale return flow. Approve and reject require a
// manager; processing restocks approved lines and refunds the customer.
type ReturnHandler struct {
	BaseHandler
	returnService *salesapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *salesapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// RegisterRoutes registers return routes on the given group
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ret := rg.Group("/returns")
	{
		ret.POST("", h.Create)
		ret.GET("/:id", h.Get)
		ret.POST("/:id/approve", middleware.RequireManager(), h.Approve)
		ret.POST("/:id/reject", middleware.RequireManager(), h.Reject)
		ret.POST("/:id/process", h.Process)
	}
	rg.GET("/sales/:id/returns", h.ListForSale)
}

// Create opens a return document against a completed sale
func (h *ReturnHandler) Create(c *gin.Context) {
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

	var req salesapp.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.RequestedBy = userID

	ret, err := h.returnService.CreateReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// Get returns one return document
func (h *ReturnHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid return ID")
		return
	}
	returnID, _ := uuid.Parse(uri.ID)

	ret, err := h.returnService.GetReturn(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Approve marks a pending return as approved
func (h *ReturnHandler) Approve(c *gin.Context) {
	h.decide(c, h.returnService.ApproveReturn)
}

// Reject marks a pending return as rejected
func (h *ReturnHandler) Reject(c *gin.Context) {
	h.decide(c, h.returnService.RejectReturn)
}

func (h *ReturnHandler) decide(c *gin.Context, decision func(ctx context.Context, tenantID, returnID uuid.UUID) (*salesapp.ReturnResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid return ID")
		return
	}
	returnID, _ := uuid.Parse(uri.ID)

	ret, err := decision(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Process executes an approved return, restocking and refunding
func (h *ReturnHandler) Process(c *gin.Context) {
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
		h.BadRequest(c, "Invalid return ID")
		return
	}
	returnID, _ := uuid.Parse(uri.ID)

	ret, err := h.returnService.ProcessReturn(c.Request.Context(), tenantID, returnID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// ListForSale returns all returns raised against one sale
func (h *ReturnHandler) ListForSale(c *gin.Context) {
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

	returns, err := h.returnService.ListReturnsForSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}
