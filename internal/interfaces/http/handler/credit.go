package handler

import (
	"context"

	creditapp "github.com/afyapos/backend/internal/application/credit"
	"github.com/afyapos/backend/internal/domain/credit"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditHandler exposes credit accounts opened by credit sales: payments,
// lookups and lifecycle transitions.
type CreditHandler struct {
	BaseHandler
	creditService *creditapp.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *creditapp.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterRoutes registers credit account routes on the given group
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cr := rg.Group("/credit-accounts")
	{
		cr.GET("", h.ListByStatus)
		cr.GET("/:id", h.Get)
		cr.POST("/:id/payments", h.MakePayment)
		cr.POST("/:id/close", h.Close)
		cr.POST("/:id/suspend", h.Suspend)
		cr.POST("/:id/reactivate", h.Reactivate)
	}
	rg.GET("/sales/:id/credit-account", h.GetForSale)
	rg.GET("/customers/:id/credit-accounts", h.ListForCustomer)
}

// MakePayment records a payment against a credit account
func (h *CreditHandler) MakePayment(c *gin.Context) {
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
		h.BadRequest(c, "Invalid account ID")
		return
	}
	accountID, _ := uuid.Parse(uri.ID)

	var req creditapp.MakePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID
	req.AccountID = accountID
	req.ReceivedBy = userID

	account, err := h.creditService.MakePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Get returns one credit account with its payments
func (h *CreditHandler) Get(c *gin.Context) {
	h.byID(c, h.creditService.GetAccount)
}

// Close closes a fully paid account
func (h *CreditHandler) Close(c *gin.Context) {
	h.byID(c, h.creditService.CloseAccount)
}

// Suspend suspends an account in dispute
func (h *CreditHandler) Suspend(c *gin.Context) {
	h.byID(c, h.creditService.SuspendAccount)
}

// Reactivate returns a suspended account to active or overdue
func (h *CreditHandler) Reactivate(c *gin.Context) {
	h.byID(c, h.creditService.ReactivateAccount)
}

func (h *CreditHandler) byID(c *gin.Context, op func(ctx context.Context, tenantID, accountID uuid.UUID) (*creditapp.AccountResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	accountID, _ := uuid.Parse(uri.ID)

	account, err := op(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetForSale returns the credit account opened by one sale
func (h *CreditHandler) GetForSale(c *gin.Context) {
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

	account, err := h.creditService.GetAccountForSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListForCustomer returns all credit accounts held by one customer
func (h *CreditHandler) ListForCustomer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	customerID, _ := uuid.Parse(uri.ID)

	filter, ok := bindListFilter(c)
	if !ok {
		return
	}
	accounts, err := h.creditService.ListCustomerAccounts(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// ListByStatus returns accounts in the requested status, defaulting to active
func (h *CreditHandler) ListByStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	status := credit.AccountStatus(c.DefaultQuery("status", string(credit.AccountStatusActive)))

	filter, ok := bindListFilter(c)
	if !ok {
		return
	}
	accounts, err := h.creditService.ListAccountsByStatus(c.Request.Context(), tenantID, status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}
