package handler

import (
	"net/http"

	payapp "github.com/afyapos/backend/internal/application/payment"
	"github.com/afyapos/backend/internal/infrastructure/logger"
	"github.com/afyapos/backend/internal/infrastructure/telemetry"
	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MpesaHandler exposes STK push initiation and transaction lookups, plus the
// unauthenticated callback endpoint Daraja posts results to.
type MpesaHandler struct {
	BaseHandler
	mpesaService *payapp.MpesaService
	metrics      *telemetry.PosMetrics
}

// NewMpesaHandler creates a new MpesaHandler
func NewMpesaHandler(mpesaService *payapp.MpesaService) *MpesaHandler {
	return &MpesaHandler{mpesaService: mpesaService}
}

// SetMetrics attaches business metrics recording; a nil value disables it
func (h *MpesaHandler) SetMetrics(metrics *telemetry.PosMetrics) {
	h.metrics = metrics
}

// RegisterRoutes registers authenticated M-Pesa routes on the given group
func (h *MpesaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mp := rg.Group("/payments/mpesa")
	{
		mp.POST("/stk-push", h.InitiateStkPush)
		mp.GET("/transactions/:id", h.GetTransaction)
	}
	rg.GET("/sales/:id/mpesa-transactions", h.ListForSale)
}

// RegisterCallbackRoutes registers the gateway-facing callback endpoint.
// It must sit outside JWT auth; Safaricom cannot carry our tokens.
func (h *MpesaHandler) RegisterCallbackRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/mpesa/callback", h.HandleCallback)
}

// InitiateStkPush starts a payment prompt on the customer's phone
func (h *MpesaHandler) InitiateStkPush(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req payapp.InitiateStkPushRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.TenantID = tenantID

	tx, err := h.mpesaService.InitiateStkPush(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// GetTransaction returns one STK push attempt
func (h *MpesaHandler) GetTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}
	txID, _ := uuid.Parse(uri.ID)

	tx, err := h.mpesaService.GetTransaction(c.Request.Context(), tenantID, txID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// ListForSale returns every STK push attempted against a sale
func (h *MpesaHandler) ListForSale(c *gin.Context) {
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

	txs, err := h.mpesaService.ListForSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txs)
}

// HandleCallback applies one Daraja STK callback. Handled outcomes are
// acknowledged with ResultCode 0 so the gateway stops retrying; a processing
// failure returns 500 so it retries, which is safe because replays are
// no-ops.
func (h *MpesaHandler) HandleCallback(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	var envelope payapp.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		log.Warn("Rejected malformed gateway callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"ResultCode": "1",
			"ResultDesc": "Invalid callback payload",
		})
		return
	}

	result := envelope.ToResult()
	if err := h.mpesaService.HandleCallback(c.Request.Context(), result); err != nil {
		log.Error("Gateway callback processing failed",
			zap.String("checkout_request_id", result.CheckoutRequestID),
			zap.Error(err),
		)
		h.metrics.RecordPaymentCallback(c.Request.Context(), "error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ResultCode": "1",
			"ResultDesc": "Processing failed",
		})
		return
	}

	status := "success"
	if result.ResultCode != 0 {
		status = "failed"
	}
	h.metrics.RecordPaymentCallback(c.Request.Context(), status)
	// Daraja's delivery contract wants the result code as a string
	c.JSON(http.StatusOK, gin.H{
		"ResultCode": "0",
		"ResultDesc": "Accepted",
	})
}
