package sales

import (
	"time"

	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineRequest is one product line on a sale creation request
type SaleLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required"`
	BatchID     uuid.UUID       `json:"batch_id" binding:"required"`
	Quantity    int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	Discount    decimal.Decimal `json:"discount"`
}

// SalePaymentRequest is one payment instrument on a sale creation request
type SalePaymentRequest struct {
	Method    sales.PaymentMethod `json:"method" binding:"required"`
	Amount    decimal.Decimal     `json:"amount" binding:"required"`
	Reference string              `json:"reference"`
}

// CreateSaleRequest is the input for creating a sale. Unless Suspend is set
// the sale is completed immediately, deducting inventory and opening a
// credit account for any unpaid balance on credit sales.
type CreateSaleRequest struct {
	TenantID            uuid.UUID
	BranchID            uuid.UUID            `json:"branch_id" binding:"required"`
	CashierID           uuid.UUID            `json:"-"`
	CustomerID          *uuid.UUID           `json:"customer_id"`
	CustomerName        string               `json:"customer_name"`
	CustomerPhone       string               `json:"customer_phone"`
	IsCreditSale        bool                 `json:"is_credit_sale"`
	ExpectedPaymentDate *time.Time           `json:"expected_payment_date"` // Credit sales only
	Discount            decimal.Decimal      `json:"discount"`
	Suspend             bool                 `json:"suspend"` // Park the sale instead of completing it
	Lines               []SaleLineRequest    `json:"lines" binding:"required,min=1,dive"`
	Payments            []SalePaymentRequest `json:"payments" binding:"dive"`
}

// CompleteSaleRequest finishes a previously suspended sale
type CompleteSaleRequest struct {
	TenantID    uuid.UUID
	SaleID      uuid.UUID            `json:"-"`
	PerformedBy uuid.UUID            `json:"-"`
	Payments    []SalePaymentRequest `json:"payments" binding:"dive"`
}

// CancelSaleRequest cancels a pending, suspended or completed sale
type CancelSaleRequest struct {
	TenantID    uuid.UUID
	SaleID      uuid.UUID `json:"-"`
	Reason      string    `json:"reason" binding:"required"`
	PerformedBy uuid.UUID `json:"-"`
}

// SaleLineResponse is the read model for one sale line
type SaleLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	BatchID          uuid.UUID       `json:"batch_id"`
	Quantity         int64           `json:"quantity"`
	ReturnedQuantity int64           `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	IsDeleted        bool            `json:"is_deleted"`
}

// SalePaymentResponse is the read model for one sale payment
type SalePaymentResponse struct {
	ID        uuid.UUID           `json:"id"`
	Method    sales.PaymentMethod `json:"method"`
	Amount    decimal.Decimal     `json:"amount"`
	Reference string              `json:"reference,omitempty"`
	Status    sales.PaymentStatus `json:"status"`
}

// SaleResponse is the read model for one sale
type SaleResponse struct {
	ID             uuid.UUID             `json:"id"`
	SaleNumber     string                `json:"sale_number"`
	BranchID       uuid.UUID             `json:"branch_id"`
	CashierID      uuid.UUID             `json:"cashier_id"`
	CustomerID     *uuid.UUID            `json:"customer_id,omitempty"`
	CustomerName   string                `json:"customer_name,omitempty"`
	CustomerPhone  string                `json:"customer_phone,omitempty"`
	Lines          []SaleLineResponse    `json:"lines"`
	Payments       []SalePaymentResponse `json:"payments"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	TaxRate        decimal.Decimal       `json:"tax_rate"`
	TaxInclusive   bool                  `json:"tax_inclusive"`
	Status         sales.SaleStatus      `json:"status"`
	ReturnStatus   sales.ReturnStatus    `json:"return_status"`
	IsCreditSale   bool                  `json:"is_credit_sale"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ToSaleResponse converts a sale aggregate to its read model
func ToSaleResponse(s *sales.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(s.Lines))
	for idx := range s.Lines {
		l := &s.Lines[idx]
		lines = append(lines, SaleLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			BatchID:          l.BatchID,
			Quantity:         l.Quantity,
			ReturnedQuantity: l.ReturnedQuantity,
			UnitPrice:        l.UnitPrice,
			DiscountAmount:   l.DiscountAmount,
			LineTotal:        l.LineTotal,
			IsDeleted:        l.IsDeleted,
		})
	}

	payments := make([]SalePaymentResponse, 0, len(s.Payments))
	for idx := range s.Payments {
		p := &s.Payments[idx]
		payments = append(payments, SalePaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Status:    p.Status,
		})
	}

	return SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		BranchID:       s.BranchID,
		CashierID:      s.CashierID,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		Lines:          lines,
		Payments:       payments,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		TotalAmount:    s.TotalAmount,
		TaxRate:        s.TaxRate,
		TaxInclusive:   s.TaxInclusive,
		Status:         s.Status,
		ReturnStatus:   s.ReturnStatus,
		IsCreditSale:   s.IsCreditSale,
		CompletedAt:    s.CompletedAt,
		CancelledAt:    s.CancelledAt,
		CancelReason:   s.CancelReason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ReturnLineRequest is one line on a return creation request
type ReturnLineRequest struct {
	SaleLineItemID     uuid.UUID `json:"sale_line_item_id" binding:"required"`
	Quantity           int64     `json:"quantity" binding:"required,min=1"`
	RestoreToInventory bool      `json:"restore_to_inventory"`
}

// CreateReturnRequest opens a return document against a completed sale
type CreateReturnRequest struct {
	TenantID    uuid.UUID
	SaleID      uuid.UUID           `json:"sale_id" binding:"required"`
	Reason      string              `json:"reason" binding:"required"`
	Lines       []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
	RequestedBy uuid.UUID           `json:"-"`
}

// ReturnLineResponse is the read model for one return line
type ReturnLineResponse struct {
	ID                 uuid.UUID       `json:"id"`
	SaleLineItemID     uuid.UUID       `json:"sale_line_item_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	BatchID            uuid.UUID       `json:"batch_id"`
	QuantityReturned   int64           `json:"quantity_returned"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`
	RestoreToInventory bool            `json:"restore_to_inventory"`
}

// ReturnResponse is the read model for one return document
type ReturnResponse struct {
	ID                uuid.UUID              `json:"id"`
	ReturnNumber      string                 `json:"return_number"`
	OriginalSaleID    uuid.UUID              `json:"original_sale_id"`
	BranchID          uuid.UUID              `json:"branch_id"`
	ReturnReason      string                 `json:"return_reason"`
	Lines             []ReturnLineResponse   `json:"lines"`
	TotalRefundAmount decimal.Decimal        `json:"total_refund_amount"`
	Status            sales.SaleReturnStatus `json:"status"`
	ProcessedBy       *uuid.UUID             `json:"processed_by,omitempty"`
	ProcessedAt       *time.Time             `json:"processed_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// ToReturnResponse converts a return aggregate to its read model
func ToReturnResponse(r *sales.SaleReturn) ReturnResponse {
	lines := make([]ReturnLineResponse, 0, len(r.Lines))
	for idx := range r.Lines {
		l := &r.Lines[idx]
		lines = append(lines, ReturnLineResponse{
			ID:                 l.ID,
			SaleLineItemID:     l.SaleLineItemID,
			ProductID:          l.ProductID,
			BatchID:            l.BatchID,
			QuantityReturned:   l.QuantityReturned,
			UnitPrice:          l.UnitPrice,
			RefundAmount:       l.RefundAmount,
			RestoreToInventory: l.RestoreToInventory,
		})
	}

	return ReturnResponse{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		OriginalSaleID:    r.OriginalSaleID,
		BranchID:          r.BranchID,
		ReturnReason:      r.ReturnReason,
		Lines:             lines,
		TotalRefundAmount: r.TotalRefundAmount,
		Status:            r.Status,
		ProcessedBy:       r.ProcessedBy,
		ProcessedAt:       r.ProcessedAt,
		CreatedAt:         r.CreatedAt,
	}
}

// PriceChangeRequest asks a checker to approve a line reprice on a completed sale
type PriceChangeRequest struct {
	TenantID     uuid.UUID
	SaleID       uuid.UUID       `json:"sale_id" binding:"required"`
	LineItemID   uuid.UUID       `json:"line_item_id" binding:"required"`
	NewUnitPrice decimal.Decimal `json:"new_unit_price" binding:"required"`
	Reason       string          `json:"reason" binding:"required"`
	RequestedBy  uuid.UUID       `json:"-"`
}

// LineDeleteRequest asks a checker to approve a line removal on a completed sale
type LineDeleteRequest struct {
	TenantID    uuid.UUID
	SaleID      uuid.UUID `json:"sale_id" binding:"required"`
	LineItemID  uuid.UUID `json:"line_item_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	RequestedBy uuid.UUID `json:"-"`
}

// EditRequestResponse is the read model for one edit request
type EditRequestResponse struct {
	ID              uuid.UUID               `json:"id"`
	SaleID          uuid.UUID               `json:"sale_id"`
	LineItemID      uuid.UUID               `json:"line_item_id"`
	RequestType     sales.EditRequestType   `json:"request_type"`
	NewUnitPrice    *decimal.Decimal        `json:"new_unit_price,omitempty"`
	Reason          string                  `json:"reason"`
	Status          sales.EditRequestStatus `json:"status"`
	RequestedBy     uuid.UUID               `json:"requested_by"`
	DecidedBy       *uuid.UUID              `json:"decided_by,omitempty"`
	DecidedAt       *time.Time              `json:"decided_at,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// ToEditRequestResponse converts an edit request to its read model
func ToEditRequestResponse(r *sales.SaleEditRequest) EditRequestResponse {
	return EditRequestResponse{
		ID:              r.ID,
		SaleID:          r.SaleID,
		LineItemID:      r.LineItemID,
		RequestType:     r.RequestType,
		NewUnitPrice:    r.NewUnitPrice,
		Reason:          r.Reason,
		Status:          r.Status,
		RequestedBy:     r.RequestedBy,
		DecidedBy:       r.DecidedBy,
		DecidedAt:       r.DecidedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
}
