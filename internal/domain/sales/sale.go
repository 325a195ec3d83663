package sales

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
	SaleStatusSuspended SaleStatus = "SUSPENDED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled, SaleStatusSuspended, SaleStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return target == SaleStatusCompleted || target == SaleStatusCancelled || target == SaleStatusSuspended
	case SaleStatusSuspended:
		return target == SaleStatusCompleted || target == SaleStatusCancelled
	case SaleStatusCompleted:
		return target == SaleStatusCancelled || target == SaleStatusRefunded
	case SaleStatusCancelled, SaleStatusRefunded:
		return false // Terminal states
	}
	return false
}

// ReturnStatus tracks how much of a sale has been returned
type ReturnStatus string

const (
	ReturnStatusNone    ReturnStatus = "NONE"
	ReturnStatusPartial ReturnStatus = "PARTIAL"
	ReturnStatusFull    ReturnStatus = "FULL"
)

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a sale payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodMpesa        PaymentMethod = "MPESA"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the settlement state of one sale payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// TaxSettings carries the tenant VAT configuration applied to a sale.
// When Inclusive is true, quoted prices already contain VAT and the tax
// amount is carved out of the total rather than added on top.
type TaxSettings struct {
	Rate      decimal.Decimal
	Inclusive bool
}

// NoTax returns tax settings with a zero rate
func NoTax() TaxSettings {
	return TaxSettings{Rate: decimal.Zero}
}

// SaleLineItem represents one product line on a sale
type SaleLineItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(255);not null"`
	BatchID          uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity         int64           `gorm:"not null"`
	ReturnedQuantity int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsDeleted        bool            `gorm:"not null;default:false"` // Soft removal via approved edit
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (SaleLineItem) TableName() string {
	return "sale_line_items"
}

// NewSaleLineItem creates a new sale line item
func NewSaleLineItem(saleID, productID uuid.UUID, productName string, batchID uuid.UUID, quantity int64, unitPrice, discount valueobject.Money) (*SaleLineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}

	now := time.Now()
	item := &SaleLineItem{
		ID:             uuid.New(),
		SaleID:         saleID,
		ProductID:      productID,
		ProductName:    productName,
		BatchID:        batchID,
		Quantity:       quantity,
		UnitPrice:      unitPrice.Amount(),
		DiscountAmount: discount.Amount(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	item.recalculate()

	if item.LineTotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot exceed line amount")
	}

	return item, nil
}

// recalculate recomputes the line total from quantity, price and discount
func (i *SaleLineItem) recalculate() {
	gross := i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
	i.LineTotal = gross.Sub(i.DiscountAmount)
}

// UpdateUnitPrice updates the unit price and recomputes the line total
func (i *SaleLineItem) UpdateUnitPrice(unitPrice valueobject.Money) error {
	if !unitPrice.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	i.UnitPrice = unitPrice.Amount()
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// ReturnableQuantity returns how many units can still be returned on this line
func (i *SaleLineItem) ReturnableQuantity() int64 {
	return i.Quantity - i.ReturnedQuantity
}

// RecordReturn adds to the running returned-quantity watermark.
// Cumulative returns may never exceed the original quantity.
func (i *SaleLineItem) RecordReturn(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if quantity > i.ReturnableQuantity() {
		return shared.NewDomainError("RETURN_EXCEEDS_QUANTITY",
			fmt.Sprintf("Cannot return %d units, only %d returnable", quantity, i.ReturnableQuantity()))
	}
	i.ReturnedQuantity += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// SalePayment represents one payment instrument allocated against a sale
type SalePayment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reference string          `gorm:"type:varchar(100)"` // Receipt / checkout request reference
	Status    PaymentStatus   `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SalePayment) TableName() string {
	return "sale_payments"
}

// NewSalePayment creates a new sale payment. M-Pesa payments start PENDING
// until the gateway callback confirms them; all other methods settle
// immediately.
func NewSalePayment(saleID uuid.UUID, method PaymentMethod, amount valueobject.Money, reference string) (*SalePayment, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	status := PaymentStatusCompleted
	if method == PaymentMethodMpesa {
		status = PaymentStatusPending
	}

	now := time.Now()
	return &SalePayment{
		ID:        uuid.New(),
		SaleID:    saleID,
		Method:    method,
		Amount:    amount.Amount(),
		Reference: reference,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Sale represents one point-of-sale transaction aggregate root.
// It owns its line items and payments; totals are always derived, never
// set directly.
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_tenant_number"`
	BranchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid"`
	CustomerName   string          `gorm:"type:varchar(255)"` // Walk-in customers have no CustomerID
	CustomerPhone  string          `gorm:"type:varchar(20)"`
	Lines          []SaleLineItem  `gorm:"foreignKey:SaleID"`
	Payments       []SalePayment   `gorm:"foreignKey:SaleID"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"` // Snapshot of tenant VAT at sale time
	TaxInclusive   bool            `gorm:"not null;default:false"`
	Status         SaleStatus      `gorm:"type:varchar(20);not null;index"`
	ReturnStatus   ReturnStatus    `gorm:"type:varchar(20);not null"`
	IsCreditSale   bool            `gorm:"not null;default:false"`
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale in PENDING status
func NewSale(tenantID uuid.UUID, saleNumber string, branchID, cashierID uuid.UUID, customerID *uuid.UUID, customerName, customerPhone string, isCreditSale bool, tax TaxSettings) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if len(saleNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot exceed 50 characters")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if tax.Rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if isCreditSale && customerID == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Credit sales require a registered customer")
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleNumber:          saleNumber,
		BranchID:            branchID,
		CashierID:           cashierID,
		CustomerID:          customerID,
		CustomerName:        customerName,
		CustomerPhone:       customerPhone,
		Lines:               make([]SaleLineItem, 0),
		Payments:            make([]SalePayment, 0),
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		TaxRate:             tax.Rate,
		TaxInclusive:        tax.Inclusive,
		Status:              SaleStatusPending,
		ReturnStatus:        ReturnStatusNone,
		IsCreditSale:        isCreditSale,
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// AddLine adds a line item to the sale. Only allowed while PENDING.
func (s *Sale) AddLine(productID uuid.UUID, productName string, batchID uuid.UUID, quantity int64, unitPrice, discount valueobject.Money) (*SaleLineItem, error) {
	if s.Status != SaleStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-pending sale")
	}

	item, err := NewSaleLineItem(s.ID, productID, productName, batchID, quantity, unitPrice, discount)
	if err != nil {
		return nil, err
	}

	s.Lines = append(s.Lines, *item)
	s.RecalculateTotals()
	s.UpdatedAt = time.Now()

	return item, nil
}

// AddPayment allocates a payment against the sale. Only allowed while PENDING.
func (s *Sale) AddPayment(method PaymentMethod, amount valueobject.Money, reference string) (*SalePayment, error) {
	if s.Status != SaleStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add payments to a non-pending sale")
	}

	payment, err := NewSalePayment(s.ID, method, amount, reference)
	if err != nil {
		return nil, err
	}

	s.Payments = append(s.Payments, *payment)
	s.UpdatedAt = time.Now()

	return payment, nil
}

// ApplyDiscount applies a sale-level discount. Only allowed while PENDING.
func (s *Sale) ApplyDiscount(discount valueobject.Money) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-pending sale")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.Amount().GreaterThan(s.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	s.DiscountAmount = discount.Amount()
	s.RecalculateTotals()
	s.UpdatedAt = time.Now()

	return nil
}

// RecalculateTotals rederives subtotal, tax and total from the active lines.
// With exclusive pricing, tax is added on top of the discounted subtotal;
// with inclusive pricing, tax is carved out of the total for reporting and
// the total itself stays at the discounted subtotal.
func (s *Sale) RecalculateTotals() {
	subtotal := decimal.Zero
	for idx := range s.Lines {
		if s.Lines[idx].IsDeleted {
			continue
		}
		subtotal = subtotal.Add(s.Lines[idx].LineTotal)
	}
	s.Subtotal = subtotal

	base := subtotal.Sub(s.DiscountAmount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	if s.TaxRate.IsZero() {
		s.TaxAmount = decimal.Zero
		s.TotalAmount = base.Round(2)
		return
	}

	if s.TaxInclusive {
		total := base.Round(2)
		divisor := decimal.NewFromInt(1).Add(s.TaxRate)
		s.TaxAmount = total.Sub(total.Div(divisor).Round(2))
		s.TotalAmount = total
		return
	}

	s.TaxAmount = base.Mul(s.TaxRate).Round(2)
	s.TotalAmount = base.Add(s.TaxAmount).Round(2)
}

// PaymentsTotal returns the sum of all non-failed payment amounts
func (s *Sale) PaymentsTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range s.Payments {
		if s.Payments[idx].Status == PaymentStatusFailed {
			continue
		}
		total = total.Add(s.Payments[idx].Amount)
	}
	return total
}

// CreditShortfall returns the part of the total not covered by payments.
// Negative shortfalls are reported as zero.
func (s *Sale) CreditShortfall() decimal.Decimal {
	shortfall := s.TotalAmount.Sub(s.PaymentsTotal())
	if shortfall.IsNegative() {
		return decimal.Zero
	}
	return shortfall
}

// ValidatePayments checks the payment allocation against the sale total.
// Non-credit sales require payments summing exactly to the total at
// currency precision; credit sales allow a shortfall but never an excess.
func (s *Sale) ValidatePayments() error {
	if len(s.Lines) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Sale must have at least one line item")
	}

	paid := s.PaymentsTotal().Round(2)
	total := s.TotalAmount.Round(2)

	if s.IsCreditSale {
		if paid.GreaterThan(total) {
			return shared.NewDomainError("PAYMENT_MISMATCH", "Payments cannot exceed sale total")
		}
		return nil
	}

	if len(s.Payments) == 0 {
		return shared.NewDomainError("NO_PAYMENTS", "Non-credit sales require at least one payment")
	}
	if !paid.Equal(total) {
		return shared.NewDomainError("PAYMENT_MISMATCH",
			fmt.Sprintf("Payments %s do not match sale total %s", paid.StringFixed(2), total.StringFixed(2)))
	}
	return nil
}

// Complete transitions the sale to COMPLETED after payment validation
func (s *Sale) Complete() error {
	if !s.Status.CanTransitionTo(SaleStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete sale in %s status", s.Status))
	}
	if err := s.ValidatePayments(); err != nil {
		return err
	}

	now := time.Now()
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCompletedEvent(s))

	return nil
}

// Suspend parks a pending sale for later resumption
func (s *Sale) Suspend() error {
	if !s.Status.CanTransitionTo(SaleStatusSuspended) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot suspend sale in %s status", s.Status))
	}
	s.Status = SaleStatusSuspended
	s.UpdatedAt = time.Now()
	return nil
}

// Resume moves a suspended sale back to PENDING so it can be amended
func (s *Sale) Resume() error {
	if s.Status != SaleStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resume sale in %s status", s.Status))
	}
	s.Status = SaleStatusPending
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels the sale. Cancelling a COMPLETED sale requires the caller
// to issue compensating inventory adjustments; the aggregate only records
// the transition.
func (s *Sale) Cancel(reason string) error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel sale in %s status", s.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasCompleted := s.Status == SaleStatusCompleted
	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCancelledEvent(s, wasCompleted))

	return nil
}

// MarkRefunded marks a completed sale as fully refunded
func (s *Sale) MarkRefunded() error {
	if !s.Status.CanTransitionTo(SaleStatusRefunded) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund sale in %s status", s.Status))
	}
	s.Status = SaleStatusRefunded
	s.UpdatedAt = time.Now()
	return nil
}

// GetLine returns a line item by its ID, including soft-deleted lines
func (s *Sale) GetLine(lineID uuid.UUID) *SaleLineItem {
	for idx := range s.Lines {
		if s.Lines[idx].ID == lineID {
			return &s.Lines[idx]
		}
	}
	return nil
}

// ActiveLines returns the lines not removed by an approved edit
func (s *Sale) ActiveLines() []SaleLineItem {
	active := make([]SaleLineItem, 0, len(s.Lines))
	for idx := range s.Lines {
		if !s.Lines[idx].IsDeleted {
			active = append(active, s.Lines[idx])
		}
	}
	return active
}

// ChangeLinePrice updates a line's unit price and rederives totals.
// Invoked only through an approved edit request.
func (s *Sale) ChangeLinePrice(lineID uuid.UUID, newPrice valueobject.Money) error {
	line := s.GetLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot reprice a removed line")
	}
	if err := line.UpdateUnitPrice(newPrice); err != nil {
		return err
	}

	s.RecalculateTotals()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// RemoveLine soft-deletes a line and rederives totals. The row is kept for
// audit retrievability. Invoked only through an approved edit request.
func (s *Sale) RemoveLine(lineID uuid.UUID) error {
	line := s.GetLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "Line is already removed")
	}
	if line.ReturnedQuantity > 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove a line with recorded returns")
	}

	line.IsDeleted = true
	line.UpdatedAt = time.Now()
	s.RecalculateTotals()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// RecordLineReturn applies a returned quantity to a line and recomputes
// the sale-level return status
func (s *Sale) RecordLineReturn(lineID uuid.UUID, quantity int64) error {
	if s.Status != SaleStatusCompleted && s.Status != SaleStatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Only completed sales accept returns")
	}
	line := s.GetLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot return a removed line")
	}
	if err := line.RecordReturn(quantity); err != nil {
		return err
	}

	s.RecomputeReturnStatus()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// RecomputeReturnStatus rederives the return status from the active lines:
// NONE when nothing is returned, FULL when every line is fully returned,
// PARTIAL otherwise
func (s *Sale) RecomputeReturnStatus() {
	anyReturned := false
	allReturned := true
	for idx := range s.Lines {
		if s.Lines[idx].IsDeleted {
			continue
		}
		if s.Lines[idx].ReturnedQuantity > 0 {
			anyReturned = true
		}
		if s.Lines[idx].ReturnedQuantity < s.Lines[idx].Quantity {
			allReturned = false
		}
	}

	switch {
	case !anyReturned:
		s.ReturnStatus = ReturnStatusNone
	case allReturned:
		s.ReturnStatus = ReturnStatusFull
	default:
		s.ReturnStatus = ReturnStatusPartial
	}
}

// AssignMpesaReference stamps the gateway checkout request ID on the first
// pending M-Pesa payment that has no reference yet
func (s *Sale) AssignMpesaReference(reference string) error {
	if reference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot be empty")
	}
	for idx := range s.Payments {
		p := &s.Payments[idx]
		if p.Method != PaymentMethodMpesa || p.Status != PaymentStatusPending || p.Reference != "" {
			continue
		}
		p.Reference = reference
		p.UpdatedAt = time.Now()
		s.UpdatedAt = time.Now()
		return nil
	}
	return shared.NewDomainError("PAYMENT_NOT_FOUND", "No unreferenced pending M-Pesa payment on sale")
}

// ConfirmMpesaPayment marks the pending M-Pesa payment matching the given
// reference as completed and stamps the gateway receipt on it
func (s *Sale) ConfirmMpesaPayment(reference, receiptNumber string) error {
	for idx := range s.Payments {
		p := &s.Payments[idx]
		if p.Method != PaymentMethodMpesa || p.Reference != reference {
			continue
		}
		if p.Status == PaymentStatusCompleted {
			return nil // Already confirmed, callback retry
		}
		p.Status = PaymentStatusCompleted
		if receiptNumber != "" {
			p.Reference = receiptNumber
		}
		p.UpdatedAt = time.Now()
		s.UpdatedAt = time.Now()
		return nil
	}
	return shared.NewDomainError("PAYMENT_NOT_FOUND", "No matching M-Pesa payment on sale")
}

// FailMpesaPayment marks the pending M-Pesa payment matching the reference
// as failed, leaving the sale open for an alternative payment
func (s *Sale) FailMpesaPayment(reference string) error {
	for idx := range s.Payments {
		p := &s.Payments[idx]
		if p.Method != PaymentMethodMpesa || p.Reference != reference {
			continue
		}
		if p.Status == PaymentStatusCompleted {
			return shared.NewDomainError("INVALID_STATE", "Cannot fail an already completed payment")
		}
		p.Status = PaymentStatusFailed
		p.UpdatedAt = time.Now()
		s.UpdatedAt = time.Now()
		return nil
	}
	return shared.NewDomainError("PAYMENT_NOT_FOUND", "No matching M-Pesa payment on sale")
}

// IsCompleted returns true if the sale is completed
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// IsTerminal returns true if the sale is cancelled or refunded
func (s *Sale) IsTerminal() bool {
	return s.Status == SaleStatusCancelled || s.Status == SaleStatusRefunded
}
