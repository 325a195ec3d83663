package sales

import (
	"fmt"
	"time"

	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EditRequestType represents the kind of amendment requested on a sale
type EditRequestType string

const (
	EditRequestTypePriceChange EditRequestType = "PRICE_CHANGE"
	EditRequestTypeLineDelete  EditRequestType = "LINE_DELETE"
)

// IsValid checks if the request type is valid
func (t EditRequestType) IsValid() bool {
	switch t {
	case EditRequestTypePriceChange, EditRequestTypeLineDelete:
		return true
	}
	return false
}

// String returns the string representation of EditRequestType
func (t EditRequestType) String() string {
	return string(t)
}

// EditRequestStatus represents the decision state of an edit request
type EditRequestStatus string

const (
	EditRequestStatusPending  EditRequestStatus = "PENDING"
	EditRequestStatusApproved EditRequestStatus = "APPROVED"
	EditRequestStatusRejected EditRequestStatus = "REJECTED"
)

// IsValid checks if the status is valid
func (s EditRequestStatus) IsValid() bool {
	switch s {
	case EditRequestStatusPending, EditRequestStatusApproved, EditRequestStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of EditRequestStatus
func (s EditRequestStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s EditRequestStatus) CanTransitionTo(target EditRequestStatus) bool {
	switch s {
	case EditRequestStatusPending:
		return target == EditRequestStatusApproved || target == EditRequestStatusRejected
	case EditRequestStatusApproved, EditRequestStatusRejected:
		return false // Terminal states
	}
	return false
}

// SaleEditRequest is a maker-checker amendment on a completed sale. One
// party requests the change, a different party approves or rejects it;
// only approval mutates the sale.
type SaleEditRequest struct {
	shared.TenantAggregateRoot
	SaleID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	LineItemID      uuid.UUID         `gorm:"type:uuid;not null"`
	RequestType     EditRequestType   `gorm:"type:varchar(20);not null"`
	NewUnitPrice    *decimal.Decimal  `gorm:"type:decimal(18,2)"` // PRICE_CHANGE only
	Reason          string            `gorm:"type:varchar(255);not null"`
	Status          EditRequestStatus `gorm:"type:varchar(20);not null"`
	RequestedBy     uuid.UUID         `gorm:"type:uuid;not null"`
	DecidedBy       *uuid.UUID        `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectionReason string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (SaleEditRequest) TableName() string {
	return "sale_edit_requests"
}

// NewPriceChangeRequest creates a pending price-change request for a sale line
func NewPriceChangeRequest(tenantID, saleID, lineItemID uuid.UUID, newUnitPrice valueobject.Money, reason string, requestedBy uuid.UUID) (*SaleEditRequest, error) {
	if !newUnitPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "New unit price must be positive")
	}
	req, err := newEditRequest(tenantID, saleID, lineItemID, EditRequestTypePriceChange, reason, requestedBy)
	if err != nil {
		return nil, err
	}
	price := newUnitPrice.Amount()
	req.NewUnitPrice = &price
	return req, nil
}

// NewLineDeleteRequest creates a pending line-removal request for a sale line
func NewLineDeleteRequest(tenantID, saleID, lineItemID uuid.UUID, reason string, requestedBy uuid.UUID) (*SaleEditRequest, error) {
	return newEditRequest(tenantID, saleID, lineItemID, EditRequestTypeLineDelete, reason, requestedBy)
}

func newEditRequest(tenantID, saleID, lineItemID uuid.UUID, requestType EditRequestType, reason string, requestedBy uuid.UUID) (*SaleEditRequest, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if lineItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINE", "Line item ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Edit reason is required")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester is required")
	}

	req := &SaleEditRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleID:              saleID,
		LineItemID:          lineItemID,
		RequestType:         requestType,
		Reason:              reason,
		Status:              EditRequestStatusPending,
		RequestedBy:         requestedBy,
	}

	req.AddDomainEvent(NewSaleEditRequestedEvent(req))

	return req, nil
}

// Approve marks the request approved. The approver must differ from the
// requester; applying the mutation to the sale is the caller's job, inside
// the same unit of work.
func (r *SaleEditRequest) Approve(approvedBy uuid.UUID) error {
	if !r.Status.CanTransitionTo(EditRequestStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve request in %s status", r.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}
	if approvedBy == r.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL", "Requester cannot approve their own edit")
	}

	now := time.Now()
	r.Status = EditRequestStatusApproved
	r.DecidedBy = &approvedBy
	r.DecidedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewSaleEditDecidedEvent(r))

	return nil
}

// Reject marks the request rejected, leaving the sale untouched
func (r *SaleEditRequest) Reject(rejectedBy uuid.UUID, rejectionReason string) error {
	if !r.Status.CanTransitionTo(EditRequestStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject request in %s status", r.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}
	if rejectedBy == r.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL", "Requester cannot reject their own edit")
	}
	if rejectionReason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	r.Status = EditRequestStatusRejected
	r.DecidedBy = &rejectedBy
	r.DecidedAt = &now
	r.RejectionReason = rejectionReason
	r.UpdatedAt = now

	r.AddDomainEvent(NewSaleEditDecidedEvent(r))

	return nil
}

// ApplyTo applies an approved request's mutation to the sale and recomputes
// its totals
func (r *SaleEditRequest) ApplyTo(sale *Sale) error {
	if r.Status != EditRequestStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved requests can be applied")
	}
	if sale.ID != r.SaleID {
		return shared.NewDomainError("INVALID_SALE", "Request does not target this sale")
	}

	switch r.RequestType {
	case EditRequestTypePriceChange:
		if r.NewUnitPrice == nil {
			return shared.NewDomainError("INVALID_PRICE", "Price change request has no new price")
		}
		return sale.ChangeLinePrice(r.LineItemID, valueobject.NewMoneyKES(*r.NewUnitPrice))
	case EditRequestTypeLineDelete:
		return sale.RemoveLine(r.LineItemID)
	}
	return shared.NewDomainError("INVALID_REQUEST_TYPE", "Unknown edit request type")
}

// IsDecided returns true once the request is approved or rejected
func (r *SaleEditRequest) IsDecided() bool {
	return r.Status != EditRequestStatusPending
}
