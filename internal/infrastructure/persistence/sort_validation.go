package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Anything other than "desc" (case-insensitive) sorts ascending.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField validates a caller-supplied sort field against a
// whitelist of column names. User input is never concatenated into ORDER BY
// directly; anything outside the whitelist falls back to defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BatchSortFields contains allowed sort fields for inventory batches
var BatchSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"batch_number":  true,
	"expiry_date":   true,
	"quantity":      true,
	"unit_cost":     true,
	"selling_price": true,
	"is_active":     true,
}

// AuditLogSortFields contains allowed sort fields for audit log entries
var AuditLogSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"performed_at":     true,
	"transaction_type": true,
	"quantity_changed": true,
	"quantity_before":  true,
	"quantity_after":   true,
	"source_reference": true,
	"source_type":      true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sale_number":   true,
	"status":        true,
	"return_status": true,
	"subtotal":      true,
	"total_amount":  true,
	"customer_name": true,
	"branch_id":     true,
}

// EditRequestSortFields contains allowed sort fields for sale edit requests
var EditRequestSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"request_type": true,
	"status":       true,
}

// MpesaTransactionSortFields contains allowed sort fields for M-Pesa transactions
var MpesaTransactionSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"checkout_request_id": true,
	"phone_number":        true,
	"amount":              true,
	"status":              true,
}

// CreditAccountSortFields contains allowed sort fields for credit accounts
var CreditAccountSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"credit_number":         true,
	"status":                true,
	"total_amount":          true,
	"paid_amount":           true,
	"remaining_amount":      true,
	"expected_payment_date": true,
	"customer_id":           true,
}
