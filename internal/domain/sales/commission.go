package sales

import (
	"github.com/afyapos/backend/internal/domain/shared"
	"github.com/afyapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the fallback cashier commission rate
var DefaultCommissionRate = decimal.NewFromFloat(0.15)

// CommissionPolicy computes the cashier commission earned on a sale.
// Unit costs are keyed by batch ID; the caller resolves them from the
// inventory batches the sale drew from.
type CommissionPolicy interface {
	Commission(sale *Sale, unitCosts map[uuid.UUID]decimal.Decimal) (valueobject.Money, error)
}

// PercentOfProfitPolicy pays a flat percentage of the sale's gross profit.
// Profit is taken on the pre-tax line totals, net of per-line discounts
// and soft-deleted lines. A loss-making sale earns zero commission.
type PercentOfProfitPolicy struct {
	rate decimal.Decimal
}

// NewPercentOfProfitPolicy creates a policy at the given rate, expressed
// as a fraction (0.15 for 15%)
func NewPercentOfProfitPolicy(rate decimal.Decimal) (*PercentOfProfitPolicy, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 1")
	}
	return &PercentOfProfitPolicy{rate: rate}, nil
}

// Rate returns the configured commission fraction
func (p *PercentOfProfitPolicy) Rate() decimal.Decimal {
	return p.rate
}

// Commission implements CommissionPolicy
func (p *PercentOfProfitPolicy) Commission(sale *Sale, unitCosts map[uuid.UUID]decimal.Decimal) (valueobject.Money, error) {
	if sale.Status != SaleStatusCompleted && sale.Status != SaleStatusRefunded {
		return valueobject.Money{}, shared.NewDomainError("INVALID_STATE", "Commission applies to completed sales only")
	}

	profit := decimal.Zero
	for idx := range sale.Lines {
		line := &sale.Lines[idx]
		if line.IsDeleted {
			continue
		}
		unitCost, ok := unitCosts[line.BatchID]
		if !ok {
			return valueobject.Money{}, shared.NewDomainError("MISSING_UNIT_COST",
				"No unit cost provided for batch "+line.BatchID.String())
		}
		revenue := line.LineTotal
		if sale.TaxInclusive && sale.TaxRate.IsPositive() {
			// Inclusive pricing carries VAT inside the line total; strip it
			// so the cost comparison is like for like
			revenue = revenue.Div(decimal.NewFromInt(1).Add(sale.TaxRate)).Round(2)
		}
		cost := unitCost.Mul(decimal.NewFromInt(line.Quantity))
		profit = profit.Add(revenue.Sub(cost))
	}

	if !profit.IsPositive() {
		return valueobject.ZeroKES(), nil
	}
	return valueobject.NewMoneyKES(profit.Mul(p.rate).Round(2)), nil
}

var _ CommissionPolicy = (*PercentOfProfitPolicy)(nil)
