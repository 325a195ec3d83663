package sales

import (
	"context"

	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionResponse reports the commission a cashier earned on one sale
type CommissionResponse struct {
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	CashierID  uuid.UUID       `json:"cashier_id"`
	Profit     decimal.Decimal `json:"profit"`
	Commission decimal.Decimal `json:"commission"`
}

// CommissionService computes cashier commission for completed sales. The
// policy is pluggable; the default pays a percentage of gross profit, with
// unit costs resolved from the batches each line was sold from.
type CommissionService struct {
	scope  TransactionScope
	policy sales.CommissionPolicy
}

// NewCommissionService creates a CommissionService. A nil policy falls back
// to percent-of-profit at the default rate.
func NewCommissionService(scope TransactionScope, policy sales.CommissionPolicy) *CommissionService {
	if policy == nil {
		policy, _ = sales.NewPercentOfProfitPolicy(sales.DefaultCommissionRate)
	}
	return &CommissionService{scope: scope, policy: policy}
}

// ForSale computes the commission earned on one completed sale
func (s *CommissionService) ForSale(ctx context.Context, tenantID, saleID uuid.UUID) (*CommissionResponse, error) {
	var resp *CommissionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}

		unitCosts := make(map[uuid.UUID]decimal.Decimal)
		for idx := range sale.Lines {
			line := &sale.Lines[idx]
			if line.IsDeleted {
				continue
			}
			if _, ok := unitCosts[line.BatchID]; ok {
				continue
			}
			batch, err := repos.Batches().FindByIDForTenant(ctx, tenantID, line.BatchID)
			if err != nil {
				return err
			}
			unitCosts[line.BatchID] = batch.UnitCost
		}

		commission, err := s.policy.Commission(sale, unitCosts)
		if err != nil {
			return err
		}

		profit := decimal.Zero
		if !commission.IsZero() {
			profit = saleProfit(sale, unitCosts)
		}
		resp = &CommissionResponse{
			SaleID:     sale.ID,
			SaleNumber: sale.SaleNumber,
			CashierID:  sale.CashierID,
			Profit:     profit,
			Commission: commission.Amount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// saleProfit mirrors the default policy's profit basis for reporting
func saleProfit(sale *sales.Sale, unitCosts map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	profit := decimal.Zero
	for idx := range sale.Lines {
		line := &sale.Lines[idx]
		if line.IsDeleted {
			continue
		}
		revenue := line.LineTotal
		if sale.TaxInclusive && sale.TaxRate.IsPositive() {
			revenue = revenue.Div(decimal.NewFromInt(1).Add(sale.TaxRate)).Round(2)
		}
		profit = profit.Add(revenue.Sub(unitCosts[line.BatchID].Mul(decimal.NewFromInt(line.Quantity))))
	}
	return profit
}
