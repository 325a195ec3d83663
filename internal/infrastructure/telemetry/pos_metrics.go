package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are constructed without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// PosMetrics tracks point-of-sale business activity: completed sales,
// payment callbacks, stock adjustments and maker-checker decisions.
type PosMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	saleCompletedTotal   *Counter
	saleAmountTotal      *Counter
	paymentCallbackTotal *Counter
	stockAdjustedTotal   *Counter
	editDecisionTotal    *Counter
}

// NewPosMetrics creates a new PosMetrics instance.
func NewPosMetrics(meter metric.Meter, logger *zap.Logger) (*PosMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PosMetrics{meter: meter, logger: logger}

	var err error
	pm.saleCompletedTotal, err = NewCounter(meter,
		"pos_sale_completed_total", "Total number of completed sales", "{sales}")
	if err != nil {
		return nil, err
	}
	pm.saleAmountTotal, err = NewCounter(meter,
		"pos_sale_amount_total", "Total completed sale amount in cents", "{cents}")
	if err != nil {
		return nil, err
	}
	pm.paymentCallbackTotal, err = NewCounter(meter,
		"pos_payment_callback_total", "Total number of gateway callbacks processed", "{callbacks}")
	if err != nil {
		return nil, err
	}
	pm.stockAdjustedTotal, err = NewCounter(meter,
		"pos_stock_adjusted_total", "Total number of inventory ledger entries written", "{entries}")
	if err != nil {
		return nil, err
	}
	pm.editDecisionTotal, err = NewCounter(meter,
		"pos_edit_decision_total", "Total number of sale edit request decisions", "{decisions}")
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordSaleCompleted records a completed sale and its amount.
// Safe on a nil receiver so callers need no metrics-enabled branch.
func (m *PosMetrics) RecordSaleCompleted(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, paymentMethod string) {
	if m == nil {
		return
	}
	m.saleCompletedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(paymentMethod),
	)
	m.saleAmountTotal.Add(ctx,
		total.Mul(decimal.NewFromInt(100)).IntPart(),
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordPaymentCallback records a processed gateway callback by outcome
func (m *PosMetrics) RecordPaymentCallback(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.paymentCallbackTotal.Inc(ctx, AttrPaymentStatus.String(status))
}

// RecordStockAdjustment records one inventory ledger entry by action
func (m *PosMetrics) RecordStockAdjustment(ctx context.Context, tenantID uuid.UUID, action string) {
	if m == nil {
		return
	}
	m.stockAdjustedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAuditAction.String(action),
	)
}

// RecordEditDecision records a maker-checker decision (approved or rejected)
func (m *PosMetrics) RecordEditDecision(ctx context.Context, tenantID uuid.UUID, decision string) {
	if m == nil {
		return
	}
	m.editDecisionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSaleStatus.String(decision),
	)
}
