// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks sales, collections, cancellations and expenses.
// Counters are fed from domain events; gauges are collected periodically.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	saleCreatedTotal     *Counter
	saleAmountTotal      *Counter
	receiptApprovedTotal *Counter
	receiptAmountTotal   *Counter
	cancellationTotal    *Counter
	refundAmountTotal    *Counter
	expenseAmountTotal   *Counter
	installmentReminders *Counter
	outstandingDueAmount *Gauge
	plotCountByStatus    *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider supplies point-in-time figures for the gauges
type LedgerMetricsProvider interface {
	// OutstandingDue returns the total due amount of active sales
	OutstandingDue(ctx context.Context) (decimal.Decimal, error)

	// PlotCountByStatus returns the number of plots per status
	PlotCountByStatus(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	LedgerProvider LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.saleCreatedTotal, "landerp_sale_created_total", "Total number of sales created", "{sales}"},
		{&bm.saleAmountTotal, "landerp_sale_amount_total", "Total contracted sale price in cents", "{cents}"},
		{&bm.receiptApprovedTotal, "landerp_receipt_approved_total", "Total number of receipts approved", "{receipts}"},
		{&bm.receiptAmountTotal, "landerp_receipt_amount_total", "Total approved receipt amount in cents", "{cents}"},
		{&bm.cancellationTotal, "landerp_cancellation_total", "Total number of cancellation decisions", "{cancellations}"},
		{&bm.refundAmountTotal, "landerp_refund_amount_total", "Total refunded amount in cents", "{cents}"},
		{&bm.expenseAmountTotal, "landerp_expense_amount_total", "Total approved expense amount in cents", "{cents}"},
		{&bm.installmentReminders, "landerp_installment_reminder_total", "Total number of installment reminders sent", "{reminders}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.outstandingDueAmount, err = NewGauge(cfg.Meter,
		"landerp_outstanding_due_amount",
		"Total due amount of active sales in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}
	bm.plotCountByStatus, err = NewGauge(cfg.Meter,
		"landerp_plot_count",
		"Number of plots per status",
		"{plots}",
	)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

func cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCreated,
		finance.EventTypeReceiptApproved,
		sales.EventTypeCancellationApproved,
		sales.EventTypeCancellationRejected,
		sales.EventTypeRefundRecorded,
		finance.EventTypeExpenseApproved,
		sales.EventTypeInstallmentReminder,
	}
}

// Handle implements shared.EventHandler by counting the event
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.SaleCreatedEvent:
		bm.saleCreatedTotal.Inc(ctx)
		bm.saleAmountTotal.Add(ctx, cents(e.TotalPrice))
	case *finance.ReceiptApprovedEvent:
		bm.receiptApprovedTotal.Inc(ctx, AttrPaymentMethod.String(string(e.Method)))
		bm.receiptAmountTotal.Add(ctx, cents(e.Amount), AttrPaymentMethod.String(string(e.Method)))
	case *sales.CancellationApprovedEvent:
		bm.cancellationTotal.Inc(ctx, AttrDecision.String("approved"))
	case *sales.CancellationRejectedEvent:
		bm.cancellationTotal.Inc(ctx, AttrDecision.String("rejected"))
	case *sales.RefundRecordedEvent:
		bm.refundAmountTotal.Add(ctx, cents(e.Amount))
	case *finance.ExpenseApprovedEvent:
		bm.expenseAmountTotal.Add(ctx, cents(e.Amount))
	case *sales.InstallmentReminderEvent:
		bm.installmentReminders.Inc(ctx, AttrStage.String(string(e.Installment.Stage)))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectLedgerMetrics(ctx)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectLedgerMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectLedgerMetrics(ctx context.Context) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping gauge collection")
		return
	}

	due, err := bm.ledgerProvider.OutstandingDue(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding due amount", zap.Error(err))
	} else {
		bm.outstandingDueAmount.Record(ctx, cents(due))
	}

	counts, err := bm.ledgerProvider.PlotCountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get plot counts", zap.Error(err))
		return
	}
	for status, n := range counts {
		bm.plotCountByStatus.Record(ctx, n, AttrPlotStatus.String(status))
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrDecision   = attribute.Key("decision")
	AttrStage      = attribute.Key("stage")
	AttrPlotStatus = attribute.Key("plot_status")
)
