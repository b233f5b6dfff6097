package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type mockLedgerProvider struct {
	mock.Mock
}

func (m *mockLedgerProvider) OutstandingDue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLedgerProvider) PlotCountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func TestNewBusinessMetrics(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)

	types := bm.EventTypes()
	assert.Contains(t, types, sales.EventTypeSaleCreated)
	assert.Contains(t, types, finance.EventTypeReceiptApproved)
	assert.Contains(t, types, sales.EventTypeRefundRecorded)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			}
		}
	}
	return out
}

func TestBusinessMetrics_HandleCountsEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	created := &sales.SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeSaleCreated, sales.AggregateTypeSale, uuid.New()),
		TotalPrice:      decimal.NewFromInt(1000000),
	}
	approved := &finance.ReceiptApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypeReceiptApproved, finance.AggregateTypeReceipt, uuid.New()),
		Amount:          decimal.RequireFromString("100000.50"),
		Method:          finance.PaymentMethodCash,
	}
	refund := &sales.RefundRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeRefundRecorded, sales.AggregateTypeCancellation, uuid.New()),
		Amount:          decimal.NewFromInt(2500),
	}
	require.NoError(t, bm.Handle(ctx, created))
	require.NoError(t, bm.Handle(ctx, approved))
	require.NoError(t, bm.Handle(ctx, approved))
	require.NoError(t, bm.Handle(ctx, refund))

	got := collect(t, reader)
	assert.Equal(t, int64(1), got["landerp_sale_created_total"])
	assert.Equal(t, int64(100000000), got["landerp_sale_amount_total"])
	assert.Equal(t, int64(2), got["landerp_receipt_approved_total"])
	assert.Equal(t, int64(20000100), got["landerp_receipt_amount_total"])
	assert.Equal(t, int64(250000), got["landerp_refund_amount_total"])
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ledger := new(mockLedgerProvider)
	ledger.On("OutstandingDue", mock.Anything).Return(decimal.RequireFromString("1500.25"), nil)
	ledger.On("PlotCountByStatus", mock.Anything).Return(map[string]int64{"AVAILABLE": 3, "SOLD": 2}, nil)

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          provider.Meter("test"),
		LedgerProvider: ledger,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bm.StartPeriodicCollection(ctx, time.Hour)
	defer bm.Stop()

	require.Eventually(t, func() bool {
		got := collect(t, reader)
		return got["landerp_outstanding_due_amount"] == 150025 && got["landerp_plot_count"] == 5
	}, time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_PeriodicCollectionProviderError(t *testing.T) {
	var calls atomic.Int32
	count := func(mock.Arguments) { calls.Add(1) }
	ledger := new(mockLedgerProvider)
	ledger.On("OutstandingDue", mock.Anything).Return(decimal.Zero, errors.New("db down")).Run(count)
	ledger.On("PlotCountByStatus", mock.Anything).Return(nil, errors.New("db down")).Run(count)

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          noop.NewMeterProvider().Meter("test"),
		LedgerProvider: ledger,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bm.StartPeriodicCollection(ctx, time.Hour)
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
	bm.Stop()
	bm.Stop()
}
