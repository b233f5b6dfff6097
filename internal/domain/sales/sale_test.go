package sales_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

var saleDate = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newSale(t *testing.T, total int64) *sales.Sale {
	t.Helper()
	s, err := sales.NewSale("SL-202601-00001", uuid.New(), uuid.New(), uuid.New(), d(total), saleDate, sales.StagePlan{}, uuid.New())
	require.NoError(t, err)
	s.MarkPersisted()
	s.ClearDomainEvents()
	return s
}

func stageAmounts(s *sales.Sale) (planned, received []string) {
	for _, st := range s.Stages {
		planned = append(planned, st.PlannedAmount.StringFixed(2))
		received = append(received, st.ReceivedAmount.StringFixed(2))
	}
	return planned, received
}

func TestNewSale_DefaultPlan(t *testing.T) {
	s, err := sales.NewSale("SL-1", uuid.New(), uuid.New(), uuid.New(), d(1000000), saleDate, sales.StagePlan{}, uuid.New())
	require.NoError(t, err)

	planned, _ := stageAmounts(s)
	assert.Equal(t, []string{"100000.00", "700000.00", "150000.00", "50000.00"}, planned)
	assert.Equal(t, sales.SaleStatusActive, s.Status)
	assert.True(t, s.DueAmount.Equal(d(1000000)))
	assert.True(t, s.PaidAmount.IsZero())
	assert.Equal(t, saleDate, s.Stages[0].DueDate)
	assert.Equal(t, saleDate.AddDate(0, 0, 180), s.Stages[1].DueDate)
	assert.NoError(t, s.CheckInvariant())

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, sales.EventTypeSaleCreated, events[0].EventType())
}

func TestNewSale_RemainderGoesToLastStage(t *testing.T) {
	s, err := sales.NewSale("SL-1", uuid.New(), uuid.New(), uuid.New(), decimal.RequireFromString("1000.03"), saleDate, sales.StagePlan{}, uuid.New())
	require.NoError(t, err)

	planned, _ := stageAmounts(s)
	assert.Equal(t, []string{"100.00", "700.02", "150.00", "50.01"}, planned)
	assert.NoError(t, s.CheckInvariant())
}

func TestNewSale_Validation(t *testing.T) {
	tests := []struct {
		name   string
		number string
		client uuid.UUID
		price  decimal.Decimal
		date   time.Time
	}{
		{"empty number", "", uuid.New(), d(10), saleDate},
		{"no client", "SL-1", uuid.Nil, d(10), saleDate},
		{"zero price", "SL-1", uuid.New(), d(0), saleDate},
		{"negative price", "SL-1", uuid.New(), d(-5), saleDate},
		{"no date", "SL-1", uuid.New(), d(10), time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sales.NewSale(tt.number, tt.client, uuid.New(), uuid.New(), tt.price, tt.date, sales.StagePlan{}, uuid.New())
			assert.True(t, shared.IsCode(err, shared.CodeValidation))
		})
	}
}

func TestApplyApprovedReceipt_Waterfall(t *testing.T) {
	s := newSale(t, 1000000)

	alloc, err := s.ApplyApprovedReceipt(uuid.New(), d(100000))
	require.NoError(t, err)
	require.Len(t, alloc, 1)
	assert.Equal(t, sales.StageBooking, alloc[0].Stage)
	assert.Equal(t, sales.StageStatusCompleted, s.Stages[0].Status)
	assert.True(t, s.DueAmount.Equal(d(900000)))

	alloc, err = s.ApplyApprovedReceipt(uuid.New(), d(750000))
	require.NoError(t, err)
	require.Len(t, alloc, 2)
	assert.True(t, alloc[0].Amount.Equal(d(700000)))
	assert.True(t, alloc[1].Amount.Equal(d(50000)))

	assert.Equal(t, sales.StageStatusCompleted, s.Stages[1].Status)
	assert.Equal(t, sales.StageStatusPartial, s.Stages[2].Status)
	assert.True(t, s.Stages[2].ReceivedAmount.Equal(d(50000)))
	assert.True(t, s.Stages[2].DueAmount.Equal(d(100000)))
	assert.Equal(t, sales.StageStatusPending, s.Stages[3].Status)
	assert.True(t, s.DueAmount.Equal(d(150000)))
	assert.True(t, s.PaidAmount.Equal(d(850000)))
	assert.Equal(t, sales.SaleStatusActive, s.Status)
	assert.NoError(t, s.CheckInvariant())
	assert.Equal(t, 2, s.Version)
}

func TestApplyApprovedReceipt_Overpayment(t *testing.T) {
	s := newSale(t, 1000000)
	_, err := s.ApplyApprovedReceipt(uuid.New(), d(850000))
	require.NoError(t, err)
	s.ClearDomainEvents()

	_, before := stageAmounts(s)
	_, err = s.ApplyApprovedReceipt(uuid.New(), d(200000))
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeOverpayment))

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "150000.00", de.Details["due"])

	_, after := stageAmounts(s)
	assert.Equal(t, before, after)
	assert.True(t, s.DueAmount.Equal(d(150000)))
	assert.Empty(t, s.GetDomainEvents())
}

func TestApplyApprovedReceipt_CompletesSale(t *testing.T) {
	s := newSale(t, 1000)

	_, err := s.ApplyApprovedReceipt(uuid.New(), d(1000))
	require.NoError(t, err)
	assert.Equal(t, sales.SaleStatusCompleted, s.Status)
	assert.NotNil(t, s.CompletedAt)
	assert.True(t, s.DueAmount.IsZero())

	var types []string
	for _, e := range s.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{sales.EventTypeSalePaymentApplied, sales.EventTypeSaleCompleted}, types)

	_, err = s.ApplyApprovedReceipt(uuid.New(), d(1))
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestApplyApprovedReceipt_RejectsNonPositive(t *testing.T) {
	s := newSale(t, 1000)
	_, err := s.ApplyApprovedReceipt(uuid.New(), d(0))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	_, err = s.ApplyApprovedReceipt(uuid.New(), d(-10))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestApplyApprovedReceipt_OnlyActive(t *testing.T) {
	s := newSale(t, 1000)
	require.NoError(t, s.Hold("client abroad"))

	_, err := s.ApplyApprovedReceipt(uuid.New(), d(100))
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
	assert.True(t, s.PaidAmount.IsZero())
}

func TestReplayStages_DependsOnlyOnTotal(t *testing.T) {
	a, err := sales.ReplayStages(d(1000000), saleDate, sales.StagePlan{}, []decimal.Decimal{d(100000), d(750000)})
	require.NoError(t, err)
	b, err := sales.ReplayStages(d(1000000), saleDate, sales.StagePlan{}, []decimal.Decimal{d(750000), d(100000)})
	require.NoError(t, err)
	c, err := sales.ReplayStages(d(1000000), saleDate, sales.StagePlan{}, []decimal.Decimal{d(850000)})
	require.NoError(t, err)

	for i := range a {
		assert.True(t, a[i].ReceivedAmount.Equal(b[i].ReceivedAmount))
		assert.True(t, a[i].ReceivedAmount.Equal(c[i].ReceivedAmount))
		assert.Equal(t, a[i].Status, c[i].Status)
	}

	_, err = sales.ReplayStages(d(1000), saleDate, sales.StagePlan{}, []decimal.Decimal{d(600), d(600)})
	assert.True(t, shared.IsCode(err, shared.CodeOverpayment))
}

func TestAcceptsPayment(t *testing.T) {
	s := newSale(t, 1000)
	_, err := s.ApplyApprovedReceipt(uuid.New(), d(900))
	require.NoError(t, err)
	version := s.Version

	require.NoError(t, s.AcceptsPayment(d(100)))
	err = s.AcceptsPayment(decimal.RequireFromString("100.01"))
	assert.True(t, shared.IsCode(err, shared.CodeOverpayment))
	assert.Equal(t, version, s.Version)
	assert.True(t, s.DueAmount.Equal(d(100)))
}

func TestHoldAndResume(t *testing.T) {
	s := newSale(t, 1000)

	assert.True(t, shared.IsCode(s.Hold(""), shared.CodeValidation))
	require.NoError(t, s.Hold("document check"))
	assert.Equal(t, sales.SaleStatusOnHold, s.Status)
	assert.Equal(t, "document check", s.HoldReason)
	assert.True(t, shared.IsCode(s.Hold("again"), shared.CodeInvalidState))

	require.NoError(t, s.Resume())
	assert.Equal(t, sales.SaleStatusActive, s.Status)
	assert.Empty(t, s.HoldReason)
	assert.True(t, shared.IsCode(s.Resume(), shared.CodeInvalidState))
}

func TestDueInstallments(t *testing.T) {
	s := newSale(t, 1000000)
	_, err := s.ApplyApprovedReceipt(uuid.New(), d(40000))
	require.NoError(t, err)

	asOf := saleDate.AddDate(0, 0, 3)
	due := s.DueInstallments(asOf, 7)
	require.Len(t, due, 1)
	assert.Equal(t, sales.StageBooking, due[0].Stage)
	assert.True(t, due[0].DueAmount.Equal(d(60000)))
	assert.True(t, due[0].Overdue)
	assert.Equal(t, 3, due[0].DaysOverdue)

	// second stage enters the reminder window a week before it is due
	asOf = saleDate.AddDate(0, 0, 175)
	due = s.DueInstallments(asOf, 7)
	require.Len(t, due, 2)
	assert.Equal(t, sales.StageInstallments, due[1].Stage)
	assert.False(t, due[1].Overdue)

	require.NoError(t, s.Hold("dispute"))
	assert.Empty(t, s.DueInstallments(asOf, 7))
}

func TestNewStagePlan(t *testing.T) {
	plan, err := sales.NewStagePlan([]sales.StageDefinition{
		{Stage: sales.StageBooking, Percent: d(20)},
		{Stage: sales.StageInstallments, Percent: d(80), DueAfterDays: 90},
	})
	require.NoError(t, err)
	assert.Len(t, plan.Definitions(), 2)

	s, err := sales.NewSale("SL-1", uuid.New(), uuid.New(), uuid.New(), d(500), saleDate, plan, uuid.New())
	require.NoError(t, err)
	require.Len(t, s.Stages, 2)
	assert.True(t, s.Stages[1].PlannedAmount.Equal(d(400)))

	bad := [][]sales.StageDefinition{
		nil,
		{{Stage: sales.StageBooking, Percent: d(50)}},
		{{Stage: sales.StageBooking, Percent: d(50)}, {Stage: sales.StageBooking, Percent: d(50)}},
		{{Stage: "DEPOSIT", Percent: d(100)}},
		{{Stage: sales.StageBooking, Percent: d(0)}, {Stage: sales.StageHandover, Percent: d(100)}},
		{{Stage: sales.StageBooking, Percent: d(50), DueAfterDays: 30}, {Stage: sales.StageHandover, Percent: d(50), DueAfterDays: 10}},
	}
	for _, defs := range bad {
		_, err := sales.NewStagePlan(defs)
		assert.Error(t, err)
	}
}
