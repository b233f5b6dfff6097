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

var (
	hof     = shared.Actor{UserID: uuid.New(), Name: "Head of Finance", Role: shared.RoleHOF}
	manager = shared.Actor{UserID: uuid.New(), Name: "Accounts", Role: shared.RoleAccountManager}
)

func paidSale(t *testing.T, total, paid int64) *sales.Sale {
	t.Helper()
	s := newSale(t, total)
	if paid > 0 {
		_, err := s.ApplyApprovedReceipt(uuid.New(), d(paid))
		require.NoError(t, err)
	}
	s.MarkPersisted()
	s.ClearDomainEvents()
	return s
}

func request(t *testing.T, s *sales.Sale, pct int64) *sales.Cancellation {
	t.Helper()
	c, err := sales.RequestCancellation("CAN-202602-00001", s, saleDate.AddDate(0, 1, 0), "client relocating", d(pct), nil, manager.UserID)
	require.NoError(t, err)
	c.MarkPersisted()
	return c
}

func TestCalculateRefund(t *testing.T) {
	tests := []struct {
		name       string
		paid       string
		pct        string
		charge     string
		refundable string
	}{
		{"ten percent", "500000", "10", "50000.00", "450000.00"},
		{"zero percent", "500000", "0", "0.00", "500000.00"},
		{"full charge", "500000", "100", "500000.00", "0.00"},
		{"rounded charge", "1000.05", "12.5", "125.01", "875.04"},
		{"nothing paid", "0", "10", "0.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := sales.CalculateRefund(decimal.RequireFromString(tt.paid), decimal.RequireFromString(tt.pct))
			require.NoError(t, err)
			assert.Equal(t, tt.charge, q.OfficeCharge.StringFixed(2))
			assert.Equal(t, tt.refundable, q.RefundableAmount.StringFixed(2))
		})
	}

	_, err := sales.CalculateRefund(d(100), d(101))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	_, err = sales.CalculateRefund(d(100), d(-1))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	_, err = sales.CalculateRefund(d(-1), d(10))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestRequestCancellation(t *testing.T) {
	s := paidSale(t, 1000000, 500000)
	snapshot := []sales.PaidReceipt{{ReceiptID: uuid.New(), ReceiptNumber: "RCV-1", Amount: d(500000), ReceivedDate: saleDate}}

	c, err := sales.RequestCancellation("CAN-1", s, saleDate.AddDate(0, 2, 0), "relocating", d(10), snapshot, manager.UserID)
	require.NoError(t, err)

	assert.Equal(t, sales.CancellationStatusPending, c.Status)
	assert.True(t, c.TotalPaid.Equal(d(500000)))
	assert.True(t, c.RefundableAmount.Equal(d(450000)))
	assert.Equal(t, sales.SaleStatusActive, c.PriorSaleStatus)
	assert.Len(t, c.PaymentSnapshot, 1)

	assert.Equal(t, sales.SaleStatusOnHold, s.Status)
	assert.True(t, s.CancellationPending)
	assert.True(t, shared.IsCode(s.Resume(), shared.CodeInvalidState))

	_, err = sales.RequestCancellation("CAN-2", s, saleDate, "again", d(10), nil, manager.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestRequestCancellation_CompletedSale(t *testing.T) {
	s := paidSale(t, 1000, 1000)
	require.Equal(t, sales.SaleStatusCompleted, s.Status)

	_, err := sales.RequestCancellation("CAN-1", s, saleDate, "", d(10), nil, manager.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestCancellation_ApproveAndRefund(t *testing.T) {
	s := paidSale(t, 1000000, 500000)
	c := request(t, s, 10)

	err := c.Approve(manager, "", s)
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))

	require.NoError(t, c.Approve(hof, "approved", s))
	assert.Equal(t, sales.CancellationStatusApproved, c.Status)
	assert.Equal(t, sales.SaleStatusCancelled, s.Status)
	assert.False(t, s.CancellationPending)
	assert.NotNil(t, s.CancelledAt)
	require.NotNil(t, c.DecidedBy)
	assert.Equal(t, hof.UserID, *c.DecidedBy)

	_, err = c.RecordRefundPayment(d(500000), sales.RefundMethodBankTransfer, "TRX-1", time.Time{}, manager.UserID)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeOverrefund))
	assert.True(t, c.RefundedAmount.IsZero())

	_, err = c.RecordRefundPayment(d(200000), sales.RefundMethodBankTransfer, "TRX-1", time.Time{}, manager.UserID)
	require.NoError(t, err)
	assert.Equal(t, sales.CancellationStatusPartialRefund, c.Status)
	assert.True(t, c.RemainingRefundable().Equal(d(250000)))

	_, err = c.RecordRefundPayment(d(250000), sales.RefundMethodCheque, "CHQ-9", time.Time{}, manager.UserID)
	require.NoError(t, err)
	assert.Equal(t, sales.CancellationStatusRefunded, c.Status)
	assert.Len(t, c.Refunds, 2)

	_, err = c.RecordRefundPayment(d(1), sales.RefundMethodCash, "", time.Time{}, manager.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestCancellation_ApproveWithNothingToRefund(t *testing.T) {
	s := paidSale(t, 1000, 0)
	c := request(t, s, 10)

	require.NoError(t, c.Approve(hof, "", s))
	assert.Equal(t, sales.CancellationStatusApproved, c.Status)
	assert.True(t, c.RemainingRefundable().IsZero())

	_, err := c.RecordRefundPayment(d(1), sales.RefundMethodCash, "", time.Time{}, manager.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeOverrefund))
	assert.Equal(t, sales.CancellationStatusApproved, c.Status)
}

func TestCancellation_Reject(t *testing.T) {
	s := paidSale(t, 1000000, 100000)
	c := request(t, s, 10)

	assert.True(t, shared.IsCode(c.Reject(hof, " ", s), shared.CodeValidation))
	assert.True(t, shared.IsCode(c.Reject(manager, "no", s), shared.CodeForbidden))

	require.NoError(t, c.Reject(hof, "documents incomplete", s))
	assert.Equal(t, sales.CancellationStatusRejected, c.Status)
	assert.Equal(t, sales.SaleStatusActive, s.Status)
	assert.False(t, s.CancellationPending)
	assert.Empty(t, s.HoldReason)

	_, err := s.ApplyApprovedReceipt(uuid.New(), d(1000))
	assert.NoError(t, err)

	assert.True(t, shared.IsCode(c.Approve(hof, "", s), shared.CodeInvalidState))
	_, err = c.RecordRefundPayment(d(1), sales.RefundMethodCash, "", time.Time{}, manager.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestCancellation_RejectRestoresHold(t *testing.T) {
	s := paidSale(t, 1000, 0)
	require.NoError(t, s.Hold("legal review"))
	c := request(t, s, 5)
	assert.Equal(t, sales.SaleStatusOnHold, c.PriorSaleStatus)

	require.NoError(t, c.Reject(hof, "keep", s))
	assert.Equal(t, sales.SaleStatusOnHold, s.Status)
	assert.Equal(t, "legal review", s.HoldReason)
}

func TestCancellation_WrongSale(t *testing.T) {
	s := paidSale(t, 1000, 0)
	other := paidSale(t, 1000, 0)
	c := request(t, s, 10)

	assert.True(t, shared.IsCode(c.Approve(hof, "", other), shared.CodeValidation))
}
