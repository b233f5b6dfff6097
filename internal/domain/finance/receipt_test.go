package finance_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	received = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	creator  = shared.Actor{UserID: uuid.New(), Name: "Cashier", Role: shared.RoleAccountManager}
	accounts = shared.Actor{UserID: uuid.New(), Name: "Accounts", Role: shared.RoleAccountManager}
	hof      = shared.Actor{UserID: uuid.New(), Name: "HOF", Role: shared.RoleHOF}
)

func cashDetails(amount int64) finance.ReceiptDetails {
	return finance.ReceiptDetails{
		ReceiptType:  finance.ReceiptTypeInstallment,
		Amount:       decimal.NewFromInt(amount),
		Method:       finance.PaymentMethodCash,
		ReceivedDate: received,
	}
}

func newReceipt(t *testing.T, details finance.ReceiptDetails) *finance.Receipt {
	t.Helper()
	r, err := finance.NewReceipt("RCV-202603-00001", uuid.New(), uuid.New(), details, creator.UserID)
	require.NoError(t, err)
	r.MarkPersisted()
	return r
}

func TestNewReceipt(t *testing.T) {
	r := newReceipt(t, cashDetails(100000))
	assert.Equal(t, approval.StatusDraft, r.Status())
	assert.Equal(t, finance.SubjectTypeReceipt, r.SubjectType())
	assert.Equal(t, creator.UserID, r.Workflow().CreatedBy)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(100000)))
}

func TestNewReceipt_InstrumentRules(t *testing.T) {
	later := received.AddDate(0, 1, 0)
	same := received

	tests := []struct {
		name    string
		method  finance.PaymentMethod
		inst    finance.Instrument
		wantErr bool
	}{
		{"cash needs nothing", finance.PaymentMethodCash, finance.Instrument{}, false},
		{"cheque complete", finance.PaymentMethodCheque, finance.Instrument{BankName: "City Bank", ChequeNumber: "000123", ChequeDate: &same}, false},
		{"cheque without number", finance.PaymentMethodCheque, finance.Instrument{BankName: "City Bank", ChequeDate: &same}, true},
		{"pdc dated later", finance.PaymentMethodPDC, finance.Instrument{BankName: "BRAC", ChequeNumber: "9", ChequeDate: &later}, false},
		{"pdc dated today", finance.PaymentMethodPDC, finance.Instrument{BankName: "BRAC", ChequeNumber: "9", ChequeDate: &same}, true},
		{"pdc without date", finance.PaymentMethodPDC, finance.Instrument{BankName: "BRAC", ChequeNumber: "9"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := cashDetails(500)
			details.Method = tt.method
			details.Instrument = tt.inst
			_, err := finance.NewReceipt("RCV-1", uuid.New(), uuid.New(), details, creator.UserID)
			if tt.wantErr {
				assert.True(t, shared.IsCode(err, shared.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewReceipt_Validation(t *testing.T) {
	_, err := finance.NewReceipt("", uuid.New(), uuid.New(), cashDetails(1), creator.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = finance.NewReceipt("RCV-1", uuid.Nil, uuid.New(), cashDetails(1), creator.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = finance.NewReceipt("RCV-1", uuid.New(), uuid.New(), cashDetails(0), creator.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	bad := cashDetails(10)
	bad.ReceiptType = "DONATION"
	_, err = finance.NewReceipt("RCV-1", uuid.New(), uuid.New(), bad, creator.UserID)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestReceipt_ApprovalFlow(t *testing.T) {
	r := newReceipt(t, cashDetails(100000))

	require.NoError(t, approval.Submit(r, creator, ""))
	assert.Equal(t, approval.StatusPendingAccounts, r.Status())
	assert.Equal(t, 2, r.Version)

	_, err := approval.Approve(r, hof, "")
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))

	final, err := approval.Approve(r, accounts, "checked")
	require.NoError(t, err)
	assert.False(t, final)
	assert.Empty(t, r.GetDomainEvents())

	final, err = approval.Approve(r, hof, "ok")
	require.NoError(t, err)
	assert.True(t, final)
	assert.Equal(t, approval.StatusApproved, r.Status())

	events := r.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*finance.ReceiptApprovedEvent)
	require.True(t, ok)
	assert.Equal(t, r.SaleID, ev.SaleID)
	assert.Equal(t, hof.UserID, ev.ApprovedBy)

	assert.Len(t, r.Workflow().History(), 3)
	assert.True(t, shared.IsCode(r.Update(cashDetails(1)), shared.CodeInvalidState))
	assert.True(t, shared.IsCode(r.AttachDocument("receipts/x.pdf"), shared.CodeInvalidState))
}

func TestReceipt_Reject(t *testing.T) {
	r := newReceipt(t, cashDetails(100))
	require.NoError(t, approval.Submit(r, creator, ""))

	require.NoError(t, approval.Reject(r, accounts, "amount mismatch"))
	assert.Equal(t, approval.StatusRejected, r.Status())
	require.Len(t, r.GetDomainEvents(), 1)
	assert.Equal(t, finance.EventTypeReceiptRejected, r.GetDomainEvents()[0].EventType())
}

func TestReceipt_UpdateDraft(t *testing.T) {
	r := newReceipt(t, cashDetails(100))
	require.NoError(t, r.Update(cashDetails(250)))
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(250)))
	require.NoError(t, r.AttachDocument("receipts/2026/03/scan.jpg"))
	assert.Equal(t, "receipts/2026/03/scan.jpg", r.AttachmentKey)
}
