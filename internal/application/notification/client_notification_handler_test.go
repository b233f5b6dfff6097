package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/landerp/backend/internal/application/notification"
	"github.com/landerp/backend/internal/testutil"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, n notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotifier) sent(kind notification.Kind) []notification.Notification {
	var out []notification.Notification
	for _, call := range m.Calls {
		n := call.Arguments.Get(1).(notification.Notification)
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestClientNotificationHandler_ReceiptAndCompletion(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)

	notifier := new(mockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	app.Bus.Subscribe(notification.NewClientNotificationHandler(app.UoW, notifier, zap.NewNop()))

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	receipt := app.ApproveReceipt(t, actors, f, "100000")

	receipts := notifier.sent(notification.KindReceiptApproved)
	require.Len(t, receipts, 1)
	assert.Equal(t, f.Client.ID, receipts[0].ClientID)
	assert.Equal(t, f.Client.Phone, receipts[0].Phone)
	assert.Contains(t, receipts[0].Message, "100,000.00")
	assert.Contains(t, receipts[0].Message, receipt.ReceiptNumber)

	app.ApproveReceipt(t, actors, f, "900000")
	completed := notifier.sent(notification.KindSaleCompleted)
	require.Len(t, completed, 1)
	assert.Contains(t, completed[0].Message, f.Sale.SaleNumber)
}

func TestClientNotificationHandler_InstallmentReminder(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	notifier := new(mockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	app.Bus.Subscribe(notification.NewClientNotificationHandler(app.UoW, notifier, zap.NewNop()))

	f := app.SeedSale(t, actors, "100", "30", "1000000")

	count, err := app.Sales.PublishInstallmentReminders(ctx, app.Bus, testutil.Date(2024, 1, 25))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	reminders := notifier.sent(notification.KindInstallmentReminder)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Message, "Booking payment of 100,000.00")
	assert.Contains(t, reminders[0].Message, "10 days overdue")
	assert.Contains(t, reminders[0].Message, f.Sale.SaleNumber)
}

func TestClientNotificationHandler_NotifierFailureDoesNotUndoApproval(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	notifier := new(mockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("gateway down"))
	app.Bus.Subscribe(notification.NewClientNotificationHandler(app.UoW, notifier, zap.NewNop()))

	f := app.SeedSale(t, actors, "100", "30", "1000000")
	app.ApproveReceipt(t, actors, f, "100000")

	sale, err := app.Sales.GetSale(ctx, f.Sale.ID)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "100000", sale.PaidAmount, "paid_amount")
	notifier.AssertCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestLoggingNotifier_Send(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := notification.NewLoggingNotifier(zap.New(core))

	err := n.Send(context.Background(), notification.Notification{
		Kind:       notification.KindRefundRecorded,
		ClientName: "Karim",
		Phone:      "01700000000",
		Message:    "A refund of 1,000.00 has been paid to you.",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("Client notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "REFUND_RECORDED", fields["kind"])
	assert.Equal(t, "Karim", fields["client_name"])
}
