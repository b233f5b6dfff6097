package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ClientNotificationHandler informs clients about payments, completion,
// cancellation, refunds and upcoming installments
type ClientNotificationHandler struct {
	uow      *appshared.UnitOfWork
	notifier Notifier
	printer  *message.Printer
	logger   *zap.Logger
}

// NewClientNotificationHandler creates a new ClientNotificationHandler
func NewClientNotificationHandler(uow *appshared.UnitOfWork, notifier Notifier, logger *zap.Logger) *ClientNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientNotificationHandler{
		uow:      uow,
		notifier: notifier,
		printer:  message.NewPrinter(language.English),
		logger:   logger,
	}
}

// EventTypes implements shared.EventHandler
func (h *ClientNotificationHandler) EventTypes() []string {
	return []string{
		finance.EventTypeReceiptApproved,
		sales.EventTypeSaleCompleted,
		sales.EventTypeCancellationApproved,
		sales.EventTypeRefundRecorded,
		sales.EventTypeInstallmentReminder,
	}
}

// Handle implements shared.EventHandler
func (h *ClientNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		clientID uuid.UUID
		kind     Kind
		text     string
	)
	switch e := event.(type) {
	case *finance.ReceiptApprovedEvent:
		clientID, kind = e.ClientID, KindReceiptApproved
		text = h.printer.Sprintf("We have received your payment of %s (receipt %s). Thank you.",
			h.money(e.Amount), e.ReceiptNumber)
	case *sales.SaleCompletedEvent:
		clientID, kind = e.ClientID, KindSaleCompleted
		text = h.printer.Sprintf("Sale %s is fully paid. Total received: %s.",
			e.SaleNumber, h.money(e.TotalPrice))
	case *sales.CancellationApprovedEvent:
		clientID, kind = e.ClientID, KindCancellationApproved
		text = h.printer.Sprintf("Cancellation %s has been approved. Paid %s, office charge %s, refundable %s.",
			e.CancellationNumber, h.money(e.TotalPaid), h.money(e.OfficeCharge), h.money(e.RefundableAmount))
	case *sales.RefundRecordedEvent:
		clientID, kind = e.ClientID, KindRefundRecorded
		text = h.printer.Sprintf("A refund of %s has been paid to you. Refunded so far: %s.",
			h.money(e.Amount), h.money(e.RefundedAmount))
	case *sales.InstallmentReminderEvent:
		due := e.Installment
		clientID, kind = due.ClientID, KindInstallmentReminder
		if due.Overdue {
			text = h.printer.Sprintf("Your %s payment of %s for sale %s is %d days overdue.",
				h.stage(due.Stage), h.money(due.DueAmount), due.SaleNumber, due.DaysOverdue)
		} else {
			text = h.printer.Sprintf("Your %s payment of %s for sale %s is due on %s.",
				h.stage(due.Stage), h.money(due.DueAmount), due.SaleNumber, due.DueDate.Format("02 Jan 2006"))
		}
	default:
		return nil
	}

	var client *partner.Client
	err := h.uow.Read(ctx, func(repos appshared.Repositories) error {
		var err error
		client, err = repos.Clients().FindByID(ctx, clientID)
		return err
	})
	if err != nil {
		return fmt.Errorf("load client %s for notification: %w", clientID, err)
	}

	n := Notification{
		Kind:       kind,
		EventID:    event.EventID(),
		ClientID:   client.ID,
		ClientName: client.Name,
		Phone:      client.Phone,
		Email:      client.Email,
		Message:    text,
	}
	if err := h.notifier.Send(ctx, n); err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}

func (h *ClientNotificationHandler) money(d decimal.Decimal) string {
	return h.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (h *ClientNotificationHandler) stage(s sales.StageName) string {
	// Casers keep state, so one per call
	return cases.Title(language.English).String(string(s))
}

var _ shared.EventHandler = (*ClientNotificationHandler)(nil)
