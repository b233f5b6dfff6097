// Package finance holds the money-movement aggregates that pass through the
// two-tier approval workflow (receipts and expenses) and the bank and cash
// accounts they settle against.
package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SubjectTypeReceipt names receipts in approval history and lock keys
const SubjectTypeReceipt = "receipt"

// ReceiptType is the purpose the client states for a payment. It is
// informational; approved amounts always fill sale stages in plan order.
type ReceiptType string

const (
	ReceiptTypeBooking      ReceiptType = "BOOKING"
	ReceiptTypeInstallment  ReceiptType = "INSTALLMENT"
	ReceiptTypeRegistration ReceiptType = "REGISTRATION"
	ReceiptTypeHandover     ReceiptType = "HANDOVER"
	ReceiptTypeOther        ReceiptType = "OTHER"
)

// IsValid checks if the receipt type is known
func (t ReceiptType) IsValid() bool {
	switch t {
	case ReceiptTypeBooking, ReceiptTypeInstallment, ReceiptTypeRegistration,
		ReceiptTypeHandover, ReceiptTypeOther:
		return true
	}
	return false
}

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodPDC          PaymentMethod = "PDC" // post-dated cheque
	PaymentMethodMobileWallet PaymentMethod = "MOBILE_WALLET"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodPDC, PaymentMethodMobileWallet:
		return true
	}
	return false
}

// RequiresInstrument returns true for methods backed by a paper cheque
func (m PaymentMethod) RequiresInstrument() bool {
	return m == PaymentMethodCheque || m == PaymentMethodPDC
}

// Instrument describes the cheque behind a CHEQUE or PDC receipt
type Instrument struct {
	BankName     string
	ChequeNumber string
	ChequeDate   *time.Time
}

// IsEmpty reports whether no instrument field is set
func (i Instrument) IsEmpty() bool {
	return i.BankName == "" && i.ChequeNumber == "" && i.ChequeDate == nil
}

func (i Instrument) validate(method PaymentMethod, receivedDate time.Time) error {
	if !method.RequiresInstrument() {
		return nil
	}
	if strings.TrimSpace(i.BankName) == "" || strings.TrimSpace(i.ChequeNumber) == "" || i.ChequeDate == nil {
		return shared.NewValidationError("Bank name, cheque number and cheque date are required for " + string(method))
	}
	if method == PaymentMethodPDC && !truncateDay(*i.ChequeDate).After(truncateDay(receivedDate)) {
		return shared.NewValidationError("A post-dated cheque must be dated after the received date")
	}
	return nil
}

// ReceiptDetails is the editable content of a receipt
type ReceiptDetails struct {
	ReceiptType  ReceiptType
	Amount       decimal.Decimal
	Method       PaymentMethod
	Instrument   Instrument
	AccountID    *uuid.UUID
	ReceivedDate time.Time
	Notes        string
}

func (d ReceiptDetails) normalize() (ReceiptDetails, error) {
	if !d.ReceiptType.IsValid() {
		return d, shared.NewValidationError("Invalid receipt type: " + string(d.ReceiptType))
	}
	d.Amount = valueobject.RoundMoney(d.Amount)
	if !d.Amount.IsPositive() {
		return d, shared.NewValidationError("Receipt amount must be positive")
	}
	if !d.Method.IsValid() {
		return d, shared.NewValidationError("Invalid payment method: " + string(d.Method))
	}
	if d.ReceivedDate.IsZero() {
		return d, shared.NewValidationError("Received date is required")
	}
	if err := d.Instrument.validate(d.Method, d.ReceivedDate); err != nil {
		return d, err
	}
	if !d.Method.RequiresInstrument() {
		d.Instrument = Instrument{}
	}
	if d.AccountID != nil && *d.AccountID == uuid.Nil {
		d.AccountID = nil
	}
	d.Notes = strings.TrimSpace(d.Notes)
	return d, nil
}

// Receipt is a client payment against a sale. It affects the sale ledger
// only once it reaches APPROVED.
type Receipt struct {
	shared.AuditedAggregateRoot
	ReceiptNumber string
	ClientID      uuid.UUID
	SaleID        uuid.UUID
	ReceiptDetails
	AttachmentKey string
	workflow      approval.Workflow
}

// NewReceipt creates a draft receipt
func NewReceipt(receiptNumber string, clientID, saleID uuid.UUID, details ReceiptDetails, createdBy uuid.UUID) (*Receipt, error) {
	if strings.TrimSpace(receiptNumber) == "" {
		return nil, shared.NewValidationError("Receipt number cannot be empty")
	}
	if clientID == uuid.Nil || saleID == uuid.Nil {
		return nil, shared.NewValidationError("Client and sale are required")
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	return &Receipt{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		ReceiptNumber:        receiptNumber,
		ClientID:             clientID,
		SaleID:               saleID,
		ReceiptDetails:       details,
		workflow:             approval.New(createdBy),
	}, nil
}

// RestoreWorkflow attaches persisted workflow state to a loaded receipt
func (r *Receipt) RestoreWorkflow(w approval.Workflow) {
	r.workflow = w
}

// Update edits a draft receipt
func (r *Receipt) Update(details ReceiptDetails) error {
	if r.workflow.Status != approval.StatusDraft {
		return shared.NewInvalidStateError("Only draft receipts can be edited, current status " + r.workflow.Status.String())
	}
	details, err := details.normalize()
	if err != nil {
		return err
	}
	r.ReceiptDetails = details
	r.IncrementVersion()
	return nil
}

// AttachDocument records the storage key of the scanned instrument
func (r *Receipt) AttachDocument(key string) error {
	if r.workflow.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot change the attachment of a decided receipt")
	}
	if strings.TrimSpace(key) == "" {
		return shared.NewValidationError("Attachment key cannot be empty")
	}
	r.AttachmentKey = key
	r.IncrementVersion()
	return nil
}

// Status returns the approval status
func (r *Receipt) Status() approval.Status {
	return r.workflow.Status
}

// SubjectType implements approval.Subject
func (r *Receipt) SubjectType() string {
	return SubjectTypeReceipt
}

// Workflow implements approval.Subject
func (r *Receipt) Workflow() *approval.Workflow {
	return &r.workflow
}

// OnSubmitted implements approval.Subject
func (r *Receipt) OnSubmitted(actor shared.Actor) {
	r.IncrementVersion()
}

// OnApproved implements approval.Subject
func (r *Receipt) OnApproved(actor shared.Actor, final bool) {
	r.IncrementVersion()
	if final {
		r.AddDomainEvent(NewReceiptApprovedEvent(r, actor))
	}
}

// OnRejected implements approval.Subject
func (r *Receipt) OnRejected(actor shared.Actor, remarks string) {
	r.IncrementVersion()
	r.AddDomainEvent(NewReceiptRejectedEvent(r, actor, remarks))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
