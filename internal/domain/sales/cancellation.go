package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CancellationStatus represents the status of a cancellation request
type CancellationStatus string

const (
	CancellationStatusPending       CancellationStatus = "PENDING"
	CancellationStatusApproved      CancellationStatus = "APPROVED"
	CancellationStatusRejected      CancellationStatus = "REJECTED"
	CancellationStatusPartialRefund CancellationStatus = "PARTIAL_REFUND"
	CancellationStatusRefunded      CancellationStatus = "REFUNDED"
)

// IsValid checks if the status is known
func (s CancellationStatus) IsValid() bool {
	switch s {
	case CancellationStatusPending, CancellationStatusApproved, CancellationStatusRejected,
		CancellationStatusPartialRefund, CancellationStatusRefunded:
		return true
	}
	return false
}

// CanRefund returns true if refund payments may be recorded in this status
func (s CancellationStatus) CanRefund() bool {
	return s == CancellationStatusApproved || s == CancellationStatusPartialRefund
}

// String returns the string representation
func (s CancellationStatus) String() string {
	return string(s)
}

// RefundMethod is how a refund was paid out
type RefundMethod string

const (
	RefundMethodCash         RefundMethod = "CASH"
	RefundMethodBankTransfer RefundMethod = "BANK_TRANSFER"
	RefundMethodCheque       RefundMethod = "CHEQUE"
	RefundMethodMobileWallet RefundMethod = "MOBILE_WALLET"
)

// IsValid checks if the refund method is known
func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodCash, RefundMethodBankTransfer, RefundMethodCheque, RefundMethodMobileWallet:
		return true
	}
	return false
}

// RefundPayment is one payout against a cancellation. Never edited.
type RefundPayment struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	Method     RefundMethod
	Reference  string
	PaidAt     time.Time
	RecordedBy uuid.UUID
}

// PaidReceipt is a line of the payment history captured at request time
type PaidReceipt struct {
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	ReceivedDate  time.Time       `json:"received_date"`
}

// RefundQuote is the outcome of the refund calculation
type RefundQuote struct {
	TotalPaid           decimal.Decimal
	OfficeChargePercent decimal.Decimal
	OfficeCharge        decimal.Decimal
	RefundableAmount    decimal.Decimal
}

// CalculateRefund applies the office-charge deduction:
// refundable = totalPaid − round(totalPaid × percent / 100)
func CalculateRefund(totalPaid, officeChargePercent decimal.Decimal) (RefundQuote, error) {
	if totalPaid.IsNegative() {
		return RefundQuote{}, shared.NewValidationError("Total paid cannot be negative")
	}
	if officeChargePercent.IsNegative() || officeChargePercent.GreaterThan(decimal.NewFromInt(100)) {
		return RefundQuote{}, shared.NewValidationError("Office charge percent must be between 0 and 100")
	}
	charge := valueobject.NewMoneyBDT(totalPaid).Percentage(officeChargePercent).Amount()
	return RefundQuote{
		TotalPaid:           totalPaid,
		OfficeChargePercent: officeChargePercent,
		OfficeCharge:        charge,
		RefundableAmount:    totalPaid.Sub(charge),
	}, nil
}

// Cancellation is a request to unwind a sale and refund the client
type Cancellation struct {
	shared.AuditedAggregateRoot
	CancellationNumber  string
	SaleID              uuid.UUID
	PlotID              uuid.UUID
	RSNumberID          uuid.UUID
	ClientID            uuid.UUID
	CancellationDate    time.Time
	Reason              string
	TotalPaid           decimal.Decimal
	OfficeChargePercent decimal.Decimal
	OfficeCharge        decimal.Decimal
	RefundableAmount    decimal.Decimal
	RefundedAmount      decimal.Decimal
	PriorSaleStatus     SaleStatus
	Status              CancellationStatus
	DecidedBy           *uuid.UUID
	DecidedAt           *time.Time
	DecisionRemarks     string
	PaymentSnapshot     []PaidReceipt
	Refunds             []RefundPayment
}

// RequestCancellation snapshots what the client paid, computes the refund
// and freezes the sale until the request is decided
func RequestCancellation(
	cancellationNumber string,
	sale *Sale,
	cancellationDate time.Time,
	reason string,
	officeChargePercent decimal.Decimal,
	paymentSnapshot []PaidReceipt,
	requestedBy uuid.UUID,
) (*Cancellation, error) {
	if strings.TrimSpace(cancellationNumber) == "" {
		return nil, shared.NewValidationError("Cancellation number cannot be empty")
	}
	if cancellationDate.IsZero() {
		return nil, shared.NewValidationError("Cancellation date is required")
	}
	quote, err := CalculateRefund(sale.PaidAmount, officeChargePercent)
	if err != nil {
		return nil, err
	}
	prior, err := sale.markCancellationRequested()
	if err != nil {
		return nil, err
	}

	snapshot := make([]PaidReceipt, len(paymentSnapshot))
	copy(snapshot, paymentSnapshot)

	c := &Cancellation{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(requestedBy),
		CancellationNumber:   cancellationNumber,
		SaleID:               sale.ID,
		PlotID:               sale.PlotID,
		RSNumberID:           sale.RSNumberID,
		ClientID:             sale.ClientID,
		CancellationDate:     cancellationDate,
		Reason:               strings.TrimSpace(reason),
		TotalPaid:            quote.TotalPaid,
		OfficeChargePercent:  quote.OfficeChargePercent,
		OfficeCharge:         quote.OfficeCharge,
		RefundableAmount:     quote.RefundableAmount,
		RefundedAmount:       decimal.Zero,
		PriorSaleStatus:      prior,
		Status:               CancellationStatusPending,
		PaymentSnapshot:      snapshot,
	}
	c.AddDomainEvent(NewCancellationRequestedEvent(c))
	return c, nil
}

// Approve cancels the sale. The caller releases the plot through the land
// allocator in the same unit of work.
func (c *Cancellation) Approve(actor shared.Actor, remarks string, sale *Sale) error {
	if !actor.HasRole(shared.RoleHOF, shared.RoleAdmin) {
		return shared.NewDomainError(shared.CodeForbidden, "Only HOF or admin can approve a cancellation")
	}
	if c.Status != CancellationStatusPending {
		return shared.NewInvalidStateError("Only pending cancellations can be approved, current status " + c.Status.String())
	}
	if err := c.checkSale(sale); err != nil {
		return err
	}
	if err := sale.cancel(); err != nil {
		return err
	}
	c.Status = c.refundStatus()
	c.decide(actor, remarks)
	c.AddDomainEvent(NewCancellationApprovedEvent(c))
	return nil
}

// Reject restores the sale to the status it had when the request was made
func (c *Cancellation) Reject(actor shared.Actor, reason string, sale *Sale) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("A reason is required to reject a cancellation")
	}
	if !actor.HasRole(shared.RoleHOF, shared.RoleAdmin) {
		return shared.NewDomainError(shared.CodeForbidden, "Only HOF or admin can reject a cancellation")
	}
	if c.Status != CancellationStatusPending {
		return shared.NewInvalidStateError("Only pending cancellations can be rejected, current status " + c.Status.String())
	}
	if err := c.checkSale(sale); err != nil {
		return err
	}
	sale.restoreAfterRejectedCancellation(c.PriorSaleStatus)
	c.Status = CancellationStatusRejected
	c.decide(actor, reason)
	c.AddDomainEvent(NewCancellationRejectedEvent(c))
	return nil
}

// RecordRefundPayment pays out part of the refundable amount
func (c *Cancellation) RecordRefundPayment(amount decimal.Decimal, method RefundMethod, reference string, paidAt time.Time, recordedBy uuid.UUID) (*RefundPayment, error) {
	if !c.Status.CanRefund() {
		return nil, shared.NewInvalidStateError("Refunds can only be recorded on an approved cancellation, current status " + c.Status.String())
	}
	amount = valueobject.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Refund amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Invalid refund method: " + string(method))
	}
	if c.RefundedAmount.Add(amount).GreaterThan(c.RefundableAmount) {
		return nil, shared.NewOverrefundError(amount, c.RemainingRefundable())
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := RefundPayment{
		ID:         uuid.New(),
		Amount:     amount,
		Method:     method,
		Reference:  strings.TrimSpace(reference),
		PaidAt:     paidAt,
		RecordedBy: recordedBy,
	}
	c.Refunds = append(c.Refunds, payment)
	c.RefundedAmount = c.RefundedAmount.Add(amount)
	c.Status = c.refundStatus()
	c.IncrementVersion()
	c.AddDomainEvent(NewRefundRecordedEvent(c, payment))
	return &payment, nil
}

// RemainingRefundable is what is still owed to the client
func (c *Cancellation) RemainingRefundable() decimal.Decimal {
	return c.RefundableAmount.Sub(c.RefundedAmount)
}

// refundStatus maps the refunded amount to the post-approval status.
// Until a refund is paid the cancellation stays APPROVED, also when the
// refundable amount is zero.
func (c *Cancellation) refundStatus() CancellationStatus {
	switch {
	case !c.RefundedAmount.IsPositive():
		return CancellationStatusApproved
	case c.RefundedAmount.Equal(c.RefundableAmount):
		return CancellationStatusRefunded
	default:
		return CancellationStatusPartialRefund
	}
}

func (c *Cancellation) decide(actor shared.Actor, remarks string) {
	now := time.Now()
	userID := actor.UserID
	c.DecidedBy = &userID
	c.DecidedAt = &now
	c.DecisionRemarks = strings.TrimSpace(remarks)
	c.IncrementVersion()
}

func (c *Cancellation) checkSale(sale *Sale) error {
	if sale == nil || sale.ID != c.SaleID {
		return shared.NewValidationError("Cancellation does not belong to this sale")
	}
	return nil
}
