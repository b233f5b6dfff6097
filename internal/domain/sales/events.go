package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeSale         = "Sale"
	AggregateTypeCancellation = "Cancellation"
)

// Event type names
const (
	EventTypeSaleCreated           = "SaleCreated"
	EventTypeSalePaymentApplied    = "SalePaymentApplied"
	EventTypeSaleCompleted         = "SaleCompleted"
	EventTypeSaleStatusChanged     = "SaleStatusChanged"
	EventTypeCancellationRequested = "CancellationRequested"
	EventTypeCancellationApproved  = "CancellationApproved"
	EventTypeCancellationRejected  = "CancellationRejected"
	EventTypeRefundRecorded        = "RefundRecorded"
	EventTypeInstallmentReminder   = "InstallmentReminder"
)

// SaleCreatedEvent is raised when a plot is sold
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	ClientID   uuid.UUID       `json:"client_id"`
	PlotID     uuid.UUID       `json:"plot_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	SaleDate   time.Time       `json:"sale_date"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		ClientID:        s.ClientID,
		PlotID:          s.PlotID,
		TotalPrice:      s.TotalPrice,
		SaleDate:        s.SaleDate,
	}
}

// SalePaymentAppliedEvent is raised when an approved receipt reduces the due amount
type SalePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID         `json:"sale_id"`
	ReceiptID   uuid.UUID         `json:"receipt_id"`
	Amount      decimal.Decimal   `json:"amount"`
	PaidAmount  decimal.Decimal   `json:"paid_amount"`
	DueAmount   decimal.Decimal   `json:"due_amount"`
	Allocations []StageAllocation `json:"allocations"`
}

// NewSalePaymentAppliedEvent creates a new SalePaymentAppliedEvent
func NewSalePaymentAppliedEvent(s *Sale, receiptID uuid.UUID, amount decimal.Decimal, allocations []StageAllocation) *SalePaymentAppliedEvent {
	return &SalePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalePaymentApplied, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ReceiptID:       receiptID,
		Amount:          amount,
		PaidAmount:      s.PaidAmount,
		DueAmount:       s.DueAmount,
		Allocations:     allocations,
	}
}

// SaleCompletedEvent is raised when every stage is paid
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	ClientID   uuid.UUID       `json:"client_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		ClientID:        s.ClientID,
		TotalPrice:      s.TotalPrice,
	}
}

// SaleStatusChangedEvent is raised on manual hold/resume and on cancellation
type SaleStatusChangedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID  `json:"sale_id"`
	FromStatus SaleStatus `json:"from_status"`
	ToStatus   SaleStatus `json:"to_status"`
	Reason     string     `json:"reason,omitempty"`
}

// NewSaleStatusChangedEvent creates a new SaleStatusChangedEvent
func NewSaleStatusChangedEvent(s *Sale, from SaleStatus) *SaleStatusChangedEvent {
	return &SaleStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleStatusChanged, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		FromStatus:      from,
		ToStatus:        s.Status,
		Reason:          s.HoldReason,
	}
}

// CancellationRequestedEvent is raised when a sale cancellation is requested
type CancellationRequestedEvent struct {
	shared.BaseDomainEvent
	CancellationID   uuid.UUID       `json:"cancellation_id"`
	SaleID           uuid.UUID       `json:"sale_id"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RefundableAmount decimal.Decimal `json:"refundable_amount"`
}

// NewCancellationRequestedEvent creates a new CancellationRequestedEvent
func NewCancellationRequestedEvent(c *Cancellation) *CancellationRequestedEvent {
	return &CancellationRequestedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCancellationRequested, AggregateTypeCancellation, c.ID),
		CancellationID:   c.ID,
		SaleID:           c.SaleID,
		TotalPaid:        c.TotalPaid,
		RefundableAmount: c.RefundableAmount,
	}
}

// CancellationApprovedEvent is raised when a sale is cancelled. Consumed by
// the client notification collaborator.
type CancellationApprovedEvent struct {
	shared.BaseDomainEvent
	CancellationID     uuid.UUID       `json:"cancellation_id"`
	CancellationNumber string          `json:"cancellation_number"`
	SaleID             uuid.UUID       `json:"sale_id"`
	PlotID             uuid.UUID       `json:"plot_id"`
	ClientID           uuid.UUID       `json:"client_id"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OfficeCharge       decimal.Decimal `json:"office_charge"`
	RefundableAmount   decimal.Decimal `json:"refundable_amount"`
	ApprovedBy         uuid.UUID       `json:"approved_by"`
}

// NewCancellationApprovedEvent creates a new CancellationApprovedEvent
func NewCancellationApprovedEvent(c *Cancellation) *CancellationApprovedEvent {
	e := &CancellationApprovedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeCancellationApproved, AggregateTypeCancellation, c.ID),
		CancellationID:     c.ID,
		CancellationNumber: c.CancellationNumber,
		SaleID:             c.SaleID,
		PlotID:             c.PlotID,
		ClientID:           c.ClientID,
		TotalPaid:          c.TotalPaid,
		OfficeCharge:       c.OfficeCharge,
		RefundableAmount:   c.RefundableAmount,
	}
	if c.DecidedBy != nil {
		e.ApprovedBy = *c.DecidedBy
	}
	return e
}

// CancellationRejectedEvent is raised when a cancellation request is turned down
type CancellationRejectedEvent struct {
	shared.BaseDomainEvent
	CancellationID uuid.UUID  `json:"cancellation_id"`
	SaleID         uuid.UUID  `json:"sale_id"`
	RestoredStatus SaleStatus `json:"restored_status"`
	Reason         string     `json:"reason"`
}

// NewCancellationRejectedEvent creates a new CancellationRejectedEvent
func NewCancellationRejectedEvent(c *Cancellation) *CancellationRejectedEvent {
	return &CancellationRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancellationRejected, AggregateTypeCancellation, c.ID),
		CancellationID:  c.ID,
		SaleID:          c.SaleID,
		RestoredStatus:  c.PriorSaleStatus,
		Reason:          c.DecisionRemarks,
	}
}

// RefundRecordedEvent is raised for every refund payout
type RefundRecordedEvent struct {
	shared.BaseDomainEvent
	CancellationID uuid.UUID          `json:"cancellation_id"`
	ClientID       uuid.UUID          `json:"client_id"`
	Amount         decimal.Decimal    `json:"amount"`
	RefundedAmount decimal.Decimal    `json:"refunded_amount"`
	Status         CancellationStatus `json:"status"`
}

// NewRefundRecordedEvent creates a new RefundRecordedEvent
func NewRefundRecordedEvent(c *Cancellation, p RefundPayment) *RefundRecordedEvent {
	return &RefundRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRecorded, AggregateTypeCancellation, c.ID),
		CancellationID:  c.ID,
		ClientID:        c.ClientID,
		Amount:          p.Amount,
		RefundedAmount:  c.RefundedAmount,
		Status:          c.Status,
	}
}

// InstallmentReminderEvent is published by the reminder job for a due or overdue stage
type InstallmentReminderEvent struct {
	shared.BaseDomainEvent
	Installment InstallmentDue `json:"installment"`
	AsOf        time.Time      `json:"as_of"`
}

// NewInstallmentReminderEvent creates a new InstallmentReminderEvent
func NewInstallmentReminderEvent(due InstallmentDue, asOf time.Time) *InstallmentReminderEvent {
	return &InstallmentReminderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentReminder, AggregateTypeSale, due.SaleID),
		Installment:     due,
		AsOf:            asOf,
	}
}
