package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeReceipt = "Receipt"
	AggregateTypeExpense = "Expense"
)

// Event type names
const (
	EventTypeReceiptApproved = "ReceiptApproved"
	EventTypeReceiptRejected = "ReceiptRejected"
	EventTypeExpenseApproved = "ExpenseApproved"
	EventTypeExpenseRejected = "ExpenseRejected"
)

// ReceiptApprovedEvent is raised when a receipt clears the HOF gate
type ReceiptApprovedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	AccountID     *uuid.UUID      `json:"account_id,omitempty"`
	ReceivedDate  time.Time       `json:"received_date"`
	ApprovedBy    uuid.UUID       `json:"approved_by"`
}

// NewReceiptApprovedEvent creates a new ReceiptApprovedEvent
func NewReceiptApprovedEvent(r *Receipt, by shared.Actor) *ReceiptApprovedEvent {
	return &ReceiptApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptApproved, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		SaleID:          r.SaleID,
		ClientID:        r.ClientID,
		Amount:          r.Amount,
		Method:          r.Method,
		AccountID:       r.AccountID,
		ReceivedDate:    r.ReceivedDate,
		ApprovedBy:      by.UserID,
	}
}

// ReceiptRejectedEvent is raised when a receipt is rejected at either gate
type ReceiptRejectedEvent struct {
	shared.BaseDomainEvent
	ReceiptID  uuid.UUID `json:"receipt_id"`
	SaleID     uuid.UUID `json:"sale_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Remarks    string    `json:"remarks"`
}

// NewReceiptRejectedEvent creates a new ReceiptRejectedEvent
func NewReceiptRejectedEvent(r *Receipt, by shared.Actor, remarks string) *ReceiptRejectedEvent {
	return &ReceiptRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptRejected, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		SaleID:          r.SaleID,
		RejectedBy:      by.UserID,
		Remarks:         remarks,
	}
}

// ExpenseApprovedEvent is raised when an expense clears the HOF gate
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	CategoryID    uuid.UUID       `json:"category_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	ApprovedBy    uuid.UUID       `json:"approved_by"`
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(e *Expense, by shared.Actor) *ExpenseApprovedEvent {
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseApproved, AggregateTypeExpense, e.ID),
		ExpenseID:       e.ID,
		ExpenseNumber:   e.ExpenseNumber,
		CategoryID:      e.CategoryID,
		AccountID:       e.AccountID,
		Amount:          e.Amount,
		ApprovedBy:      by.UserID,
	}
}

// ExpenseRejectedEvent is raised when an expense is rejected at either gate
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	ExpenseID  uuid.UUID `json:"expense_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Remarks    string    `json:"remarks"`
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(e *Expense, by shared.Actor, remarks string) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRejected, AggregateTypeExpense, e.ID),
		ExpenseID:       e.ID,
		RejectedBy:      by.UserID,
		Remarks:         remarks,
	}
}
