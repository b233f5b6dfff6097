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

// SubjectTypeExpense names expenses in approval history and lock keys
const SubjectTypeExpense = "expense"

// ExpenseCategory groups expenses for reporting
type ExpenseCategory struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	IsActive    bool
}

// NewExpenseCategory creates an active expense category
func NewExpenseCategory(code, name, description string) (*ExpenseCategory, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewValidationError("Category code must be 1 to 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Category name cannot be empty")
	}
	return &ExpenseCategory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Description:       strings.TrimSpace(description),
		IsActive:          true,
	}, nil
}

// Deactivate hides the category from new expenses
func (c *ExpenseCategory) Deactivate() {
	c.IsActive = false
	c.IncrementVersion()
}

// Activate makes the category selectable again
func (c *ExpenseCategory) Activate() {
	c.IsActive = true
	c.IncrementVersion()
}

// ExpenseDetails is the editable content of an expense
type ExpenseDetails struct {
	CategoryID    uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	AccountID     uuid.UUID
	Description   string
	ExpenseDate   time.Time
}

func (d ExpenseDetails) normalize() (ExpenseDetails, error) {
	if d.CategoryID == uuid.Nil {
		return d, shared.NewValidationError("Expense category is required")
	}
	if d.AccountID == uuid.Nil {
		return d, shared.NewValidationError("Paying account is required")
	}
	d.Amount = valueobject.RoundMoney(d.Amount)
	if !d.Amount.IsPositive() {
		return d, shared.NewValidationError("Expense amount must be positive")
	}
	if !d.PaymentMethod.IsValid() {
		return d, shared.NewValidationError("Invalid payment method: " + string(d.PaymentMethod))
	}
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return d, shared.NewValidationError("Description cannot be empty")
	}
	if len(d.Description) > 500 {
		return d, shared.NewValidationError("Description cannot exceed 500 characters")
	}
	if d.ExpenseDate.IsZero() {
		return d, shared.NewValidationError("Expense date is required")
	}
	return d, nil
}

// Expense is money paid out of a company account. The account is debited
// once the expense reaches APPROVED.
type Expense struct {
	shared.AuditedAggregateRoot
	ExpenseNumber string
	ExpenseDetails
	AttachmentKey string
	workflow      approval.Workflow
}

// NewExpense creates a draft expense
func NewExpense(expenseNumber string, details ExpenseDetails, createdBy uuid.UUID) (*Expense, error) {
	if strings.TrimSpace(expenseNumber) == "" {
		return nil, shared.NewValidationError("Expense number cannot be empty")
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	return &Expense{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		ExpenseNumber:        expenseNumber,
		ExpenseDetails:       details,
		workflow:             approval.New(createdBy),
	}, nil
}

// RestoreWorkflow attaches persisted workflow state to a loaded expense
func (e *Expense) RestoreWorkflow(w approval.Workflow) {
	e.workflow = w
}

// Update edits a draft expense
func (e *Expense) Update(details ExpenseDetails) error {
	if e.workflow.Status != approval.StatusDraft {
		return shared.NewInvalidStateError("Only draft expenses can be edited, current status " + e.workflow.Status.String())
	}
	details, err := details.normalize()
	if err != nil {
		return err
	}
	e.ExpenseDetails = details
	e.IncrementVersion()
	return nil
}

// AttachDocument records the storage key of the bill or voucher scan
func (e *Expense) AttachDocument(key string) error {
	if e.workflow.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot change the attachment of a decided expense")
	}
	if strings.TrimSpace(key) == "" {
		return shared.NewValidationError("Attachment key cannot be empty")
	}
	e.AttachmentKey = key
	e.IncrementVersion()
	return nil
}

// Status returns the approval status
func (e *Expense) Status() approval.Status {
	return e.workflow.Status
}

// SubjectType implements approval.Subject
func (e *Expense) SubjectType() string {
	return SubjectTypeExpense
}

// Workflow implements approval.Subject
func (e *Expense) Workflow() *approval.Workflow {
	return &e.workflow
}

// OnSubmitted implements approval.Subject
func (e *Expense) OnSubmitted(actor shared.Actor) {
	e.IncrementVersion()
}

// OnApproved implements approval.Subject
func (e *Expense) OnApproved(actor shared.Actor, final bool) {
	e.IncrementVersion()
	if final {
		e.AddDomainEvent(NewExpenseApprovedEvent(e, actor))
	}
}

// OnRejected implements approval.Subject
func (e *Expense) OnRejected(actor shared.Actor, remarks string) {
	e.IncrementVersion()
	e.AddDomainEvent(NewExpenseRejectedEvent(e, actor, remarks))
}
