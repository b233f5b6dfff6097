package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// InstrumentRequest carries cheque or PDC details
type InstrumentRequest struct {
	BankName     string     `json:"bank_name" binding:"max=100"`
	ChequeNumber string     `json:"cheque_number" binding:"max=50"`
	ChequeDate   *time.Time `json:"cheque_date"`
}

func (r InstrumentRequest) toDomain() finance.Instrument {
	return finance.Instrument{
		BankName:     r.BankName,
		ChequeNumber: r.ChequeNumber,
		ChequeDate:   r.ChequeDate,
	}
}

// CreateReceiptRequest records a client payment against a sale
type CreateReceiptRequest struct {
	SaleID       uuid.UUID         `json:"sale_id" binding:"required"`
	ReceiptType  string            `json:"receipt_type" binding:"required,oneof=BOOKING INSTALLMENT REGISTRATION HANDOVER OTHER"`
	Amount       decimal.Decimal   `json:"amount" binding:"required,gt=0"`
	Method       string            `json:"payment_method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE PDC MOBILE_WALLET"`
	Instrument   InstrumentRequest `json:"instrument"`
	AccountID    *uuid.UUID        `json:"account_id"`
	ReceivedDate time.Time         `json:"received_date" binding:"required"`
	Notes        string            `json:"notes" binding:"max=1000"`
}

// UpdateReceiptRequest replaces the editable content of a draft receipt
type UpdateReceiptRequest struct {
	ReceiptType  string            `json:"receipt_type" binding:"required,oneof=BOOKING INSTALLMENT REGISTRATION HANDOVER OTHER"`
	Amount       decimal.Decimal   `json:"amount" binding:"required,gt=0"`
	Method       string            `json:"payment_method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE PDC MOBILE_WALLET"`
	Instrument   InstrumentRequest `json:"instrument"`
	AccountID    *uuid.UUID        `json:"account_id"`
	ReceivedDate time.Time         `json:"received_date" binding:"required"`
	Notes        string            `json:"notes" binding:"max=1000"`
}

func receiptDetails(receiptType, method string, amount decimal.Decimal, instrument InstrumentRequest, accountID *uuid.UUID, received time.Time, notes string) finance.ReceiptDetails {
	return finance.ReceiptDetails{
		ReceiptType:  finance.ReceiptType(receiptType),
		Amount:       amount,
		Method:       finance.PaymentMethod(method),
		Instrument:   instrument.toDomain(),
		AccountID:    accountID,
		ReceivedDate: received,
		Notes:        notes,
	}
}

// WorkflowRequest carries the remarks of a submit, approve or reject action
type WorkflowRequest struct {
	Remarks string `json:"remarks" binding:"max=1000"`
}

// ReceiptListFilter defines list query parameters
type ReceiptListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	SaleID   string     `form:"sale_id"`
	ClientID string     `form:"client_id"`
	Method   string     `form:"payment_method"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// HistoryEntryResponse is one line of approval history
type HistoryEntryResponse struct {
	Sequence   int       `json:"sequence"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Role       string    `json:"role"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Remarks    string    `json:"remarks,omitempty"`
	At         time.Time `json:"at"`
}

// ToHistoryResponse converts approval history to responses
func ToHistoryResponse(entries []approval.Entry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			Sequence:   e.Sequence,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			Role:       string(e.Role),
			Action:     string(e.Action),
			FromStatus: e.FromStatus.String(),
			ToStatus:   e.ToStatus.String(),
			Remarks:    e.Remarks,
			At:         e.At,
		}
	}
	return out
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID            uuid.UUID              `json:"id"`
	ReceiptNumber string                 `json:"receipt_number"`
	SaleID        uuid.UUID              `json:"sale_id"`
	ClientID      uuid.UUID              `json:"client_id"`
	ReceiptType   string                 `json:"receipt_type"`
	Amount        decimal.Decimal        `json:"amount"`
	Method        string                 `json:"payment_method"`
	BankName      string                 `json:"bank_name,omitempty"`
	ChequeNumber  string                 `json:"cheque_number,omitempty"`
	ChequeDate    *time.Time             `json:"cheque_date,omitempty"`
	AccountID     *uuid.UUID             `json:"account_id,omitempty"`
	ReceivedDate  time.Time              `json:"received_date"`
	Notes         string                 `json:"notes,omitempty"`
	HasAttachment bool                   `json:"has_attachment"`
	Status        string                 `json:"status"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	SubmittedAt   *time.Time             `json:"submitted_at,omitempty"`
	DecidedAt     *time.Time             `json:"decided_at,omitempty"`
	History       []HistoryEntryResponse `json:"history,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// ToReceiptResponse converts a domain Receipt to ReceiptResponse
func ToReceiptResponse(r *finance.Receipt) ReceiptResponse {
	wf := r.Workflow()
	return ReceiptResponse{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		SaleID:        r.SaleID,
		ClientID:      r.ClientID,
		ReceiptType:   string(r.ReceiptType),
		Amount:        r.Amount,
		Method:        string(r.Method),
		BankName:      r.Instrument.BankName,
		ChequeNumber:  r.Instrument.ChequeNumber,
		ChequeDate:    r.Instrument.ChequeDate,
		AccountID:     r.AccountID,
		ReceivedDate:  r.ReceivedDate,
		Notes:         r.Notes,
		HasAttachment: r.AttachmentKey != "",
		Status:        wf.Status.String(),
		CreatedBy:     r.CreatedBy,
		SubmittedAt:   wf.SubmittedAt,
		DecidedAt:     wf.DecidedAt,
		History:       ToHistoryResponse(wf.History()),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
}

// CreateExpenseRequest records an expense paid from an account
type CreateExpenseRequest struct {
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE PDC MOBILE_WALLET"`
	AccountID     uuid.UUID       `json:"account_id" binding:"required"`
	Description   string          `json:"description" binding:"required,max=500"`
	ExpenseDate   time.Time       `json:"expense_date" binding:"required"`
}

// UpdateExpenseRequest replaces the editable content of a draft expense
type UpdateExpenseRequest = CreateExpenseRequest

func (r CreateExpenseRequest) toDomain() finance.ExpenseDetails {
	return finance.ExpenseDetails{
		CategoryID:    r.CategoryID,
		Amount:        r.Amount,
		PaymentMethod: finance.PaymentMethod(r.PaymentMethod),
		AccountID:     r.AccountID,
		Description:   r.Description,
		ExpenseDate:   r.ExpenseDate,
	}
}

// ExpenseListFilter defines list query parameters
type ExpenseListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	CategoryID string     `form:"category_id"`
	AccountID  string     `form:"account_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID              `json:"id"`
	ExpenseNumber string                 `json:"expense_number"`
	CategoryID    uuid.UUID              `json:"category_id"`
	Amount        decimal.Decimal        `json:"amount"`
	PaymentMethod string                 `json:"payment_method"`
	AccountID     uuid.UUID              `json:"account_id"`
	Description   string                 `json:"description"`
	ExpenseDate   time.Time              `json:"expense_date"`
	HasAttachment bool                   `json:"has_attachment"`
	Status        string                 `json:"status"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	SubmittedAt   *time.Time             `json:"submitted_at,omitempty"`
	DecidedAt     *time.Time             `json:"decided_at,omitempty"`
	History       []HistoryEntryResponse `json:"history,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// ToExpenseResponse converts a domain Expense to ExpenseResponse
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	wf := e.Workflow()
	return ExpenseResponse{
		ID:            e.ID,
		ExpenseNumber: e.ExpenseNumber,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		PaymentMethod: string(e.PaymentMethod),
		AccountID:     e.AccountID,
		Description:   e.Description,
		ExpenseDate:   e.ExpenseDate,
		HasAttachment: e.AttachmentKey != "",
		Status:        wf.Status.String(),
		CreatedBy:     e.CreatedBy,
		SubmittedAt:   wf.SubmittedAt,
		DecidedAt:     wf.DecidedAt,
		History:       ToHistoryResponse(wf.History()),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}

// CreateExpenseCategoryRequest creates an expense category
type CreateExpenseCategoryRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=20"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// ExpenseCategoryResponse represents an expense category
type ExpenseCategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// ToExpenseCategoryResponse converts a domain ExpenseCategory to its response
func ToExpenseCategoryResponse(c *finance.ExpenseCategory) ExpenseCategoryResponse {
	return ExpenseCategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

// CreateAccountRequest opens a bank account or cash box
type CreateAccountRequest struct {
	Kind           string          `json:"kind" binding:"required,oneof=BANK CASH"`
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	BankName       string          `json:"bank_name" binding:"max=100"`
	AccountNumber  string          `json:"account_number" binding:"max=50"`
	Branch         string          `json:"branch" binding:"max=100"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// UpdateAccountRequest edits the descriptive fields of an account
type UpdateAccountRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	BankName      string `json:"bank_name" binding:"max=100"`
	AccountNumber string `json:"account_number" binding:"max=50"`
	Branch        string `json:"branch" binding:"max=100"`
}

// AccountListFilter defines list query parameters
type AccountListFilter struct {
	Kind       string `form:"kind"`
	ActiveOnly bool   `form:"active_only"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	BankName       string          `json:"bank_name,omitempty"`
	AccountNumber  string          `json:"account_number,omitempty"`
	Branch         string          `json:"branch,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	Version        int             `json:"version"`
}

// ToAccountResponse converts a domain Account to AccountResponse
func ToAccountResponse(a *finance.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Kind:           string(a.Kind),
		Name:           a.Name,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		Branch:         a.Branch,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		Version:        a.Version,
	}
}

// AccountTransactionResponse is one ledger line
type AccountTransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	SourceType   string          `json:"source_type"`
	SourceID     uuid.UUID       `json:"source_id"`
	Description  string          `json:"description,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// ToAccountTransactionResponse converts a ledger line to its response
func ToAccountTransactionResponse(t finance.AccountTransaction) AccountTransactionResponse {
	return AccountTransactionResponse{
		ID:           t.ID,
		Direction:    string(t.Direction),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		SourceType:   t.SourceType,
		SourceID:     t.SourceID,
		Description:  t.Description,
		OccurredAt:   t.OccurredAt,
	}
}

// AttachmentUploadRequest asks for a presigned upload URL
type AttachmentUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// AttachmentURLResponse carries a presigned URL
type AttachmentURLResponse struct {
	URL        string    `json:"url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}
