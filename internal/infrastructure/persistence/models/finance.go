package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ReceiptModel is the persistence model for the Receipt aggregate root.
// History lives in approval_history and is loaded separately.
type ReceiptModel struct {
	AuditedAggregateModel
	WorkflowColumns
	ReceiptNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	SaleID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReceiptType   finance.ReceiptType   `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method        finance.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	BankName      string                `gorm:"type:varchar(100)"`
	ChequeNumber  string                `gorm:"type:varchar(50)"`
	ChequeDate    *time.Time
	AccountID     *uuid.UUID `gorm:"type:uuid;index"`
	ReceivedDate  time.Time  `gorm:"not null;index"`
	Notes         string     `gorm:"type:text"`
	AttachmentKey string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain(history []ApprovalEntryModel) *finance.Receipt {
	r := &finance.Receipt{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		ReceiptNumber:        m.ReceiptNumber,
		ClientID:             m.ClientID,
		SaleID:               m.SaleID,
		ReceiptDetails: finance.ReceiptDetails{
			ReceiptType: m.ReceiptType,
			Amount:      m.Amount,
			Method:      m.Method,
			Instrument: finance.Instrument{
				BankName:     m.BankName,
				ChequeNumber: m.ChequeNumber,
				ChequeDate:   m.ChequeDate,
			},
			AccountID:    m.AccountID,
			ReceivedDate: m.ReceivedDate,
			Notes:        m.Notes,
		},
		AttachmentKey: m.AttachmentKey,
	}
	r.RestoreWorkflow(m.ToWorkflow(m.CreatedBy, history))
	r.MarkPersisted()
	return r
}

// FromDomain populates the persistence model from a domain Receipt
func (m *ReceiptModel) FromDomain(r *finance.Receipt) {
	m.FromDomainAuditedAggregateRoot(r.AuditedAggregateRoot)
	m.FromWorkflow(r.Workflow())
	m.ReceiptNumber = r.ReceiptNumber
	m.ClientID = r.ClientID
	m.SaleID = r.SaleID
	m.ReceiptType = r.ReceiptType
	m.Amount = r.Amount
	m.Method = r.Method
	m.BankName = r.Instrument.BankName
	m.ChequeNumber = r.Instrument.ChequeNumber
	m.ChequeDate = r.Instrument.ChequeDate
	m.AccountID = r.AccountID
	m.ReceivedDate = r.ReceivedDate
	m.Notes = r.Notes
	m.AttachmentKey = r.AttachmentKey
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt
func ReceiptModelFromDomain(r *finance.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// ExpenseModel is the persistence model for the Expense aggregate root.
type ExpenseModel struct {
	AuditedAggregateModel
	WorkflowColumns
	ExpenseNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	CategoryID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentMethod finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	AccountID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description   string                `gorm:"type:varchar(500);not null"`
	ExpenseDate   time.Time             `gorm:"not null;index"`
	AttachmentKey string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain(history []ApprovalEntryModel) *finance.Expense {
	e := &finance.Expense{
		AuditedAggregateRoot: m.ToAuditedAggregateRoot(),
		ExpenseNumber:        m.ExpenseNumber,
		ExpenseDetails: finance.ExpenseDetails{
			CategoryID:    m.CategoryID,
			Amount:        m.Amount,
			PaymentMethod: m.PaymentMethod,
			AccountID:     m.AccountID,
			Description:   m.Description,
			ExpenseDate:   m.ExpenseDate,
		},
		AttachmentKey: m.AttachmentKey,
	}
	e.RestoreWorkflow(m.ToWorkflow(m.CreatedBy, history))
	e.MarkPersisted()
	return e
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainAuditedAggregateRoot(e.AuditedAggregateRoot)
	m.FromWorkflow(e.Workflow())
	m.ExpenseNumber = e.ExpenseNumber
	m.CategoryID = e.CategoryID
	m.Amount = e.Amount
	m.PaymentMethod = e.PaymentMethod
	m.AccountID = e.AccountID
	m.Description = e.Description
	m.ExpenseDate = e.ExpenseDate
	m.AttachmentKey = e.AttachmentKey
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// ExpenseCategoryModel is the persistence model for expense categories
type ExpenseCategoryModel struct {
	AggregateModel
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:varchar(500)"`
	IsActive    bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ExpenseCategoryModel) TableName() string {
	return "expense_categories"
}

// ToDomain converts the persistence model to a domain ExpenseCategory
func (m *ExpenseCategoryModel) ToDomain() *finance.ExpenseCategory {
	c := &finance.ExpenseCategory{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		IsActive:          m.IsActive,
	}
	c.MarkPersisted()
	return c
}

// ExpenseCategoryModelFromDomain creates a new persistence model from a domain ExpenseCategory
func ExpenseCategoryModelFromDomain(c *finance.ExpenseCategory) *ExpenseCategoryModel {
	m := &ExpenseCategoryModel{
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// AccountModel is the persistence model for the Account aggregate root
type AccountModel struct {
	AggregateModel
	Kind           finance.AccountKind `gorm:"type:varchar(10);not null;index"`
	Name           string              `gorm:"type:varchar(100);not null"`
	BankName       string              `gorm:"type:varchar(100)"`
	AccountNumber  string              `gorm:"type:varchar(50)"`
	Branch         string              `gorm:"type:varchar(100)"`
	OpeningBalance decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBalance decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive       bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *finance.Account {
	a := &finance.Account{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Kind:              m.Kind,
		Name:              m.Name,
		BankName:          m.BankName,
		AccountNumber:     m.AccountNumber,
		Branch:            m.Branch,
		OpeningBalance:    m.OpeningBalance,
		CurrentBalance:    m.CurrentBalance,
		IsActive:          m.IsActive,
	}
	a.MarkPersisted()
	return a
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *finance.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Kind = a.Kind
	m.Name = a.Name
	m.BankName = a.BankName
	m.AccountNumber = a.AccountNumber
	m.Branch = a.Branch
	m.OpeningBalance = a.OpeningBalance
	m.CurrentBalance = a.CurrentBalance
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *finance.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// AccountTransactionModel is one ledger line of an account
type AccountTransactionModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key"`
	AccountID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_account_tx_account_time,priority:1"`
	Direction    finance.Direction `gorm:"type:varchar(10);not null"`
	Amount       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	BalanceAfter decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	SourceType   string            `gorm:"type:varchar(20);not null"`
	SourceID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Description  string            `gorm:"type:varchar(500)"`
	OccurredAt   time.Time         `gorm:"not null;index:idx_account_tx_account_time,priority:2"`
}

// TableName returns the table name for GORM
func (AccountTransactionModel) TableName() string {
	return "account_transactions"
}

// ToDomain converts the persistence model to a domain AccountTransaction
func (m *AccountTransactionModel) ToDomain() finance.AccountTransaction {
	return finance.AccountTransaction{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Direction:    m.Direction,
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		SourceType:   m.SourceType,
		SourceID:     m.SourceID,
		Description:  m.Description,
		OccurredAt:   m.OccurredAt,
	}
}

// AccountTransactionModelFromDomain creates a ledger row from a domain AccountTransaction
func AccountTransactionModelFromDomain(t finance.AccountTransaction) AccountTransactionModel {
	return AccountTransactionModel{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Direction:    t.Direction,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		SourceType:   t.SourceType,
		SourceID:     t.SourceID,
		Description:  t.Description,
		OccurredAt:   t.OccurredAt,
	}
}
