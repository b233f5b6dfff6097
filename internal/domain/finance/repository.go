package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/shared"
)

// ReceiptFilter defines filtering options for receipt queries
type ReceiptFilter struct {
	shared.Filter
	Status   *approval.Status
	SaleID   *uuid.UUID
	ClientID *uuid.UUID
	Method   *PaymentMethod
	FromDate *time.Time
	ToDate   *time.Time
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindByIDForUpdate finds a receipt and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Receipt, error)

	FindAll(ctx context.Context, filter ReceiptFilter) ([]Receipt, int64, error)

	// FindApprovedBySale lists approved receipts of a sale ordered by approval time
	FindApprovedBySale(ctx context.Context, saleID uuid.UUID) ([]Receipt, error)

	// Save creates a new receipt
	Save(ctx context.Context, receipt *Receipt) error

	// SaveWithLock updates a receipt with optimistic locking and appends new history entries
	SaveWithLock(ctx context.Context, receipt *Receipt) error
}

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	Status     *approval.Status
	CategoryID *uuid.UUID
	AccountID  *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, int64, error)
	Save(ctx context.Context, expense *Expense) error
	SaveWithLock(ctx context.Context, expense *Expense) error
}

// ExpenseCategoryRepository defines the interface for expense category persistence
type ExpenseCategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseCategory, error)
	FindAll(ctx context.Context, activeOnly bool) ([]ExpenseCategory, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, category *ExpenseCategory) error
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByIDForUpdate finds an account and row-locks it for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	FindAll(ctx context.Context, kind *AccountKind, activeOnly bool) ([]Account, error)

	// FindTransactions lists ledger lines of an account, newest first
	FindTransactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]AccountTransaction, int64, error)

	// Save creates a new account
	Save(ctx context.Context, account *Account) error

	// SaveWithLock updates an account with optimistic locking and inserts its pending ledger lines
	SaveWithLock(ctx context.Context, account *Account) error
}
