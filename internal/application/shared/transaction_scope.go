// Package shared provides the unit of work used by every application
// service: keyed locks, one database transaction, and event publication
// after commit.
package shared

import (
	"context"
	"time"

	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/settings"
)

// TransactionScope provides transactional access to repositories.
// All repository operations inside fn share one database transaction and
// are committed or rolled back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all repositories within a transaction
type Repositories interface {
	RSNumbers() land.RSNumberRepository
	Plots() land.PlotRepository
	Sales() sales.SaleRepository
	Cancellations() sales.CancellationRepository
	Receipts() finance.ReceiptRepository
	Expenses() finance.ExpenseRepository
	ExpenseCategories() finance.ExpenseCategoryRepository
	Accounts() finance.AccountRepository
	Clients() partner.ClientRepository
	Settings() settings.Repository
	Sequences() NumberSequence
}

// Document number prefixes
const (
	PrefixSale         = "SL"
	PrefixReceipt      = "RCV"
	PrefixExpense      = "EXP"
	PrefixCancellation = "CAN"
)

// NumberSequence hands out gap-free document numbers such as
// SL-202601-00001. The counter is per prefix and month and is advanced
// inside the caller's transaction.
type NumberSequence interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// Lock key kinds
const (
	LockRSNumber     = "rsnumber"
	LockPlot         = "plot"
	LockSale         = "sale"
	LockReceipt      = "receipt"
	LockExpense      = "expense"
	LockCancellation = "cancellation"
	LockAccount      = "account"
	LockClient       = "client"
)
