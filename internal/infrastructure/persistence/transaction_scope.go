package persistence

import (
	"context"

	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/settings"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories exposes every repository bound to one *gorm.DB, which is
// either a transaction or the plain connection for reads.
type GormRepositories struct {
	tx *gorm.DB
}

// NewGormRepositories binds all repositories to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: db}
}

// RSNumbers returns the RS number repository
func (r *GormRepositories) RSNumbers() land.RSNumberRepository {
	return NewGormRSNumberRepository(r.tx)
}

// Plots returns the plot repository
func (r *GormRepositories) Plots() land.PlotRepository {
	return NewGormPlotRepository(r.tx)
}

// Sales returns the sale repository
func (r *GormRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Cancellations returns the cancellation repository
func (r *GormRepositories) Cancellations() sales.CancellationRepository {
	return NewGormCancellationRepository(r.tx)
}

// Receipts returns the receipt repository
func (r *GormRepositories) Receipts() finance.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

// Expenses returns the expense repository
func (r *GormRepositories) Expenses() finance.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

// ExpenseCategories returns the expense category repository
func (r *GormRepositories) ExpenseCategories() finance.ExpenseCategoryRepository {
	return NewGormExpenseCategoryRepository(r.tx)
}

// Accounts returns the account repository
func (r *GormRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Clients returns the client repository
func (r *GormRepositories) Clients() partner.ClientRepository {
	return NewGormClientRepository(r.tx)
}

// Settings returns the settings repository
func (r *GormRepositories) Settings() settings.Repository {
	return NewGormSettingsRepository(r.tx)
}

// Sequences returns the document number sequence
func (r *GormRepositories) Sequences() appshared.NumberSequence {
	return NewGormNumberSequence(r.tx)
}

var (
	_ appshared.TransactionScope = (*GormTransactionScope)(nil)
	_ appshared.Repositories     = (*GormRepositories)(nil)
)
