package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements finance.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Account, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an account and locks its row
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Account, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormAccountRepository) find(db *gorm.DB, id uuid.UUID) (*finance.Account, error) {
	var model models.AccountModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists accounts, optionally of one kind and only active ones
func (r *GormAccountRepository) FindAll(ctx context.Context, kind *finance.AccountKind, activeOnly bool) ([]finance.Account, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.AccountModel
	if err := query.Order("kind ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]finance.Account, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// FindTransactions lists ledger lines of an account, newest first by default
func (r *GormAccountRepository) FindTransactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]finance.AccountTransaction, int64, error) {
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.AccountTransactionModel{}).
			Where("account_id = ?", accountID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AccountTransactionModel
	if err := applyPaging(scoped(), filter, ledgerSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]finance.AccountTransaction, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, total, nil
}

// Save creates a new account together with any ledger lines it already posted
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.Account) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.AccountModelFromDomain(account)).Error; err != nil {
		return err
	}
	if err := insertLedgerLines(db, account.PendingTransactions()); err != nil {
		return err
	}
	account.ClearPendingTransactions()
	account.MarkPersisted()
	return nil
}

// SaveWithLock updates an account and inserts its pending ledger lines
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *finance.Account) error {
	db := r.db.WithContext(ctx)
	err := updateVersioned(db, &models.AccountModel{}, "Account", account.ID, account.PersistedVersion(), map[string]any{
		"name":            account.Name,
		"bank_name":       account.BankName,
		"account_number":  account.AccountNumber,
		"branch":          account.Branch,
		"current_balance": account.CurrentBalance,
		"is_active":       account.IsActive,
		"version":         account.Version,
		"updated_at":      account.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := insertLedgerLines(db, account.PendingTransactions()); err != nil {
		return err
	}
	account.ClearPendingTransactions()
	account.MarkPersisted()
	return nil
}

func insertLedgerLines(db *gorm.DB, lines []finance.AccountTransaction) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.AccountTransactionModel, len(lines))
	for i, line := range lines {
		rows[i] = models.AccountTransactionModelFromDomain(line)
	}
	return db.Create(&rows).Error
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)
