package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense with its approval history
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an expense and locks its row
func (r *GormExpenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	return r.find(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormExpenseRepository) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	history, err := loadHistory(r.db.WithContext(ctx), finance.SubjectTypeExpense, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(history[model.ID]), nil
}

// FindAll lists expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.AccountID != nil {
			query = query.Where("account_id = ?", *filter.AccountID)
		}
		if filter.FromDate != nil {
			query = query.Where("expense_date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			query = query.Where("expense_date <= ?", *filter.ToDate)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			query = query.Where("LOWER(expense_number) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ExpenseModel
	if err := applyPaging(scoped(), filter.Filter, expenseSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	history, err := loadHistory(r.db.WithContext(ctx), finance.SubjectTypeExpense, ids...)
	if err != nil {
		return nil, 0, err
	}
	items := make([]finance.Expense, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain(history[rows[i].ID])
	}
	return items, total, nil
}

// Save creates a new expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ExpenseModelFromDomain(expense)).Error; err != nil {
		return err
	}
	if err := appendHistory(db, finance.SubjectTypeExpense, expense.ID, expense.Workflow().History()); err != nil {
		return err
	}
	expense.MarkPersisted()
	return nil
}

// SaveWithLock updates an expense and appends new approval history entries
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.Expense) error {
	db := r.db.WithContext(ctx)
	wf := expense.Workflow()
	err := updateVersioned(db, &models.ExpenseModel{}, "Expense", expense.ID, expense.PersistedVersion(), map[string]any{
		"category_id":    expense.CategoryID,
		"amount":         expense.Amount,
		"payment_method": expense.PaymentMethod,
		"account_id":     expense.AccountID,
		"description":    expense.Description,
		"expense_date":   expense.ExpenseDate,
		"attachment_key": expense.AttachmentKey,
		"status":         wf.Status,
		"submitted_at":   wf.SubmittedAt,
		"decided_at":     wf.DecidedAt,
		"version":        expense.Version,
		"updated_at":     expense.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := appendHistory(db, finance.SubjectTypeExpense, expense.ID, wf.History()); err != nil {
		return err
	}
	expense.MarkPersisted()
	return nil
}

// GormExpenseCategoryRepository implements finance.ExpenseCategoryRepository using GORM
type GormExpenseCategoryRepository struct {
	db *gorm.DB
}

// NewGormExpenseCategoryRepository creates a new GormExpenseCategoryRepository
func NewGormExpenseCategoryRepository(db *gorm.DB) *GormExpenseCategoryRepository {
	return &GormExpenseCategoryRepository{db: db}
}

// FindByID finds an expense category by ID
func (r *GormExpenseCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ExpenseCategory, error) {
	var model models.ExpenseCategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists expense categories ordered by name
func (r *GormExpenseCategoryRepository) FindAll(ctx context.Context, activeOnly bool) ([]finance.ExpenseCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseCategoryModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.ExpenseCategoryModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]finance.ExpenseCategory, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// ExistsByCode checks whether a category code is taken
func (r *GormExpenseCategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ExpenseCategoryModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an expense category
func (r *GormExpenseCategoryRepository) Save(ctx context.Context, category *finance.ExpenseCategory) error {
	if err := r.db.WithContext(ctx).Save(models.ExpenseCategoryModelFromDomain(category)).Error; err != nil {
		return err
	}
	category.MarkPersisted()
	return nil
}

var (
	_ finance.ExpenseRepository         = (*GormExpenseRepository)(nil)
	_ finance.ExpenseCategoryRepository = (*GormExpenseCategoryRepository)(nil)
)
