package finance

import (
	"context"

	"github.com/google/uuid"
	appapproval "github.com/landerp/backend/internal/application/approval"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExpenseService records expenses and runs their approval
type ExpenseService struct {
	uow         *appshared.UnitOfWork
	engine      *appapproval.Engine[*finance.Expense]
	attachments *attachments
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(uow *appshared.UnitOfWork, storage ObjectStorage, config AttachmentConfig, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExpenseService{
		uow:         uow,
		attachments: newAttachments(storage, config),
		logger:      logger,
	}
	s.engine = appapproval.NewEngine(uow, appapproval.Binding[*finance.Expense]{
		Kind: appshared.LockExpense,
		Load: func(ctx context.Context, repos appshared.Repositories, id uuid.UUID, forUpdate bool) (*finance.Expense, error) {
			if forUpdate {
				return repos.Expenses().FindByIDForUpdate(ctx, id)
			}
			return repos.Expenses().FindByID(ctx, id)
		},
		Save: func(ctx context.Context, repos appshared.Repositories, e *finance.Expense) error {
			return repos.Expenses().SaveWithLock(ctx, e)
		},
		LockKeys: func(e *finance.Expense) []string {
			return []string{shared.LockKey(appshared.LockAccount, e.AccountID)}
		},
		OnApproved: s.debitAccount,
	}, logger)
	return s
}

// debitAccount pays the expense out of its account. INSUFFICIENT_BALANCE
// rolls the approval back.
func (s *ExpenseService) debitAccount(ctx context.Context, w *appshared.Work, e *finance.Expense) error {
	account, err := w.Repos.Accounts().FindByIDForUpdate(ctx, e.AccountID)
	if err != nil {
		return err
	}
	if _, err := account.Debit(e.Amount, finance.SubjectTypeExpense, e.ID, "Expense "+e.ExpenseNumber); err != nil {
		return err
	}
	if err := w.Repos.Accounts().SaveWithLock(ctx, account); err != nil {
		return err
	}
	s.logger.Info("Expense paid",
		zap.String("expense_number", e.ExpenseNumber),
		zap.String("account", account.Name),
		zap.String("amount", e.Amount.StringFixed(2)),
		zap.String("balance", account.CurrentBalance.StringFixed(2)),
	)
	return nil
}

// CreateExpense records a draft expense
func (s *ExpenseService) CreateExpense(ctx context.Context, actor shared.Actor, req CreateExpenseRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "create")
	defer span.End()
	telemetry.SetAttributes(span, "account_id", req.AccountID.String(), "amount", req.Amount.String())

	var expense *finance.Expense
	err := s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		if err := checkExpenseRefs(ctx, w.Repos, req); err != nil {
			return err
		}
		number, err := w.Repos.Sequences().Next(ctx, appshared.PrefixExpense, req.ExpenseDate)
		if err != nil {
			return err
		}
		if expense, err = finance.NewExpense(number, req.toDomain(), actor.UserID); err != nil {
			return err
		}
		w.Track(expense)
		return w.Repos.Expenses().Save(ctx, expense)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.String("expense_number", expense.ExpenseNumber),
		zap.String("amount", expense.Amount.StringFixed(2)),
	)
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// UpdateExpense edits a draft expense
func (s *ExpenseService) UpdateExpense(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	var expense *finance.Expense
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockExpense, id)}, func(w *appshared.Work) error {
		var err error
		if expense, err = w.Repos.Expenses().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := checkOwner(actor, expense.CreatedBy); err != nil {
			return err
		}
		if err := checkExpenseRefs(ctx, w.Repos, req); err != nil {
			return err
		}
		if err := expense.Update(req.toDomain()); err != nil {
			return err
		}
		return w.Repos.Expenses().SaveWithLock(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

func checkExpenseRefs(ctx context.Context, repos appshared.Repositories, req CreateExpenseRequest) error {
	category, err := repos.ExpenseCategories().FindByID(ctx, req.CategoryID)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return shared.NewInvalidStateError("Expense category " + category.Code + " is inactive")
	}
	return checkAccount(ctx, repos, &req.AccountID)
}

// GetExpense returns an expense with its approval history
func (s *ExpenseService) GetExpense(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	var resp ExpenseResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		expense, err := repos.Expenses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToExpenseResponse(expense)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListExpenses lists expenses
func (s *ExpenseService) ListExpenses(ctx context.Context, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := finance.ExpenseFilter{FromDate: filter.FromDate, ToDate: filter.ToDate}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := approval.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid expense status: " + filter.Status)
		}
		domainFilter.Status = &status
	}
	var err error
	if domainFilter.CategoryID, err = parseOptionalID("category_id", filter.CategoryID); err != nil {
		return nil, 0, err
	}
	if domainFilter.AccountID, err = parseOptionalID("account_id", filter.AccountID); err != nil {
		return nil, 0, err
	}

	var (
		out   []ExpenseResponse
		total int64
	)
	err = s.uow.Read(ctx, func(repos appshared.Repositories) error {
		expenses, n, err := repos.Expenses().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total = n
		out = make([]ExpenseResponse, len(expenses))
		for i := range expenses {
			out[i] = ToExpenseResponse(&expenses[i])
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SubmitExpense sends a draft expense to the accounts manager
func (s *ExpenseService) SubmitExpense(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ExpenseResponse, error) {
	return s.respond(s.engine.Submit(ctx, actor, id, req.Remarks))
}

// ApproveExpense passes the current gate. The final approval debits the account.
func (s *ExpenseService) ApproveExpense(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ExpenseResponse, error) {
	return s.respond(s.engine.Approve(ctx, actor, id, req.Remarks))
}

// RejectExpense rejects a pending expense
func (s *ExpenseService) RejectExpense(ctx context.Context, actor shared.Actor, id uuid.UUID, req WorkflowRequest) (*ExpenseResponse, error) {
	return s.respond(s.engine.Reject(ctx, actor, id, req.Remarks))
}

// ExpenseHistory returns the approval history of an expense
func (s *ExpenseService) ExpenseHistory(ctx context.Context, id uuid.UUID) ([]HistoryEntryResponse, error) {
	entries, err := s.engine.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponse(entries), nil
}

// RequestUploadURL attaches a voucher key to the expense and returns a presigned upload URL
func (s *ExpenseService) RequestUploadURL(ctx context.Context, actor shared.Actor, id uuid.UUID, req AttachmentUploadRequest) (*AttachmentURLResponse, error) {
	key, err := s.attachments.storageKey("expenses", id, req)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, []string{shared.LockKey(appshared.LockExpense, id)}, func(w *appshared.Work) error {
		expense, err := w.Repos.Expenses().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := expense.AttachDocument(key); err != nil {
			return err
		}
		return w.Repos.Expenses().SaveWithLock(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	return s.attachments.uploadURL(ctx, key, req.ContentType)
}

// DownloadURL returns a presigned URL for the attached voucher
func (s *ExpenseService) DownloadURL(ctx context.Context, id uuid.UUID) (*AttachmentURLResponse, error) {
	var key string
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		expense, err := repos.Expenses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		key = expense.AttachmentKey
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.attachments.downloadURL(ctx, key)
}

func (s *ExpenseService) respond(e *finance.Expense, err error) (*ExpenseResponse, error) {
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// CreateCategory creates an expense category
func (s *ExpenseService) CreateCategory(ctx context.Context, req CreateExpenseCategoryRequest) (*ExpenseCategoryResponse, error) {
	category, err := finance.NewExpenseCategory(req.Code, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		exists, err := w.Repos.ExpenseCategories().ExistsByCode(ctx, category.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Expense category "+category.Code+" already exists")
		}
		return w.Repos.ExpenseCategories().Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseCategoryResponse(category)
	return &resp, nil
}

// SetCategoryActive activates or deactivates a category
func (s *ExpenseService) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (*ExpenseCategoryResponse, error) {
	var category *finance.ExpenseCategory
	err := s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		var err error
		if category, err = w.Repos.ExpenseCategories().FindByID(ctx, id); err != nil {
			return err
		}
		if active {
			category.Activate()
		} else {
			category.Deactivate()
		}
		return w.Repos.ExpenseCategories().Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseCategoryResponse(category)
	return &resp, nil
}

// ListCategories lists expense categories
func (s *ExpenseService) ListCategories(ctx context.Context, activeOnly bool) ([]ExpenseCategoryResponse, error) {
	var out []ExpenseCategoryResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		categories, err := repos.ExpenseCategories().FindAll(ctx, activeOnly)
		if err != nil {
			return err
		}
		out = make([]ExpenseCategoryResponse, len(categories))
		for i := range categories {
			out[i] = ToExpenseCategoryResponse(&categories[i])
		}
		return nil
	})
	return out, err
}
