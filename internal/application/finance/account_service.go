package finance

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const reconcilePageSize = 100

// AccountService manages bank accounts and cash boxes
type AccountService struct {
	uow    *appshared.UnitOfWork
	logger *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(uow *appshared.UnitOfWork, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{uow: uow, logger: logger}
}

// CreateAccount opens an account
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := finance.NewAccount(finance.AccountKind(req.Kind), req.Name, req.BankName, req.AccountNumber, req.Branch, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	if err := s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		return w.Repos.Accounts().Save(ctx, account)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("Account opened",
		zap.String("account_id", account.ID.String()),
		zap.String("kind", string(account.Kind)),
		zap.String("opening_balance", account.OpeningBalance.StringFixed(2)),
	)
	resp := ToAccountResponse(account)
	return &resp, nil
}

// UpdateAccount edits the descriptive fields of an account
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	return s.mutate(ctx, id, func(a *finance.Account) error {
		return a.UpdateDetails(req.Name, req.BankName, req.AccountNumber, req.Branch)
	})
}

// DeactivateAccount stops further movements on an account
func (s *AccountService) DeactivateAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	return s.mutate(ctx, id, func(a *finance.Account) error {
		if !a.IsActive {
			return shared.NewInvalidStateError("Account " + a.Name + " is already inactive")
		}
		a.Deactivate()
		return nil
	})
}

func (s *AccountService) mutate(ctx context.Context, id uuid.UUID, fn func(*finance.Account) error) (*AccountResponse, error) {
	var account *finance.Account
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockAccount, id)}, func(w *appshared.Work) error {
		var err error
		if account, err = w.Repos.Accounts().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := fn(account); err != nil {
			return err
		}
		return w.Repos.Accounts().SaveWithLock(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetAccount returns an account
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	var resp AccountResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		account, err := repos.Accounts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToAccountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAccounts lists accounts
func (s *AccountService) ListAccounts(ctx context.Context, filter AccountListFilter) ([]AccountResponse, error) {
	var kind *finance.AccountKind
	if filter.Kind != "" {
		k := finance.AccountKind(filter.Kind)
		if !k.IsValid() {
			return nil, shared.NewValidationError("Invalid account kind: " + filter.Kind)
		}
		kind = &k
	}
	var out []AccountResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		accounts, err := repos.Accounts().FindAll(ctx, kind, filter.ActiveOnly)
		if err != nil {
			return err
		}
		out = make([]AccountResponse, len(accounts))
		for i := range accounts {
			out[i] = ToAccountResponse(&accounts[i])
		}
		return nil
	})
	return out, err
}

// Ledger lists the movements of an account, newest first
func (s *AccountService) Ledger(ctx context.Context, id uuid.UUID, page, pageSize int) ([]AccountTransactionResponse, int64, error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	var (
		out   []AccountTransactionResponse
		total int64
	)
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		if _, err := repos.Accounts().FindByID(ctx, id); err != nil {
			return err
		}
		lines, n, err := repos.Accounts().FindTransactions(ctx, id, filter)
		if err != nil {
			return err
		}
		total = n
		out = make([]AccountTransactionResponse, len(lines))
		for i, line := range lines {
			out[i] = ToAccountTransactionResponse(line)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Reconcile checks that the balance equals opening balance plus the
// ledger. The account lock keeps postings out while the ledger is read.
func (s *AccountService) Reconcile(ctx context.Context, id uuid.UUID) error {
	return s.uow.Do(ctx, []string{shared.LockKey(appshared.LockAccount, id)}, func(w *appshared.Work) error {
		repos := w.Repos
		account, err := repos.Accounts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		var ledger []finance.AccountTransaction
		for page := 1; ; page++ {
			lines, total, err := repos.Accounts().FindTransactions(ctx, id, shared.Filter{Page: page, PageSize: reconcilePageSize})
			if err != nil {
				return err
			}
			ledger = append(ledger, lines...)
			if len(lines) == 0 || int64(len(ledger)) >= total {
				break
			}
		}
		if err := account.Reconcile(ledger); err != nil {
			s.logger.Warn("Account does not reconcile",
				zap.String("account_id", id.String()),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
}
