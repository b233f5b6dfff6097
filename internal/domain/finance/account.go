package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AccountKind distinguishes bank accounts from cash boxes
type AccountKind string

const (
	AccountKindBank AccountKind = "BANK"
	AccountKindCash AccountKind = "CASH"
)

// IsValid checks if the account kind is known
func (k AccountKind) IsValid() bool {
	return k == AccountKindBank || k == AccountKindCash
}

// Direction of an account movement
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// AccountTransaction is an immutable ledger line of an account
type AccountTransaction struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Direction    Direction
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	SourceType   string
	SourceID     uuid.UUID
	Description  string
	OccurredAt   time.Time
}

// Account is a bank account or cash box. Its balance only moves through
// Credit and Debit, each producing a ledger line.
type Account struct {
	shared.BaseAggregateRoot
	Kind           AccountKind
	Name           string
	BankName       string
	AccountNumber  string
	Branch         string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	IsActive       bool

	// pending holds ledger lines not yet persisted
	pending []AccountTransaction
}

// NewAccount opens an account with its opening balance
func NewAccount(kind AccountKind, name, bankName, accountNumber, branch string, openingBalance decimal.Decimal) (*Account, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Invalid account kind: " + string(kind))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Account name cannot be empty")
	}
	if kind == AccountKindBank && (strings.TrimSpace(bankName) == "" || strings.TrimSpace(accountNumber) == "") {
		return nil, shared.NewValidationError("Bank name and account number are required for bank accounts")
	}
	openingBalance = valueobject.RoundMoney(openingBalance)
	if openingBalance.IsNegative() {
		return nil, shared.NewValidationError("Opening balance cannot be negative")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Name:              name,
		BankName:          strings.TrimSpace(bankName),
		AccountNumber:     strings.TrimSpace(accountNumber),
		Branch:            strings.TrimSpace(branch),
		OpeningBalance:    openingBalance,
		CurrentBalance:    openingBalance,
		IsActive:          true,
	}, nil
}

// Credit adds money to the account
func (a *Account) Credit(amount decimal.Decimal, sourceType string, sourceID uuid.UUID, description string) (*AccountTransaction, error) {
	if err := a.checkMovement(amount); err != nil {
		return nil, err
	}
	return a.post(DirectionCredit, valueobject.RoundMoney(amount), sourceType, sourceID, description), nil
}

// Debit takes money out of the account. It fails with INSUFFICIENT_BALANCE
// rather than overdraw.
func (a *Account) Debit(amount decimal.Decimal, sourceType string, sourceID uuid.UUID, description string) (*AccountTransaction, error) {
	if err := a.checkMovement(amount); err != nil {
		return nil, err
	}
	amount = valueobject.RoundMoney(amount)
	if amount.GreaterThan(a.CurrentBalance) {
		return nil, shared.NewInsufficientBalanceError(amount, a.CurrentBalance)
	}
	return a.post(DirectionDebit, amount, sourceType, sourceID, description), nil
}

func (a *Account) checkMovement(amount decimal.Decimal) error {
	if !a.IsActive {
		return shared.NewInvalidStateError("Account " + a.Name + " is inactive")
	}
	if !valueobject.RoundMoney(amount).IsPositive() {
		return shared.NewValidationError("Amount must be positive")
	}
	return nil
}

func (a *Account) post(dir Direction, amount decimal.Decimal, sourceType string, sourceID uuid.UUID, description string) *AccountTransaction {
	if dir == DirectionCredit {
		a.CurrentBalance = a.CurrentBalance.Add(amount)
	} else {
		a.CurrentBalance = a.CurrentBalance.Sub(amount)
	}
	tx := AccountTransaction{
		ID:           uuid.New(),
		AccountID:    a.ID,
		Direction:    dir,
		Amount:       amount,
		BalanceAfter: a.CurrentBalance,
		SourceType:   sourceType,
		SourceID:     sourceID,
		Description:  description,
		OccurredAt:   time.Now(),
	}
	a.pending = append(a.pending, tx)
	a.IncrementVersion()
	return &tx
}

// PendingTransactions returns ledger lines created since the last save
func (a *Account) PendingTransactions() []AccountTransaction {
	return a.pending
}

// ClearPendingTransactions is called by the repository after persisting them
func (a *Account) ClearPendingTransactions() {
	a.pending = nil
}

// UpdateDetails edits descriptive fields; balances are never edited directly
func (a *Account) UpdateDetails(name, bankName, accountNumber, branch string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Account name cannot be empty")
	}
	if a.Kind == AccountKindBank && (strings.TrimSpace(bankName) == "" || strings.TrimSpace(accountNumber) == "") {
		return shared.NewValidationError("Bank name and account number are required for bank accounts")
	}
	a.Name = name
	a.BankName = strings.TrimSpace(bankName)
	a.AccountNumber = strings.TrimSpace(accountNumber)
	a.Branch = strings.TrimSpace(branch)
	a.IncrementVersion()
	return nil
}

// Deactivate stops further movements on the account
func (a *Account) Deactivate() {
	a.IsActive = false
	a.IncrementVersion()
}

// Reconcile verifies current = opening + credits − debits over a full ledger
func (a *Account) Reconcile(ledger []AccountTransaction) error {
	expected := a.OpeningBalance
	for _, tx := range ledger {
		if tx.Direction == DirectionCredit {
			expected = expected.Add(tx.Amount)
		} else {
			expected = expected.Sub(tx.Amount)
		}
	}
	if !expected.Equal(a.CurrentBalance) {
		return shared.NewInvalidStateError("Account balance " + a.CurrentBalance.StringFixed(2) + " does not match ledger total " + expected.StringFixed(2))
	}
	return nil
}
