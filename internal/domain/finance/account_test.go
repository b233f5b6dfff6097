package finance_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	a, err := finance.NewAccount(finance.AccountKindBank, "Operating", "Dutch-Bangla Bank", "1234567", "Gulshan", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.True(t, a.CurrentBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, a.IsActive)

	_, err = finance.NewAccount(finance.AccountKindBank, "Operating", "", "", "", decimal.Zero)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = finance.NewAccount(finance.AccountKindCash, "Petty cash", "", "", "", decimal.NewFromInt(-1))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = finance.NewAccount("WALLET", "x", "", "", "", decimal.Zero)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestAccount_CreditDebit(t *testing.T) {
	a, err := finance.NewAccount(finance.AccountKindCash, "Petty cash", "", "", "", decimal.NewFromInt(1000))
	require.NoError(t, err)
	a.MarkPersisted()

	_, err = a.Credit(decimal.NewFromInt(500), finance.SubjectTypeReceipt, uuid.New(), "RCV-1")
	require.NoError(t, err)
	tx, err := a.Debit(decimal.NewFromInt(300), finance.SubjectTypeExpense, uuid.New(), "EXP-1")
	require.NoError(t, err)
	assert.Equal(t, finance.DirectionDebit, tx.Direction)
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(1200)))

	_, err = a.Debit(decimal.NewFromInt(1201), finance.SubjectTypeExpense, uuid.New(), "EXP-2")
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeInsufficientBalance))
	assert.True(t, a.CurrentBalance.Equal(decimal.NewFromInt(1200)))

	_, err = a.Credit(decimal.Zero, "manual", uuid.New(), "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	ledger := a.PendingTransactions()
	require.Len(t, ledger, 2)
	assert.NoError(t, a.Reconcile(ledger))
	assert.Error(t, a.Reconcile(ledger[:1]))
	assert.Equal(t, 2, a.Version)

	a.Deactivate()
	_, err = a.Credit(decimal.NewFromInt(1), "manual", uuid.New(), "")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestExpense_ApprovalFlow(t *testing.T) {
	details := finance.ExpenseDetails{
		CategoryID:    uuid.New(),
		Amount:        decimal.NewFromInt(2500),
		PaymentMethod: finance.PaymentMethodCash,
		AccountID:     uuid.New(),
		Description:   "Survey fees",
		ExpenseDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	e, err := finance.NewExpense("EXP-202603-00001", details, creator.UserID)
	require.NoError(t, err)
	e.MarkPersisted()

	require.NoError(t, approval.Submit(e, creator, ""))
	_, err = approval.Approve(e, accounts, "")
	require.NoError(t, err)
	final, err := approval.Approve(e, hof, "")
	require.NoError(t, err)
	assert.True(t, final)

	require.Len(t, e.GetDomainEvents(), 1)
	ev := e.GetDomainEvents()[0].(*finance.ExpenseApprovedEvent)
	assert.Equal(t, details.AccountID, ev.AccountID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(2500)))

	_, err = approval.Approve(e, hof, "")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidState))
}

func TestExpense_Validation(t *testing.T) {
	valid := finance.ExpenseDetails{
		CategoryID:    uuid.New(),
		Amount:        decimal.NewFromInt(10),
		PaymentMethod: finance.PaymentMethodBankTransfer,
		AccountID:     uuid.New(),
		Description:   "Stationery",
		ExpenseDate:   time.Now(),
	}
	mutations := map[string]func(d *finance.ExpenseDetails){
		"no category":    func(d *finance.ExpenseDetails) { d.CategoryID = uuid.Nil },
		"no account":     func(d *finance.ExpenseDetails) { d.AccountID = uuid.Nil },
		"zero amount":    func(d *finance.ExpenseDetails) { d.Amount = decimal.Zero },
		"bad method":     func(d *finance.ExpenseDetails) { d.PaymentMethod = "BARTER" },
		"no description": func(d *finance.ExpenseDetails) { d.Description = "  " },
		"no date":        func(d *finance.ExpenseDetails) { d.ExpenseDate = time.Time{} },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := valid
			mutate(&d)
			_, err := finance.NewExpense("EXP-1", d, creator.UserID)
			assert.True(t, shared.IsCode(err, shared.CodeValidation))
		})
	}
}

func TestExpenseCategory(t *testing.T) {
	c, err := finance.NewExpenseCategory(" survey ", "Survey", "")
	require.NoError(t, err)
	assert.Equal(t, "SURVEY", c.Code)
	c.Deactivate()
	assert.False(t, c.IsActive)

	_, err = finance.NewExpenseCategory("", "x", "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}
