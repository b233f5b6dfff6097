package approval_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appapproval "github.com/landerp/backend/internal/application/approval"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func loadReceipt(ctx context.Context, repos appshared.Repositories, id uuid.UUID, forUpdate bool) (*finance.Receipt, error) {
	if forUpdate {
		return repos.Receipts().FindByIDForUpdate(ctx, id)
	}
	return repos.Receipts().FindByID(ctx, id)
}

func saveReceipt(ctx context.Context, repos appshared.Repositories, r *finance.Receipt) error {
	return repos.Receipts().SaveWithLock(ctx, r)
}

func receiptBinding() appapproval.Binding[*finance.Receipt] {
	return appapproval.Binding[*finance.Receipt]{
		Kind: appshared.LockReceipt,
		Load: loadReceipt,
		Save: saveReceipt,
	}
}

type engineFixture struct {
	app     *testutil.App
	actors  testutil.Actors
	receipt uuid.UUID
}

func newEngineFixture(t *testing.T) engineFixture {
	t.Helper()
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	f := app.SeedSale(t, actors, "100", "30", "1000000")
	receipt := app.DraftReceipt(t, actors.Manager, f, "100000")
	return engineFixture{app: app, actors: actors, receipt: receipt.ID}
}

func (f engineFixture) status(t *testing.T) string {
	t.Helper()
	stored, err := f.app.Receipts.GetReceipt(context.Background(), f.receipt)
	require.NoError(t, err)
	return stored.Status
}

func TestEngine_SideEffectRunsOnceOnFinalGate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	calls := 0
	binding := receiptBinding()
	binding.OnApproved = func(_ context.Context, _ *appshared.Work, r *finance.Receipt) error {
		calls++
		assert.Equal(t, approval.StatusApproved, r.Workflow().Status)
		return nil
	}
	engine := appapproval.NewEngine(f.app.UoW, binding, zap.NewNop())

	_, err := engine.Submit(ctx, f.actors.Manager, f.receipt, "")
	require.NoError(t, err)
	r, err := engine.Approve(ctx, f.actors.Manager, f.receipt, "")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPendingHOF, r.Workflow().Status)
	assert.Zero(t, calls)

	r, err = engine.Approve(ctx, f.actors.HOF, f.receipt, "ok")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, r.Workflow().Status)
	assert.Equal(t, 1, calls)

	_, err = engine.Approve(ctx, f.actors.HOF, f.receipt, "again")
	testutil.AssertErrorCode(t, err, shared.CodeInvalidState)
	assert.Equal(t, 1, calls)

	history, err := engine.History(ctx, f.receipt)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestEngine_FailingSideEffectRollsBack(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	binding := receiptBinding()
	binding.OnApproved = func(context.Context, *appshared.Work, *finance.Receipt) error {
		return errors.New("ledger unavailable")
	}
	engine := appapproval.NewEngine(f.app.UoW, binding, zap.NewNop())

	_, err := engine.Submit(ctx, f.actors.Manager, f.receipt, "")
	require.NoError(t, err)
	_, err = engine.Approve(ctx, f.actors.Manager, f.receipt, "")
	require.NoError(t, err)

	_, err = engine.Approve(ctx, f.actors.HOF, f.receipt, "")
	require.EqualError(t, err, "ledger unavailable")

	assert.Equal(t, "PENDING_HOF", f.status(t))
	history, err := engine.History(ctx, f.receipt)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Empty(t, f.app.Events.OfType(finance.EventTypeReceiptApproved))
}

func TestEngine_FailingSubmitCheckKeepsDraft(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	binding := receiptBinding()
	binding.CheckSubmit = func(context.Context, *appshared.Work, *finance.Receipt) error {
		return shared.NewValidationError("sale is closed")
	}
	engine := appapproval.NewEngine(f.app.UoW, binding, zap.NewNop())

	_, err := engine.Submit(ctx, f.actors.Manager, f.receipt, "")
	testutil.AssertErrorCode(t, err, shared.CodeValidation)
	assert.Equal(t, "DRAFT", f.status(t))
}

func TestEngine_LinkedKeysChangedWhileWaiting(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// every read reports a different linked aggregate, as if the receipt
	// was moved to another sale between planning and locking
	reads := 0
	binding := receiptBinding()
	binding.LockKeys = func(*finance.Receipt) []string {
		reads++
		return []string{fmt.Sprintf("sale:%d", reads)}
	}
	engine := appapproval.NewEngine(f.app.UoW, binding, zap.NewNop())

	_, err := engine.Submit(ctx, f.actors.Manager, f.receipt, "")
	testutil.AssertErrorCode(t, err, shared.CodeConcurrencyConflict)
	assert.Equal(t, 2, reads)
	assert.Equal(t, "DRAFT", f.status(t))
}

func TestEngine_UnknownSubject(t *testing.T) {
	f := newEngineFixture(t)
	engine := appapproval.NewEngine(f.app.UoW, receiptBinding(), nil)

	_, err := engine.Submit(context.Background(), f.actors.Manager, uuid.New(), "")
	testutil.AssertErrorCode(t, err, shared.CodeNotFound)
}
