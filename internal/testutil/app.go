package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	financeapp "github.com/landerp/backend/internal/application/finance"
	landapp "github.com/landerp/backend/internal/application/land"
	partnerapp "github.com/landerp/backend/internal/application/partner"
	salesapp "github.com/landerp/backend/internal/application/sales"
	settingsapp "github.com/landerp/backend/internal/application/settings"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/infrastructure/event"
	"github.com/landerp/backend/internal/infrastructure/lock"
	"github.com/landerp/backend/internal/infrastructure/persistence"
	"github.com/landerp/backend/internal/infrastructure/storage"
)

// DefaultSettings are the business defaults used by App: 10% office charge,
// reminders 7 days ahead.
var DefaultSettings = settings.Values{
	OfficeChargePercent:     decimal.NewFromInt(10),
	InstallmentReminderDays: 7,
}

// App is the application layer wired on an in-memory sqlite database,
// the in-process keyed mutex and a synchronous event bus.
type App struct {
	DB      *gorm.DB
	Bus     *event.InMemoryEventBus
	Events  *RecordingHandler
	UoW     *appshared.UnitOfWork
	Storage *storage.MemoryDocumentStore

	Settings      *settingsapp.Service
	Allocator     *landapp.AllocatorService
	Clients       *partnerapp.ClientService
	Sales         *salesapp.SaleService
	Cancellations *salesapp.CancellationService
	Accounts      *financeapp.AccountService
	Receipts      *financeapp.ReceiptService
	Expenses      *financeapp.ExpenseService
}

// NewApp wires every application service for a test
func NewApp(t *testing.T) *App {
	t.Helper()

	log := zap.NewNop()
	db := NewSQLiteDB(t)
	bus := event.NewInMemoryEventBus(log)
	recorder := NewRecordingHandler()
	bus.Subscribe(recorder)

	uow := appshared.NewUnitOfWork(persistence.NewGormTransactionScope(db), lock.NewKeyedMutex(), bus, log)
	store := storage.NewMemoryDocumentStore("")
	settingsSvc := settingsapp.NewService(uow, DefaultSettings, log)
	attachments := financeapp.DefaultAttachmentConfig()

	return &App{
		DB:            db,
		Bus:           bus,
		Events:        recorder,
		UoW:           uow,
		Storage:       store,
		Settings:      settingsSvc,
		Allocator:     landapp.NewAllocatorService(uow, log),
		Clients:       partnerapp.NewClientService(uow, log),
		Sales:         salesapp.NewSaleService(uow, settingsSvc, sales.DefaultStagePlan(), log),
		Cancellations: salesapp.NewCancellationService(uow, settingsSvc, log),
		Accounts:      financeapp.NewAccountService(uow, log),
		Receipts:      financeapp.NewReceiptService(uow, store, attachments, log),
		Expenses:      financeapp.NewExpenseService(uow, store, attachments, log),
	}
}
