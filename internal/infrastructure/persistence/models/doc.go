// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags or infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers (ToDomain / FromDomain) convert between the two
// 4. Repositories read and write persistence models only
//
// Structure:
// - base.go: base persistence models (BaseModel, AggregateModel, AuditedAggregateModel)
// - land.go: RS numbers and plots
// - sales.go: sales, sale stages, cancellations and refund payments
// - finance.go: receipts, expenses, expense categories, accounts and ledger lines
// - approval.go: approval history shared by receipts and expenses
// - partner.go: clients
// - settings.go: setting overrides and document number sequences
package models

// All lists every model in migration order, used by AutoMigrate in tests
// and by the sqlite development database.
func All() []any {
	return []any{
		&RSNumberModel{},
		&PlotModel{},
		&ClientModel{},
		&SaleModel{},
		&SaleStageModel{},
		&CancellationModel{},
		&RefundPaymentModel{},
		&AccountModel{},
		&AccountTransactionModel{},
		&ExpenseCategoryModel{},
		&ReceiptModel{},
		&ExpenseModel{},
		&ApprovalEntryModel{},
		&SettingModel{},
		&NumberSequenceModel{},
	}
}
