package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortable is the whitelist of columns a list endpoint may order by.
// Anything else falls back to the default column.
type sortable struct {
	columns  map[string]struct{}
	fallback string
}

// auditColumns are present on every table except the ledger
var auditColumns = []string{"id", "created_at", "updated_at"}

func newSortable(fallback string, columns ...string) sortable {
	s := sortable{columns: make(map[string]struct{}, len(columns)+1), fallback: fallback}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	s.columns[fallback] = struct{}{}
	return s
}

// column returns requested when whitelisted, else the fallback
func (s sortable) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if _, ok := s.columns[requested]; ok {
		return requested
	}
	return s.fallback
}

// orderBy builds ORDER BY <column> <dir>, id <dir>. id breaks ties so pages stay stable.
func (s sortable) orderBy(requested, dir string) clause.OrderBy {
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")
	col := s.column(requested)
	columns := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: desc}}
	if col != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return clause.OrderBy{Columns: columns}
}

var (
	rsNumberSort = newSortable("number", append(auditColumns,
		"project_name", "total_area", "remaining_area")...)
	plotSort = newSortable("plot_number", append(auditColumns,
		"area", "status", "sale_date")...)
	saleSort = newSortable("sale_date", append(auditColumns,
		"sale_number", "total_price", "paid_amount", "due_amount", "status")...)
	cancellationSort = newSortable("cancellation_date", append(auditColumns,
		"cancellation_number", "total_paid", "refundable_amount", "status")...)
	receiptSort = newSortable("received_date", append(auditColumns,
		"receipt_number", "amount", "method", "status", "decided_at")...)
	expenseSort = newSortable("expense_date", append(auditColumns,
		"expense_number", "amount", "status", "decided_at")...)
	clientSort = newSortable("name", append(auditColumns,
		"code", "phone", "status")...)
	// ledger lines are immutable and carry no audit timestamps
	ledgerSort = newSortable("occurred_at", "id", "amount", "direction")
)
