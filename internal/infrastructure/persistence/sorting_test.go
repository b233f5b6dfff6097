package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestSortable_Column(t *testing.T) {
	s := newSortable("sale_date", "id", "sale_number", "paid_amount")

	tests := []struct {
		requested string
		want      string
	}{
		{"", "sale_date"},
		{"paid_amount", "paid_amount"},
		{"  sale_number ", "sale_number"},
		{"PAID_AMOUNT", "sale_date"},
		{"sale_date", "sale_date"},
		{"due_amount", "sale_date"},
		{"id; DROP TABLE sales;--", "sale_date"},
		{"sale_number desc, (select 1)", "sale_date"},
	}
	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.want, s.column(tt.requested))
		})
	}
}

func TestSortable_OrderBy(t *testing.T) {
	s := newSortable("received_date", "id", "amount")

	asc := s.orderBy("amount", " ASC ")
	assert.Equal(t, []clause.OrderByColumn{
		{Column: clause.Column{Name: "amount"}},
		{Column: clause.Column{Name: "id"}},
	}, asc.Columns)

	byID := s.orderBy("id", "sideways")
	assert.Equal(t, []clause.OrderByColumn{
		{Column: clause.Column{Name: "id"}, Desc: true},
	}, byID.Columns)

	fallback := s.orderBy("nope", "")
	assert.Equal(t, "received_date", fallback.Columns[0].Column.Name)
	assert.True(t, fallback.Columns[0].Desc)
}

func TestSortable_LedgerHasNoAuditColumns(t *testing.T) {
	assert.Equal(t, "occurred_at", ledgerSort.column("created_at"))
	assert.Equal(t, "amount", ledgerSort.column("amount"))
	assert.Equal(t, "number", rsNumberSort.column("bogus"))
	assert.Equal(t, "updated_at", clientSort.column("updated_at"))
}
