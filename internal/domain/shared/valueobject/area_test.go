package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArea(t *testing.T) {
	tests := []struct {
		name    string
		value   decimal.Decimal
		unit    AreaUnit
		wantErr bool
	}{
		{"valid katha", decimal.NewFromInt(30), AreaUnitKatha, false},
		{"zero is allowed", decimal.Zero, AreaUnitDecimal, false},
		{"negative rejected", decimal.NewFromInt(-1), AreaUnitKatha, true},
		{"unknown unit rejected", decimal.NewFromInt(1), AreaUnit("HECTARE"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewArea(tt.value, tt.unit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.unit, a.Unit())
			assert.True(t, a.Value().Equal(tt.value))
		})
	}
}

func TestAreaArithmetic(t *testing.T) {
	total := MustNewArea(decimal.NewFromInt(100), AreaUnitKatha)
	plot := MustNewArea(decimal.NewFromInt(30), AreaUnitKatha)

	left, err := total.Subtract(plot)
	require.NoError(t, err)
	assert.True(t, left.Value().Equal(decimal.NewFromInt(70)))

	_, err = plot.Subtract(total)
	assert.Error(t, err)

	back, err := left.Add(plot)
	require.NoError(t, err)
	assert.True(t, back.Value().Equal(total.Value()))

	_, err = total.Add(MustNewArea(decimal.NewFromInt(1), AreaUnitAcre))
	assert.Error(t, err)

	assert.True(t, total.GreaterThan(plot))
	assert.Equal(t, "30 KATHA", plot.String())
}
