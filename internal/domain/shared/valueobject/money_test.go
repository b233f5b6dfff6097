package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcts(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), BDT)
		require.NoError(t, err)
		assert.Equal(t, BDT, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoneyAdd(t *testing.T) {
	a := NewMoneyBDT(decimal.NewFromInt(150))
	b := NewMoneyBDT(decimal.NewFromInt(50))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "200.00 BDT", sum.String())

	usd, err := NewMoney(decimal.NewFromInt(1), USD)
	require.NoError(t, err)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoneyPercentage(t *testing.T) {
	m := NewMoneyBDT(decimal.NewFromInt(500000))
	assert.True(t, m.Percentage(decimal.NewFromInt(10)).Amount().Equal(decimal.NewFromInt(50000)))

	odd := NewMoneyBDT(decimal.RequireFromString("333.33"))
	assert.Equal(t, "33.33", odd.Percentage(decimal.NewFromInt(10)).Amount().StringFixed(2))
}

func TestMoneyAllocateByPercents(t *testing.T) {
	t.Run("standard stage plan", func(t *testing.T) {
		parts, err := NewMoneyBDT(decimal.NewFromInt(1000000)).AllocateByPercents(pcts(10, 70, 15, 5))
		require.NoError(t, err)
		require.Len(t, parts, 4)
		expected := []int64{100000, 700000, 150000, 50000}
		for i, p := range parts {
			assert.True(t, p.Amount().Equal(decimal.NewFromInt(expected[i])), "part %d = %s", i, p.Amount())
		}
	})

	t.Run("remainder goes to the last part", func(t *testing.T) {
		total := decimal.RequireFromString("1000.01")
		parts, err := NewMoneyBDT(total).AllocateByPercents(pcts(10, 70, 15, 5))
		require.NoError(t, err)

		sum := decimal.Zero
		for _, p := range parts {
			sum = sum.Add(p.Amount())
		}
		assert.True(t, sum.Equal(total))
		assert.Equal(t, "100.00", parts[0].Amount().StringFixed(2))
		assert.Equal(t, "700.01", parts[1].Amount().StringFixed(2))
		assert.Equal(t, "150.00", parts[2].Amount().StringFixed(2))
		assert.Equal(t, "50.00", parts[3].Amount().StringFixed(2))
	})

	t.Run("rejects percents that do not sum to 100", func(t *testing.T) {
		_, err := NewMoneyBDT(decimal.NewFromInt(100)).AllocateByPercents(pcts(10, 70, 15))
		assert.Error(t, err)
	})

	t.Run("rejects negative percents", func(t *testing.T) {
		_, err := NewMoneyBDT(decimal.NewFromInt(100)).AllocateByPercents(pcts(110, -10))
		assert.Error(t, err)
	})
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyBDT(decimal.RequireFromString("1234.5"))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.5","currency":"BDT"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))

	require.NoError(t, json.Unmarshal([]byte(`{"amount":99.95}`), &decoded))
	assert.Equal(t, BDT, decoded.Currency())
	assert.Equal(t, "99.95", decoded.Amount().StringFixed(2))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc"}`), &decoded))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "10.01", RoundMoney(decimal.RequireFromString("10.005")).String())
	assert.Equal(t, "-10.01", RoundMoney(decimal.RequireFromString("-10.005")).String())
}
