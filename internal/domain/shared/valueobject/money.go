package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	BDT Currency = "BDT"
	USD Currency = "USD"
)

const DefaultCurrency = BDT

// MoneyScale is the number of decimal places money is rounded to
const MoneyScale int32 = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to the money scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Money is an immutable amount in one currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyBDT creates Money in the default currency
func NewMoneyBDT(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency { return m.currency }

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Percentage returns percent% of the amount, rounded to the money scale
func (m Money) Percentage(percent decimal.Decimal) Money {
	return Money{amount: RoundMoney(m.amount.Mul(percent).Div(hundred)), currency: m.currency}
}

// AllocateByPercents splits the amount into one part per percent. All parts
// but the last are rounded; the last takes the remainder so the parts always
// sum to the amount exactly.
func (m Money) AllocateByPercents(percents []decimal.Decimal) ([]Money, error) {
	if err := checkPercents(percents); err != nil {
		return nil, err
	}
	parts := make([]Money, len(percents))
	rest := m.amount
	for i, p := range percents {
		if i == len(percents)-1 {
			parts[i] = Money{amount: rest, currency: m.currency}
			break
		}
		parts[i] = m.Percentage(p)
		rest = rest.Sub(parts[i].amount)
	}
	return parts, nil
}

func checkPercents(percents []decimal.Decimal) error {
	if len(percents) == 0 {
		return errors.New("percents must not be empty")
	}
	sum := decimal.Zero
	for _, p := range percents {
		if p.IsNegative() {
			return errors.New("percents must not be negative")
		}
		sum = sum.Add(p)
	}
	if !sum.Equal(hundred) {
		return fmt.Errorf("percents must sum to 100, got %s", sum)
	}
	return nil
}

func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + string(m.currency)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: RoundMoney(m.amount), Currency: m.currency})
}

// UnmarshalJSON accepts the amount as a string or number; a missing
// currency means the default one
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid money: %w", err)
	}
	if raw.Currency == "" {
		raw.Currency = DefaultCurrency
	}
	m.amount, m.currency = raw.Amount, raw.Currency
	return nil
}
