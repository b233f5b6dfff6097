package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// AreaUnit is the land measurement unit an RS number is registered in
type AreaUnit string

const (
	AreaUnitKatha   AreaUnit = "KATHA"
	AreaUnitDecimal AreaUnit = "DECIMAL"
	AreaUnitSqFt    AreaUnit = "SQFT"
	AreaUnitAcre    AreaUnit = "ACRE"
	AreaUnitBigha   AreaUnit = "BIGHA"
)

// AreaScale is the number of decimal places area values are kept at
const AreaScale int32 = 4

// IsValid checks if the unit is known
func (u AreaUnit) IsValid() bool {
	switch u {
	case AreaUnitKatha, AreaUnitDecimal, AreaUnitSqFt, AreaUnitAcre, AreaUnitBigha:
		return true
	}
	return false
}

// Area is a non-negative land area in a fixed unit.
// It is immutable - all operations return new Area instances
type Area struct {
	value decimal.Decimal
	unit  AreaUnit
}

// NewArea creates an Area, rejecting negative values and unknown units
func NewArea(value decimal.Decimal, unit AreaUnit) (Area, error) {
	if value.IsNegative() {
		return Area{}, errors.New("area cannot be negative")
	}
	if !unit.IsValid() {
		return Area{}, fmt.Errorf("unknown area unit: %s", unit)
	}
	return Area{value: value.Round(AreaScale), unit: unit}, nil
}

// MustNewArea creates an Area and panics on error
func MustNewArea(value decimal.Decimal, unit AreaUnit) Area {
	a, err := NewArea(value, unit)
	if err != nil {
		panic(err)
	}
	return a
}

// Value returns the decimal value
func (a Area) Value() decimal.Decimal {
	return a.value
}

// Unit returns the unit of measurement
func (a Area) Unit() AreaUnit {
	return a.unit
}

// IsZero returns true if the area is zero
func (a Area) IsZero() bool {
	return a.value.IsZero()
}

// Add returns the sum of both areas
func (a Area) Add(other Area) (Area, error) {
	if a.unit != other.unit {
		return Area{}, fmt.Errorf("cannot add areas with different units: %s and %s", a.unit, other.unit)
	}
	return Area{value: a.value.Add(other.value), unit: a.unit}, nil
}

// Subtract returns the difference; the result may not be negative
func (a Area) Subtract(other Area) (Area, error) {
	if a.unit != other.unit {
		return Area{}, fmt.Errorf("cannot subtract areas with different units: %s and %s", a.unit, other.unit)
	}
	result := a.value.Sub(other.value)
	if result.IsNegative() {
		return Area{}, errors.New("area subtraction would result in negative value")
	}
	return Area{value: result, unit: a.unit}, nil
}

// GreaterThan compares two areas of the same unit
func (a Area) GreaterThan(other Area) bool {
	return a.value.GreaterThan(other.value)
}

// String returns "<value> <unit>"
func (a Area) String() string {
	return fmt.Sprintf("%s %s", a.value.String(), a.unit)
}
