// Package settings holds the business parameters that administrators can
// change at runtime without a redeploy.
package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Known setting keys
const (
	KeyOfficeChargePercent     = "office_charge_percent"
	KeyInstallmentReminderDays = "installment_reminder_days"
)

// Setting is one stored key/value override
type Setting struct {
	Key       string
	Value     string
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
}

// Values is the effective configuration read at the start of an operation
type Values struct {
	OfficeChargePercent     decimal.Decimal `json:"office_charge_percent"`
	InstallmentReminderDays int             `json:"installment_reminder_days"`
}

// Validate checks the ranges of every value
func (v Values) Validate() error {
	if v.OfficeChargePercent.IsNegative() || v.OfficeChargePercent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Office charge percent must be between 0 and 100")
	}
	if v.InstallmentReminderDays < 0 || v.InstallmentReminderDays > 90 {
		return shared.NewValidationError("Installment reminder days must be between 0 and 90")
	}
	return nil
}

// Apply overlays stored settings on top of the values. Unknown keys are ignored.
func (v Values) Apply(stored []Setting) (Values, error) {
	out := v
	for _, s := range stored {
		switch s.Key {
		case KeyOfficeChargePercent:
			pct, err := decimal.NewFromString(s.Value)
			if err != nil {
				return v, shared.NewValidationError("Stored office charge percent is not a number: " + s.Value)
			}
			out.OfficeChargePercent = pct
		case KeyInstallmentReminderDays:
			days, err := strconv.Atoi(s.Value)
			if err != nil {
				return v, shared.NewValidationError("Stored installment reminder days is not an integer: " + s.Value)
			}
			out.InstallmentReminderDays = days
		}
	}
	return out, out.Validate()
}

// ToSettings flattens values into storable rows
func (v Values) ToSettings(updatedBy uuid.UUID, at time.Time) []Setting {
	return []Setting{
		{Key: KeyOfficeChargePercent, Value: v.OfficeChargePercent.String(), UpdatedBy: updatedBy, UpdatedAt: at},
		{Key: KeyInstallmentReminderDays, Value: strconv.Itoa(v.InstallmentReminderDays), UpdatedBy: updatedBy, UpdatedAt: at},
	}
}

// Provider returns the effective settings
type Provider interface {
	Current(ctx context.Context) (Values, error)
}

// Repository persists setting overrides
type Repository interface {
	FindAll(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, settings []Setting) error
}
