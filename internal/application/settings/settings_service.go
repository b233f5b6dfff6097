// Package settings serves the runtime business settings: configured
// defaults overlaid with the overrides stored by administrators.
package settings

import (
	"context"
	"time"

	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdateSettingsRequest changes business settings. Nil fields are left unchanged.
type UpdateSettingsRequest struct {
	OfficeChargePercent     *decimal.Decimal `json:"office_charge_percent"`
	InstallmentReminderDays *int             `json:"installment_reminder_days" binding:"omitempty,min=0,max=90"`
}

// Service implements settings.Provider
type Service struct {
	uow      *appshared.UnitOfWork
	defaults settings.Values
	logger   *zap.Logger
}

var _ settings.Provider = (*Service)(nil)

// NewService creates a new settings Service
func NewService(uow *appshared.UnitOfWork, defaults settings.Values, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{uow: uow, defaults: defaults, logger: logger}
}

// Current returns the settings in force right now
func (s *Service) Current(ctx context.Context) (settings.Values, error) {
	var values settings.Values
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		stored, err := repos.Settings().FindAll(ctx)
		if err != nil {
			return err
		}
		values, err = s.defaults.Apply(stored)
		return err
	})
	return values, err
}

// Update stores new values. Only administrators may change settings.
// Operations already in flight keep the values they read when they started.
func (s *Service) Update(ctx context.Context, actor shared.Actor, req UpdateSettingsRequest) (settings.Values, error) {
	if !actor.HasRole(shared.RoleAdmin) {
		return settings.Values{}, shared.NewDomainError(shared.CodeForbidden, "Only an admin can change settings")
	}

	var values settings.Values
	err := s.uow.Do(ctx, []string{"settings"}, func(w *appshared.Work) error {
		stored, err := w.Repos.Settings().FindAll(ctx)
		if err != nil {
			return err
		}
		if values, err = s.defaults.Apply(stored); err != nil {
			return err
		}
		if req.OfficeChargePercent != nil {
			values.OfficeChargePercent = *req.OfficeChargePercent
		}
		if req.InstallmentReminderDays != nil {
			values.InstallmentReminderDays = *req.InstallmentReminderDays
		}
		if err := values.Validate(); err != nil {
			return err
		}
		return w.Repos.Settings().Upsert(ctx, values.ToSettings(actor.UserID, time.Now()))
	})
	if err != nil {
		return settings.Values{}, err
	}

	s.logger.Info("Settings updated",
		zap.String("by", actor.UserID.String()),
		zap.String("office_charge_percent", values.OfficeChargePercent.String()),
		zap.Int("installment_reminder_days", values.InstallmentReminderDays),
	)
	return values, nil
}
