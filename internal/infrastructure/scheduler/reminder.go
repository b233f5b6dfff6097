package scheduler

import (
	"context"
	"time"

	"github.com/landerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReminderSource raises InstallmentReminder events for installments due as of a date
type ReminderSource interface {
	PublishInstallmentReminders(ctx context.Context, publisher shared.EventPublisher, asOf time.Time) (int, error)
}

// NewInstallmentReminderExecutor runs the daily reminder sweep
func NewInstallmentReminderExecutor(source ReminderSource, publisher shared.EventPublisher, logger *zap.Logger) JobExecutor {
	return JobExecutorFunc(func(ctx context.Context, job *Job) error {
		n, err := source.PublishInstallmentReminders(ctx, publisher, job.AsOf)
		if err != nil {
			return err
		}
		logger.Info("Installment reminders published",
			zap.String("job_id", job.ID.String()),
			zap.Int("count", n),
		)
		return nil
	})
}
