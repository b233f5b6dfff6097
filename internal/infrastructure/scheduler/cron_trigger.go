package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Submitter accepts jobs; *Scheduler satisfies it
type Submitter interface {
	Submit(job *Job) error
}

// TriggerConfig describes when a job kind fires
type TriggerConfig struct {
	Kind       JobKind
	Rule       string // RFC 5545 RRULE, e.g. FREQ=DAILY;BYHOUR=8;BYMINUTE=0;BYSECOND=0
	Location   *time.Location
	MaxRetries int
}

// DailyAt returns the rule for once a day at hour:00
func DailyAt(hour int) string {
	return fmt.Sprintf("FREQ=DAILY;BYHOUR=%d;BYMINUTE=0;BYSECOND=0", hour)
}

// CronTrigger submits a job each time its recurrence rule fires
type CronTrigger struct {
	config    TriggerConfig
	rule      *rrule.RRule
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewCronTrigger parses the rule anchored at today's midnight in the trigger's location
func NewCronTrigger(config TriggerConfig, submitter Submitter, logger *zap.Logger) (*CronTrigger, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	opt, err := rrule.StrToROption(config.Rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRecurrence, config.Rule, err)
	}
	now := time.Now().In(config.Location)
	opt.Dtstart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, config.Location)
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRecurrence, config.Rule, err)
	}
	return &CronTrigger{
		config:    config,
		rule:      rule,
		submitter: submitter,
		logger:    logger.With(zap.String("kind", string(config.Kind))),
		now:       time.Now,
	}, nil
}

// NextRun returns the first occurrence strictly after t
func (c *CronTrigger) NextRun(after time.Time) time.Time {
	return c.rule.After(after.In(c.config.Location), false)
}

// Start begins waiting for occurrences
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.String("rule", c.config.Rule),
		zap.String("timezone", c.config.Location.String()),
		zap.Time("next_run", c.NextRun(c.now())),
	)
	return nil
}

// Stop stops the trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		next := c.NextRun(c.now())
		if next.IsZero() {
			c.logger.Warn("Recurrence rule has no further occurrences")
			return
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := c.Fire(next); err != nil {
				c.logger.Error("Failed to submit scheduled job", zap.Error(err))
			}
		}
	}
}

// Fire submits a job for the given business time immediately
func (c *CronTrigger) Fire(asOf time.Time) error {
	job := NewJob(c.config.Kind, asOf.In(c.config.Location), c.config.MaxRetries)
	if err := c.submitter.Submit(job); err != nil {
		return err
	}
	c.logger.Info("Scheduled job submitted",
		zap.String("job_id", job.ID.String()),
		zap.Time("as_of", job.AsOf),
	)
	return nil
}
