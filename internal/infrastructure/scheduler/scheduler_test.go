package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/landerp/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Workers:       1,
		QueueSize:     1,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func startScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestNewScheduler_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0
	_, err := NewScheduler(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScheduler_SubmitRequiresRunning(t *testing.T) {
	s, err := NewScheduler(testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.ErrorIs(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 0)), ErrSchedulerNotRunning)
}

func TestScheduler_DispatchesByKind(t *testing.T) {
	s := startScheduler(t, testConfig())
	asOf := make(chan time.Time, 1)
	s.Register(JobKindInstallmentReminder, JobExecutorFunc(func(_ context.Context, job *Job) error {
		asOf <- job.AsOf
		return nil
	}))

	want := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Submit(NewJob(JobKindInstallmentReminder, want, 0)))

	select {
	case got := <-asOf:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	s := startScheduler(t, testConfig())
	var attempts atomic.Int32
	done := make(chan struct{})
	s.Register(JobKindInstallmentReminder, JobExecutorFunc(func(context.Context, *Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("database unavailable")
		}
		close(done)
		return nil
	}))

	require.NoError(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 2)))

	select {
	case <-done:
		assert.Equal(t, int32(2), attempts.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestScheduler_StopsRetryingAfterMaxRetries(t *testing.T) {
	s := startScheduler(t, testConfig())
	var attempts atomic.Int32
	s.Register(JobKindInstallmentReminder, JobExecutorFunc(func(context.Context, *Job) error {
		attempts.Add(1)
		return errors.New("always fails")
	}))

	require.NoError(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 2)))

	require.Eventually(t, func() bool { return attempts.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestScheduler_QueueFull(t *testing.T) {
	s := startScheduler(t, testConfig())
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	s.Register(JobKindInstallmentReminder, JobExecutorFunc(func(ctx context.Context, _ *Job) error {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}))
	defer close(release)

	require.NoError(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 0)))
	<-started
	require.NoError(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 0)))
	assert.ErrorIs(t, s.Submit(NewJob(JobKindInstallmentReminder, time.Now(), 0)), ErrJobQueueFull)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(JobKindInstallmentReminder, time.Now(), 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.fail(errors.New("boom"))
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.scheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)

	job.start()
	job.fail(errors.New("boom"))
	assert.False(t, job.ShouldRetry())

	job.complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
}

type recordingSubmitter struct {
	mu   sync.Mutex
	jobs []*Job
	err  error
}

func (r *recordingSubmitter) Submit(job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func TestCronTrigger_NextRun(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	trigger, err := NewCronTrigger(TriggerConfig{
		Kind:     JobKindInstallmentReminder,
		Rule:     DailyAt(8),
		Location: loc,
	}, &recordingSubmitter{}, zap.NewNop())
	require.NoError(t, err)

	now := time.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	assert.True(t, midnight.Add(8*time.Hour).Equal(trigger.NextRun(midnight.Add(7*time.Hour))))
	assert.True(t, midnight.AddDate(0, 0, 1).Add(8*time.Hour).Equal(trigger.NextRun(midnight.Add(8*time.Hour))))
	assert.True(t, midnight.AddDate(0, 0, 3).Add(8*time.Hour).Equal(trigger.NextRun(midnight.AddDate(0, 0, 2).Add(9*time.Hour))))
}

func TestCronTrigger_InvalidRule(t *testing.T) {
	_, err := NewCronTrigger(TriggerConfig{Kind: JobKindInstallmentReminder, Rule: "FREQ=SOMETIMES"}, &recordingSubmitter{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestCronTrigger_FireAndLifecycle(t *testing.T) {
	sub := &recordingSubmitter{}
	trigger, err := NewCronTrigger(TriggerConfig{
		Kind:       JobKindInstallmentReminder,
		Rule:       DailyAt(8),
		MaxRetries: 3,
	}, sub, zap.NewNop())
	require.NoError(t, err)

	asOf := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, trigger.Fire(asOf))
	require.Len(t, sub.jobs, 1)
	assert.Equal(t, JobKindInstallmentReminder, sub.jobs[0].Kind)
	assert.True(t, asOf.Equal(sub.jobs[0].AsOf))
	assert.Equal(t, 3, sub.jobs[0].MaxRetries)

	sub.err = ErrJobQueueFull
	assert.ErrorIs(t, trigger.Fire(asOf), ErrJobQueueFull)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
}

type fakeReminderSource struct {
	asOf  time.Time
	count int
	err   error
}

func (f *fakeReminderSource) PublishInstallmentReminders(_ context.Context, _ shared.EventPublisher, asOf time.Time) (int, error) {
	f.asOf = asOf
	return f.count, f.err
}

func TestInstallmentReminderExecutor(t *testing.T) {
	source := &fakeReminderSource{count: 4}
	exec := NewInstallmentReminderExecutor(source, nil, zap.NewNop())

	asOf := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, exec.Execute(context.Background(), NewJob(JobKindInstallmentReminder, asOf, 0)))
	assert.Equal(t, asOf, source.asOf)

	source.err = errors.New("query failed")
	assert.EqualError(t, exec.Execute(context.Background(), NewJob(JobKindInstallmentReminder, asOf, 0)), "query failed")
}
