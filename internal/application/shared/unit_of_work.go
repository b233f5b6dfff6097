package shared

import (
	"context"

	dshared "github.com/landerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Work is handed to a unit-of-work function. Aggregates passed to Track
// have their domain events published once the transaction commits.
type Work struct {
	Repos   Repositories
	tracked []dshared.AggregateRoot
}

// Track registers aggregates whose events should be published after commit
func (w *Work) Track(aggs ...dshared.AggregateRoot) {
	w.tracked = append(w.tracked, aggs...)
}

func (w *Work) drainEvents() []dshared.DomainEvent {
	var events []dshared.DomainEvent
	for _, agg := range w.tracked {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	return events
}

// UnitOfWork serializes work on keys, runs it in one transaction and
// publishes the resulting events after commit.
type UnitOfWork struct {
	scope     TransactionScope
	locker    dshared.Locker
	publisher dshared.EventPublisher
	logger    *zap.Logger
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(scope TransactionScope, locker dshared.Locker, publisher dshared.EventPublisher, logger *zap.Logger) *UnitOfWork {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitOfWork{
		scope:     scope,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

// Do acquires the keyed locks, executes fn inside a transaction and, on
// commit, publishes the events of every tracked aggregate. Publication
// failures are logged and never undo the committed state.
func (u *UnitOfWork) Do(ctx context.Context, keys []string, fn func(w *Work) error) error {
	if len(keys) > 0 && u.locker != nil {
		unlock, err := u.locker.Lock(ctx, keys...)
		if err != nil {
			return err
		}
		defer unlock()
	}

	var work *Work
	err := u.scope.Execute(ctx, func(repos Repositories) error {
		work = &Work{Repos: repos}
		return fn(work)
	})
	if err != nil {
		if work != nil {
			work.drainEvents()
		}
		return err
	}

	events := work.drainEvents()
	if len(events) == 0 || u.publisher == nil {
		return nil
	}
	if err := u.publisher.Publish(ctx, events...); err != nil {
		u.logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
	return nil
}

// Read runs fn inside a transaction without taking keyed locks
func (u *UnitOfWork) Read(ctx context.Context, fn func(repos Repositories) error) error {
	return u.scope.Execute(ctx, fn)
}
