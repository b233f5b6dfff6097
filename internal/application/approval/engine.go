// Package approval runs the two-tier approval workflow for any subject
// inside the unit of work and fires the subject's side effect on final
// approval.
package approval

import (
	"context"
	"slices"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SideEffect runs in the same transaction as the final approval. An error
// rolls the approval back.
type SideEffect[T approval.Subject] func(ctx context.Context, w *appshared.Work, subject T) error

// Binding ties a subject type to its storage and side effect
type Binding[T approval.Subject] struct {
	// Kind is the lock key kind of the subject
	Kind string

	Load func(ctx context.Context, repos appshared.Repositories, id uuid.UUID, forUpdate bool) (T, error)
	Save func(ctx context.Context, repos appshared.Repositories, subject T) error

	// LockKeys returns extra keys the side effect needs, e.g. the sale of a receipt
	LockKeys func(subject T) []string

	// CheckSubmit validates linked state when a draft enters the queue
	CheckSubmit SideEffect[T]
	OnApproved  SideEffect[T]
}

// Engine drives approval transitions for one subject type
type Engine[T approval.Subject] struct {
	uow     *appshared.UnitOfWork
	binding Binding[T]
	logger  *zap.Logger
}

// NewEngine creates a new Engine
func NewEngine[T approval.Subject](uow *appshared.UnitOfWork, binding Binding[T], logger *zap.Logger) *Engine[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine[T]{uow: uow, binding: binding, logger: logger}
}

// Submit moves a draft subject into the accounts queue
func (e *Engine[T]) Submit(ctx context.Context, actor shared.Actor, id uuid.UUID, remarks string) (T, error) {
	return e.transition(ctx, "submit", id, func(w *appshared.Work, subject T) error {
		if err := approval.Submit(subject, actor, remarks); err != nil {
			return err
		}
		if e.binding.CheckSubmit != nil {
			return e.binding.CheckSubmit(ctx, w, subject)
		}
		return nil
	})
}

// Approve passes the current gate. On the final gate the side effect runs
// in the same transaction; if it fails nothing is persisted.
func (e *Engine[T]) Approve(ctx context.Context, actor shared.Actor, id uuid.UUID, remarks string) (T, error) {
	return e.transition(ctx, "approve", id, func(w *appshared.Work, subject T) error {
		final, err := approval.Approve(subject, actor, remarks)
		if err != nil {
			return err
		}
		if final && e.binding.OnApproved != nil {
			return e.binding.OnApproved(ctx, w, subject)
		}
		return nil
	})
}

// Reject ends the workflow of a pending subject
func (e *Engine[T]) Reject(ctx context.Context, actor shared.Actor, id uuid.UUID, remarks string) (T, error) {
	return e.transition(ctx, "reject", id, func(w *appshared.Work, subject T) error {
		return approval.Reject(subject, actor, remarks)
	})
}

// History returns the approval history of a subject
func (e *Engine[T]) History(ctx context.Context, id uuid.UUID) ([]approval.Entry, error) {
	var history []approval.Entry
	err := e.uow.Read(ctx, func(repos appshared.Repositories) error {
		subject, err := e.binding.Load(ctx, repos, id, false)
		if err != nil {
			return err
		}
		history = subject.Workflow().History()
		return nil
	})
	return history, err
}

func (e *Engine[T]) transition(ctx context.Context, method string, id uuid.UUID, apply func(w *appshared.Work, subject T) error) (T, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, e.binding.Kind, method)
	defer span.End()
	telemetry.SetAttributes(span, e.binding.Kind+"_id", id.String())

	var zero T
	keys, err := e.lockKeys(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}

	var subject T
	err = e.uow.Do(ctx, keys, func(w *appshared.Work) error {
		loaded, err := e.binding.Load(ctx, w.Repos, id, true)
		if err != nil {
			return err
		}
		// The extra keys were computed before locking; the linked ids must
		// still match what we hold.
		if !slices.Equal(e.extraKeys(loaded), keys[1:]) {
			return shared.NewConcurrencyConflictError(e.binding.Kind, id)
		}
		if err := apply(w, loaded); err != nil {
			return err
		}
		w.Track(loaded)
		if err := e.binding.Save(ctx, w.Repos, loaded); err != nil {
			return err
		}
		subject = loaded
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}

	e.logger.Info("Approval transition applied",
		zap.String("subject_type", subject.SubjectType()),
		zap.String("subject_id", id.String()),
		zap.String("action", method),
		zap.String("status", subject.Workflow().Status.String()),
	)
	return subject, nil
}

// lockKeys reads the subject without locks to learn which related
// aggregates the transition touches
func (e *Engine[T]) lockKeys(ctx context.Context, id uuid.UUID) ([]string, error) {
	keys := []string{shared.LockKey(e.binding.Kind, id)}
	if e.binding.LockKeys == nil {
		return keys, nil
	}
	err := e.uow.Read(ctx, func(repos appshared.Repositories) error {
		subject, err := e.binding.Load(ctx, repos, id, false)
		if err != nil {
			return err
		}
		keys = append(keys, e.extraKeys(subject)...)
		return nil
	})
	return keys, err
}

func (e *Engine[T]) extraKeys(subject T) []string {
	if e.binding.LockKeys == nil {
		return []string{}
	}
	keys := e.binding.LockKeys(subject)
	if keys == nil {
		return []string{}
	}
	return keys
}
