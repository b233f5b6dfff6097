package approval

import "github.com/landerp/backend/internal/domain/shared"

// Subject is an aggregate that moves through the approval workflow.
// Receipt and Expense implement it; the application layer binds each one
// to its own post-approval side effect.
type Subject interface {
	shared.AggregateRoot
	SubjectType() string
	Workflow() *Workflow
	// OnSubmitted, OnApproved and OnRejected let the aggregate record its own
	// events and bump its version after a workflow transition.
	OnSubmitted(actor shared.Actor)
	OnApproved(actor shared.Actor, final bool)
	OnRejected(actor shared.Actor, remarks string)
}

// Submit applies the submit transition to a subject
func Submit(subject Subject, actor shared.Actor, remarks string) error {
	if err := subject.Workflow().Submit(actor, remarks); err != nil {
		return err
	}
	subject.OnSubmitted(actor)
	return nil
}

// Approve applies the approve transition and reports whether the subject is now APPROVED
func Approve(subject Subject, actor shared.Actor, remarks string) (bool, error) {
	final, err := subject.Workflow().Approve(actor, remarks)
	if err != nil {
		return false, err
	}
	subject.OnApproved(actor, final)
	return final, nil
}

// Reject applies the reject transition to a subject
func Reject(subject Subject, actor shared.Actor, remarks string) error {
	if err := subject.Workflow().Reject(actor, remarks); err != nil {
		return err
	}
	subject.OnRejected(actor, remarks)
	return nil
}
