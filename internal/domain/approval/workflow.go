// Package approval implements the two-tier approval state machine shared by
// receipts and expenses: DRAFT → PENDING_ACCOUNTS → PENDING_HOF → APPROVED,
// with REJECTED reachable from either pending state.
package approval

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
)

// Status is the tagged state of an item in the workflow
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingAccounts Status = "PENDING_ACCOUNTS"
	StatusPendingHOF      Status = "PENDING_HOF"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// IsValid checks if the status is a known workflow state
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingAccounts, StatusPendingHOF, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true when no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsPending returns true while the item waits at an approval gate
func (s Status) IsPending() bool {
	return s == StatusPendingAccounts || s == StatusPendingHOF
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Action is what an actor does to an item
type Action string

const (
	ActionSubmit  Action = "SUBMITTED"
	ActionApprove Action = "APPROVED"
	ActionReject  Action = "REJECTED"
)

var verbs = map[Action]string{
	ActionSubmit:  "submit",
	ActionApprove: "approve",
	ActionReject:  "reject",
}

// transitions is the state machine: (from, action) → to
var transitions = map[Status]map[Action]Status{
	StatusDraft: {
		ActionSubmit: StatusPendingAccounts,
	},
	StatusPendingAccounts: {
		ActionApprove: StatusPendingHOF,
		ActionReject:  StatusRejected,
	},
	StatusPendingHOF: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
}

// gates lists the roles allowed to decide at each pending state
var gates = map[Status][]shared.Role{
	StatusPendingAccounts: {shared.RoleAccountManager},
	StatusPendingHOF:      {shared.RoleHOF, shared.RoleAdmin},
}

// GateRoles returns the roles that may approve or reject at the given status
func GateRoles(s Status) []shared.Role {
	return gates[s]
}

// Entry is one immutable line of approval history
type Entry struct {
	Sequence   int
	ActorID    uuid.UUID
	ActorName  string
	Role       shared.Role
	Action     Action
	FromStatus Status
	ToStatus   Status
	Remarks    string
	At         time.Time
}

// Workflow is the approval state carried by an aggregate.
// History is append-only: entries are never edited or removed.
type Workflow struct {
	Status      Status
	CreatedBy   uuid.UUID
	SubmittedAt *time.Time
	DecidedAt   *time.Time
	history     []Entry
}

// New creates a workflow in DRAFT owned by its creator
func New(createdBy uuid.UUID) Workflow {
	return Workflow{
		Status:    StatusDraft,
		CreatedBy: createdBy,
	}
}

// Restore rebuilds a workflow from persisted state
func Restore(status Status, createdBy uuid.UUID, submittedAt, decidedAt *time.Time, history []Entry) Workflow {
	h := make([]Entry, len(history))
	copy(h, history)
	return Workflow{
		Status:      status,
		CreatedBy:   createdBy,
		SubmittedAt: submittedAt,
		DecidedAt:   decidedAt,
		history:     h,
	}
}

// History returns a copy of the approval history in order
func (w *Workflow) History() []Entry {
	out := make([]Entry, len(w.history))
	copy(out, w.history)
	return out
}

// Submit moves a draft into the accounts queue.
// Only the creator or an admin may submit.
func (w *Workflow) Submit(actor shared.Actor, remarks string) error {
	if actor.UserID != w.CreatedBy && !actor.HasRole(shared.RoleAdmin) {
		return shared.NewDomainError(shared.CodeForbidden, "Only the creator or an admin can submit")
	}
	if _, err := w.apply(actor, ActionSubmit, remarks); err != nil {
		return err
	}
	now := w.history[len(w.history)-1].At
	w.SubmittedAt = &now
	return nil
}

// Approve passes the current gate. It returns true when the item reached
// the terminal APPROVED state with this call.
func (w *Workflow) Approve(actor shared.Actor, remarks string) (bool, error) {
	if err := w.checkGate(actor); err != nil {
		return false, err
	}
	to, err := w.apply(actor, ActionApprove, remarks)
	if err != nil {
		return false, err
	}
	if to == StatusApproved {
		now := w.history[len(w.history)-1].At
		w.DecidedAt = &now
		return true, nil
	}
	return false, nil
}

// Reject ends the workflow. Remarks are mandatory.
func (w *Workflow) Reject(actor shared.Actor, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return shared.NewValidationError("Remarks are required to reject")
	}
	if err := w.checkGate(actor); err != nil {
		return err
	}
	if _, err := w.apply(actor, ActionReject, remarks); err != nil {
		return err
	}
	now := w.history[len(w.history)-1].At
	w.DecidedAt = &now
	return nil
}

// CanDecide reports whether the actor holds a role for the current gate
func (w *Workflow) CanDecide(actor shared.Actor) bool {
	return w.Status.IsPending() && actor.HasRole(gates[w.Status]...)
}

func (w *Workflow) checkGate(actor shared.Actor) error {
	if w.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot act on an item in terminal status " + w.Status.String())
	}
	if !w.Status.IsPending() {
		return shared.NewInvalidStateError("Item must be submitted before it can be decided, current status " + w.Status.String())
	}
	if !actor.HasRole(gates[w.Status]...) {
		return shared.NewDomainError(shared.CodeForbidden, "Role "+string(actor.Role)+" cannot decide at "+w.Status.String())
	}
	return nil
}

func (w *Workflow) apply(actor shared.Actor, action Action, remarks string) (Status, error) {
	to, ok := transitions[w.Status][action]
	if !ok {
		return "", shared.NewInvalidStateError("Cannot " + verbs[action] + " an item in status " + w.Status.String())
	}
	entry := Entry{
		Sequence:   len(w.history) + 1,
		ActorID:    actor.UserID,
		ActorName:  actor.Name,
		Role:       actor.Role,
		Action:     action,
		FromStatus: w.Status,
		ToStatus:   to,
		Remarks:    strings.TrimSpace(remarks),
		At:         time.Now(),
	}
	w.history = append(w.history, entry)
	w.Status = to
	return to, nil
}
