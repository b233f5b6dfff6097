package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/shared"
)

// ApprovalEntryModel is one line of approval history. Receipts and expenses
// share the table and are told apart by subject type. Rows are only ever
// inserted.
type ApprovalEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SubjectType string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_approval_subject_sequence,priority:1"`
	SubjectID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_approval_subject_sequence,priority:2"`
	Sequence    int             `gorm:"not null;uniqueIndex:idx_approval_subject_sequence,priority:3"`
	ActorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActorName   string          `gorm:"type:varchar(200)"`
	Role        shared.Role     `gorm:"type:varchar(30);not null"`
	Action      approval.Action `gorm:"type:varchar(20);not null"`
	FromStatus  approval.Status `gorm:"type:varchar(20);not null"`
	ToStatus    approval.Status `gorm:"type:varchar(20);not null"`
	Remarks     string          `gorm:"type:text"`
	At          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ApprovalEntryModel) TableName() string {
	return "approval_history"
}

// ToDomain converts the persistence model to a domain history entry
func (m *ApprovalEntryModel) ToDomain() approval.Entry {
	return approval.Entry{
		Sequence:   m.Sequence,
		ActorID:    m.ActorID,
		ActorName:  m.ActorName,
		Role:       m.Role,
		Action:     m.Action,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Remarks:    m.Remarks,
		At:         m.At,
	}
}

// ApprovalEntryModelFromDomain creates a history row for a subject
func ApprovalEntryModelFromDomain(subjectType string, subjectID uuid.UUID, e approval.Entry) ApprovalEntryModel {
	return ApprovalEntryModel{
		ID:          uuid.New(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Sequence:    e.Sequence,
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		Role:        e.Role,
		Action:      e.Action,
		FromStatus:  e.FromStatus,
		ToStatus:    e.ToStatus,
		Remarks:     e.Remarks,
		At:          e.At,
	}
}

// WorkflowColumns holds the approval state stored on the subject row
type WorkflowColumns struct {
	Status      approval.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SubmittedAt *time.Time
	DecidedAt   *time.Time `gorm:"index"`
}

// FromWorkflow copies the workflow state into the columns
func (w *WorkflowColumns) FromWorkflow(wf *approval.Workflow) {
	w.Status = wf.Status
	w.SubmittedAt = wf.SubmittedAt
	w.DecidedAt = wf.DecidedAt
}

// ToWorkflow rebuilds the workflow with its history
func (w *WorkflowColumns) ToWorkflow(createdBy uuid.UUID, history []ApprovalEntryModel) approval.Workflow {
	entries := make([]approval.Entry, len(history))
	for i := range history {
		entries[i] = history[i].ToDomain()
	}
	return approval.Restore(w.Status, createdBy, w.SubmittedAt, w.DecidedAt, entries)
}
