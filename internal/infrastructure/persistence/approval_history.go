package persistence

import (
	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loadHistory returns the approval history of the given subjects keyed by subject ID
func loadHistory(db *gorm.DB, subjectType string, ids ...uuid.UUID) (map[uuid.UUID][]models.ApprovalEntryModel, error) {
	out := make(map[uuid.UUID][]models.ApprovalEntryModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ApprovalEntryModel
	if err := db.
		Where("subject_type = ? AND subject_id IN ?", subjectType, ids).
		Order("subject_id, sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SubjectID] = append(out[row.SubjectID], row)
	}
	return out, nil
}

// appendHistory inserts history entries the table does not hold yet.
// Entries already stored are left untouched.
func appendHistory(db *gorm.DB, subjectType string, subjectID uuid.UUID, entries []approval.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.ApprovalEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.ApprovalEntryModelFromDomain(subjectType, subjectID, e)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_type"}, {Name: "subject_id"}, {Name: "sequence"}},
		DoNothing: true,
	}).Create(&rows).Error
}
