package persistence

import (
	"context"
	"fmt"
	"time"

	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberSequence hands out document numbers from the number_sequences
// table. The upsert row-locks the counter until the surrounding transaction
// ends, so a rolled back document gives its number back.
type GormNumberSequence struct {
	db *gorm.DB
}

// NewGormNumberSequence creates a new GormNumberSequence
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

// Next advances the counter for prefix and the month of at, and formats
// the number as PREFIX-YYYYMM-NNNNN.
func (s *GormNumberSequence) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	period := at.Format("200601")
	db := s.db.WithContext(ctx)

	row := models.NumberSequenceModel{Prefix: prefix, Period: period, LastValue: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prefix"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("number_sequences.last_value + 1"),
		}),
	}).Create(&row).Error; err != nil {
		return "", fmt.Errorf("advance %s sequence: %w", prefix, err)
	}

	var current models.NumberSequenceModel
	if err := db.Where("prefix = ? AND period = ?", prefix, period).First(&current).Error; err != nil {
		return "", fmt.Errorf("read %s sequence: %w", prefix, err)
	}
	return FormatDocumentNumber(prefix, period, current.LastValue), nil
}

// FormatDocumentNumber renders PREFIX-YYYYMM-NNNNN
func FormatDocumentNumber(prefix, period string, value int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, period, value)
}

var _ appshared.NumberSequence = (*GormNumberSequence)(nil)
