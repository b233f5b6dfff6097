package persistence

import (
	"context"

	"github.com/landerp/backend/internal/domain/settings"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindAll returns every stored override
func (r *GormSettingsRepository) FindAll(ctx context.Context) ([]settings.Setting, error) {
	var rows []models.SettingModel
	if err := r.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]settings.Setting, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Upsert inserts or replaces the given overrides
func (r *GormSettingsRepository) Upsert(ctx context.Context, items []settings.Setting) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.SettingModel, len(items))
	for i, s := range items {
		rows[i] = models.SettingModelFromDomain(s)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&rows).Error
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
