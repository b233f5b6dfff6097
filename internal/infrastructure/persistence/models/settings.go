package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/settings"
)

// SettingModel stores one runtime setting override
type SettingModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedBy uuid.UUID `gorm:"type:uuid"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Setting
func (m *SettingModel) ToDomain() settings.Setting {
	return settings.Setting{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedBy: m.UpdatedBy,
		UpdatedAt: m.UpdatedAt,
	}
}

// SettingModelFromDomain creates a persistence model from a domain Setting
func SettingModelFromDomain(s settings.Setting) SettingModel {
	return SettingModel{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt,
	}
}

// NumberSequenceModel is the counter behind document numbers, one row
// per prefix and month.
type NumberSequenceModel struct {
	Prefix    string `gorm:"type:varchar(10);primary_key"`
	Period    string `gorm:"type:varchar(6);primary_key"`
	LastValue int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
