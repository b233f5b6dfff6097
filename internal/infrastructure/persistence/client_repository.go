package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a client by its code
func (r *GormClientRepository) FindByCode(ctx context.Context, code string) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists clients; Search matches code, name, phone and NID
func (r *GormClientRepository) FindAll(ctx context.Context, filter partner.ClientFilter) ([]partner.Client, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.ClientModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR phone LIKE ? OR nid LIKE ?",
				pattern, pattern, pattern, pattern)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	if err := applyPaging(scoped(), filter.Filter, clientSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]partner.Client, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// ExistsByCode checks if a client code is taken
func (r *GormClientRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a new client or updates a loaded one under its version check
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	db := r.db.WithContext(ctx)
	if client.IsNew() {
		if err := db.Create(models.ClientModelFromDomain(client)).Error; err != nil {
			return err
		}
		client.MarkPersisted()
		return nil
	}

	err := updateVersioned(db, &models.ClientModel{}, "Client", client.ID, client.PersistedVersion(), map[string]any{
		"name":       client.Name,
		"phone":      client.Phone,
		"email":      client.Email,
		"nid":        client.NID,
		"address":    client.Address,
		"status":     client.Status,
		"notes":      client.Notes,
		"version":    client.Version,
		"updated_at": client.UpdatedAt,
	})
	if err != nil {
		return err
	}
	client.MarkPersisted()
	return nil
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound)
	}
	return nil
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
