package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCancellationRepository implements sales.CancellationRepository using GORM
type GormCancellationRepository struct {
	db *gorm.DB
}

// NewGormCancellationRepository creates a new GormCancellationRepository
func NewGormCancellationRepository(db *gorm.DB) *GormCancellationRepository {
	return &GormCancellationRepository{db: db}
}

func preloadRefunds(db *gorm.DB) *gorm.DB {
	return db.Order("paid_at ASC, id ASC")
}

// FindByID finds a cancellation with its refund payments
func (r *GormCancellationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Cancellation, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a cancellation and locks its row
func (r *GormCancellationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Cancellation, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormCancellationRepository) find(db *gorm.DB, id uuid.UUID) (*sales.Cancellation, error) {
	var model models.CancellationModel
	if err := db.Preload("Refunds", preloadRefunds).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain()
}

// FindAll lists cancellations matching the filter
func (r *GormCancellationRepository) FindAll(ctx context.Context, filter sales.CancellationFilter) ([]sales.Cancellation, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.CancellationModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.SaleID != nil {
			query = query.Where("sale_id = ?", *filter.SaleID)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Search != "" {
			query = query.Where("LOWER(cancellation_number) LIKE ?", likePattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CancellationModel
	if err := applyPaging(scoped(), filter.Filter, cancellationSort).
		Preload("Refunds", preloadRefunds).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]sales.Cancellation, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("cancellation %s: %w", rows[i].CancellationNumber, err)
		}
		items[i] = *c
	}
	return items, total, nil
}

// FindPendingBySale finds the pending cancellation of a sale, or nil
func (r *GormCancellationRepository) FindPendingBySale(ctx context.Context, saleID uuid.UUID) (*sales.Cancellation, error) {
	var rows []models.CancellationModel
	if err := r.db.WithContext(ctx).
		Preload("Refunds", preloadRefunds).
		Where("sale_id = ? AND status = ?", saleID, sales.CancellationStatusPending).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToDomain()
}

// Save creates a new cancellation
func (r *GormCancellationRepository) Save(ctx context.Context, c *sales.Cancellation) error {
	model := &models.CancellationModel{}
	if err := model.FromDomain(c); err != nil {
		return err
	}
	refunds := model.Refunds
	model.Refunds = nil

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	if err := insertRefunds(db, refunds); err != nil {
		return err
	}
	c.MarkPersisted()
	return nil
}

// SaveWithLock updates a cancellation and appends refund payments it has not stored yet
func (r *GormCancellationRepository) SaveWithLock(ctx context.Context, c *sales.Cancellation) error {
	model := &models.CancellationModel{}
	if err := model.FromDomain(c); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	err := updateVersioned(db, &models.CancellationModel{}, "Cancellation", c.ID, c.PersistedVersion(), map[string]any{
		"refunded_amount":  c.RefundedAmount,
		"status":           c.Status,
		"decided_by":       c.DecidedBy,
		"decided_at":       c.DecidedAt,
		"decision_remarks": c.DecisionRemarks,
		"version":          c.Version,
		"updated_at":       c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := insertRefunds(db, model.Refunds); err != nil {
		return err
	}
	c.MarkPersisted()
	return nil
}

// insertRefunds writes refund rows, skipping those already stored
func insertRefunds(db *gorm.DB, refunds []models.RefundPaymentModel) error {
	if len(refunds) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&refunds).Error
}

var _ sales.CancellationRepository = (*GormCancellationRepository)(nil)
