package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/sales"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadStages(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

// FindByID finds a sale with its stages
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a sale and locks its row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormSaleRepository) find(db *gorm.DB, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := db.Preload("Stages", preloadStages).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.SaleModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.PlotID != nil {
			query = query.Where("plot_id = ?", *filter.PlotID)
		}
		if filter.RSNumberID != nil {
			query = query.Where("rs_number_id = ?", *filter.RSNumberID)
		}
		if filter.FromDate != nil {
			query = query.Where("sale_date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			query = query.Where("sale_date <= ?", *filter.ToDate)
		}
		if filter.Search != "" {
			query = query.Where("LOWER(sale_number) LIKE ?", likePattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := applyPaging(scoped(), filter.Filter, saleSort).
		Preload("Stages", preloadStages).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toSales(rows), total, nil
}

// FindActiveWithDueStages lists active sales that have an unpaid stage due on or before dueBy
func (r *GormSaleRepository) FindActiveWithDueStages(ctx context.Context, dueBy time.Time) ([]sales.Sale, error) {
	due := r.db.WithContext(ctx).Model(&models.SaleStageModel{}).
		Select("sale_id").
		Where("status <> ? AND due_date <= ?", sales.StageStatusCompleted, dueBy)

	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND id IN (?)", sales.SaleStatusActive, due).
		Order("sale_number ASC").
		Preload("Stages", preloadStages).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSales(rows), nil
}

// ExistsActiveForPlot checks whether a non-cancelled sale holds the plot
func (r *GormSaleRepository) ExistsActiveForPlot(ctx context.Context, plotID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("plot_id = ? AND status <> ?", plotID, sales.SaleStatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveForClient counts non-cancelled sales of a client
func (r *GormSaleRepository) CountActiveForClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("client_id = ? AND status <> ?", clientID, sales.SaleStatusCancelled).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates a new sale together with its stages
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	stages := model.Stages
	model.Stages = nil

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	if len(stages) > 0 {
		if err := db.Create(&stages).Error; err != nil {
			return err
		}
	}
	sale.MarkPersisted()
	return nil
}

// SaveWithLock updates a sale and its stage amounts when nobody else changed
// the sale since it was loaded. The stage plan itself never changes after
// creation, so only amounts and statuses are written.
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	db := r.db.WithContext(ctx)
	err := updateVersioned(db, &models.SaleModel{}, "Sale", sale.ID, sale.PersistedVersion(), map[string]any{
		"paid_amount":          sale.PaidAmount,
		"due_amount":           sale.DueAmount,
		"status":               sale.Status,
		"hold_reason":          sale.HoldReason,
		"cancellation_pending": sale.CancellationPending,
		"cancelled_at":         sale.CancelledAt,
		"completed_at":         sale.CompletedAt,
		"version":              sale.Version,
		"updated_at":           sale.UpdatedAt,
	})
	if err != nil {
		return err
	}

	for i := range sale.Stages {
		stage := &sale.Stages[i]
		if err := db.Model(&models.SaleStageModel{}).
			Where("id = ? AND sale_id = ?", stage.ID, sale.ID).
			Updates(map[string]any{
				"received_amount": stage.ReceivedAmount,
				"due_amount":      stage.DueAmount,
				"status":          stage.Status,
			}).Error; err != nil {
			return err
		}
	}
	sale.MarkPersisted()
	return nil
}

func toSales(rows []models.SaleModel) []sales.Sale {
	items := make([]sales.Sale, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
