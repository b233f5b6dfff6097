package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/land"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRSNumberRepository implements land.RSNumberRepository using GORM
type GormRSNumberRepository struct {
	db *gorm.DB
}

// NewGormRSNumberRepository creates a new GormRSNumberRepository
func NewGormRSNumberRepository(db *gorm.DB) *GormRSNumberRepository {
	return &GormRSNumberRepository{db: db}
}

// FindByID finds an RS number by its ID
func (r *GormRSNumberRepository) FindByID(ctx context.Context, id uuid.UUID) (*land.RSNumber, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an RS number and locks its row
func (r *GormRSNumberRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*land.RSNumber, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormRSNumberRepository) find(db *gorm.DB, id uuid.UUID) (*land.RSNumber, error) {
	var model models.RSNumberModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists RS numbers matching the filter
func (r *GormRSNumberRepository) FindAll(ctx context.Context, filter land.RSNumberFilter) ([]land.RSNumber, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.RSNumberModel{})
		if filter.ProjectName != "" {
			query = query.Where("project_name = ?", filter.ProjectName)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			query = query.Where("LOWER(number) LIKE ? OR LOWER(project_name) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern, pattern)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.RSNumberModel
	if err := applyPaging(scoped(), filter.Filter, rsNumberSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]land.RSNumber, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// ExistsByNumber checks whether an RS number is already registered
func (r *GormRSNumberRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RSNumberModel{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates a new RS number
func (r *GormRSNumberRepository) Save(ctx context.Context, rs *land.RSNumber) error {
	if err := r.db.WithContext(ctx).Create(models.RSNumberModelFromDomain(rs)).Error; err != nil {
		return err
	}
	rs.MarkPersisted()
	return nil
}

// SaveWithLock updates an RS number when nobody else changed it since it was loaded
func (r *GormRSNumberRepository) SaveWithLock(ctx context.Context, rs *land.RSNumber) error {
	err := updateVersioned(r.db.WithContext(ctx), &models.RSNumberModel{}, "RS number", rs.ID, rs.PersistedVersion(), map[string]any{
		"project_name":   rs.ProjectName,
		"location":       rs.Location,
		"total_area":     rs.TotalArea,
		"sold_area":      rs.SoldArea,
		"allocated_area": rs.AllocatedArea,
		"remaining_area": rs.RemainingArea,
		"notes":          rs.Notes,
		"version":        rs.Version,
		"updated_at":     rs.UpdatedAt,
	})
	if err != nil {
		return err
	}
	rs.MarkPersisted()
	return nil
}

// GormPlotRepository implements land.PlotRepository using GORM
type GormPlotRepository struct {
	db *gorm.DB
}

// NewGormPlotRepository creates a new GormPlotRepository
func NewGormPlotRepository(db *gorm.DB) *GormPlotRepository {
	return &GormPlotRepository{db: db}
}

// FindByID finds a plot by its ID
func (r *GormPlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*land.Plot, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a plot and locks its row
func (r *GormPlotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*land.Plot, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormPlotRepository) find(db *gorm.DB, id uuid.UUID) (*land.Plot, error) {
	var model models.PlotModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists plots matching the filter
func (r *GormPlotRepository) FindAll(ctx context.Context, filter land.PlotFilter) ([]land.Plot, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.PlotModel{})
		if filter.RSNumberID != nil {
			query = query.Where("rs_number_id = ?", *filter.RSNumberID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Search != "" {
			query = query.Where("LOWER(plot_number) LIKE ?", likePattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PlotModel
	if err := applyPaging(scoped(), filter.Filter, plotSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]land.Plot, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// ExistsByPlotNumber checks whether a plot number is taken within an RS number
func (r *GormPlotRepository) ExistsByPlotNumber(ctx context.Context, rsNumberID uuid.UUID, plotNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PlotModel{}).
		Where("rs_number_id = ? AND plot_number = ?", rsNumberID, plotNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumActiveArea totals plot area per bucket for an RS number
func (r *GormPlotRepository) SumActiveArea(ctx context.Context, rsNumberID uuid.UUID) (land.AreaTotals, error) {
	var rows []struct {
		Bucket land.AreaBucket
		Total  decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PlotModel{}).
		Select("bucket, COALESCE(SUM(area), 0) AS total").
		Where("rs_number_id = ? AND bucket <> ?", rsNumberID, land.BucketNone).
		Group("bucket").
		Scan(&rows).Error; err != nil {
		return land.AreaTotals{}, err
	}

	totals := land.AreaTotals{Allocated: decimal.Zero, Sold: decimal.Zero}
	for _, row := range rows {
		switch row.Bucket {
		case land.BucketAllocated:
			totals.Allocated = row.Total
		case land.BucketSold:
			totals.Sold = row.Total
		}
	}
	return totals, nil
}

// Save creates a new plot
func (r *GormPlotRepository) Save(ctx context.Context, plot *land.Plot) error {
	if err := r.db.WithContext(ctx).Create(models.PlotModelFromDomain(plot)).Error; err != nil {
		return err
	}
	plot.MarkPersisted()
	return nil
}

// SaveWithLock updates a plot when nobody else changed it since it was loaded
func (r *GormPlotRepository) SaveWithLock(ctx context.Context, plot *land.Plot) error {
	err := updateVersioned(r.db.WithContext(ctx), &models.PlotModel{}, "Plot", plot.ID, plot.PersistedVersion(), map[string]any{
		"area":       plot.Area,
		"status":     plot.Status,
		"bucket":     plot.Bucket,
		"client_id":  plot.ClientID,
		"sale_date":  plot.SaleDate,
		"facing":     plot.Facing,
		"road_width": plot.RoadWidth,
		"notes":      plot.Notes,
		"version":    plot.Version,
		"updated_at": plot.UpdatedAt,
	})
	if err != nil {
		return err
	}
	plot.MarkPersisted()
	return nil
}

// Delete removes a plot
func (r *GormPlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PlotModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateNotFound(gorm.ErrRecordNotFound)
	}
	return nil
}

var (
	_ land.RSNumberRepository = (*GormRSNumberRepository)(nil)
	_ land.PlotRepository     = (*GormPlotRepository)(nil)
)
