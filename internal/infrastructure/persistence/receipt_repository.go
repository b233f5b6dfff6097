package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/approval"
	"github.com/landerp/backend/internal/domain/finance"
	"github.com/landerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceiptRepository implements finance.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt with its approval history
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Receipt, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a receipt and locks its row
func (r *GormReceiptRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Receipt, error) {
	return r.find(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormReceiptRepository) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*finance.Receipt, error) {
	var model models.ReceiptModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	history, err := loadHistory(r.db.WithContext(ctx), finance.SubjectTypeReceipt, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(history[model.ID]), nil
}

// FindAll lists receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter finance.ReceiptFilter) ([]finance.Receipt, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.ReceiptModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.SaleID != nil {
			query = query.Where("sale_id = ?", *filter.SaleID)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Method != nil {
			query = query.Where("method = ?", *filter.Method)
		}
		if filter.FromDate != nil {
			query = query.Where("received_date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			query = query.Where("received_date <= ?", *filter.ToDate)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			query = query.Where("LOWER(receipt_number) LIKE ? OR LOWER(cheque_number) LIKE ?", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReceiptModel
	if err := applyPaging(scoped(), filter.Filter, receiptSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items, err := r.toDomain(ctx, rows)
	return items, total, err
}

// FindApprovedBySale lists approved receipts of a sale in approval order
func (r *GormReceiptRepository) FindApprovedBySale(ctx context.Context, saleID uuid.UUID) ([]finance.Receipt, error) {
	var rows []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND status = ?", saleID, approval.StatusApproved).
		Order("decided_at ASC, receipt_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomain(ctx, rows)
}

func (r *GormReceiptRepository) toDomain(ctx context.Context, rows []models.ReceiptModel) ([]finance.Receipt, error) {
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	history, err := loadHistory(r.db.WithContext(ctx), finance.SubjectTypeReceipt, ids...)
	if err != nil {
		return nil, err
	}
	items := make([]finance.Receipt, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain(history[rows[i].ID])
	}
	return items, nil
}

// Save creates a new receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *finance.Receipt) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ReceiptModelFromDomain(receipt)).Error; err != nil {
		return err
	}
	if err := appendHistory(db, finance.SubjectTypeReceipt, receipt.ID, receipt.Workflow().History()); err != nil {
		return err
	}
	receipt.MarkPersisted()
	return nil
}

// SaveWithLock updates a receipt and appends new approval history entries
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, receipt *finance.Receipt) error {
	db := r.db.WithContext(ctx)
	wf := receipt.Workflow()
	err := updateVersioned(db, &models.ReceiptModel{}, "Receipt", receipt.ID, receipt.PersistedVersion(), map[string]any{
		"receipt_type":   receipt.ReceiptType,
		"amount":         receipt.Amount,
		"method":         receipt.Method,
		"bank_name":      receipt.Instrument.BankName,
		"cheque_number":  receipt.Instrument.ChequeNumber,
		"cheque_date":    receipt.Instrument.ChequeDate,
		"account_id":     receipt.AccountID,
		"received_date":  receipt.ReceivedDate,
		"notes":          receipt.Notes,
		"attachment_key": receipt.AttachmentKey,
		"status":         wf.Status,
		"submitted_at":   wf.SubmittedAt,
		"decided_at":     wf.DecidedAt,
		"version":        receipt.Version,
		"updated_at":     receipt.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := appendHistory(db, finance.SubjectTypeReceipt, receipt.ID, wf.History()); err != nil {
		return err
	}
	receipt.MarkPersisted()
	return nil
}

var _ finance.ReceiptRepository = (*GormReceiptRepository)(nil)
