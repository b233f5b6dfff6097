package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT ... FOR UPDATE. sqlite has no row locks; its single
// writer connection already serializes transactions.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// translateNotFound maps gorm's record-not-found to the domain error
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// applyPaging adds whitelisted ordering plus offset and limit
func applyPaging(query *gorm.DB, filter shared.Filter, sort sortable) *gorm.DB {
	filter = filter.Normalize()
	return query.Clauses(sort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// likePattern builds a pattern for LOWER(column) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// updateVersioned writes the given columns when the stored row still holds
// the version the aggregate was loaded with.
func updateVersioned(tx *gorm.DB, model any, entity string, id uuid.UUID, persistedVersion int, values map[string]any) error {
	result := tx.Model(model).
		Where("id = ? AND version = ?", id, persistedVersion).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyConflictError(entity, id)
	}
	return nil
}
