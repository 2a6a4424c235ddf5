package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.ActivityEntry) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create activity entry")
	}
	return nil
}

func (r *activityRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.ActivityFilters) ([]*models.ActivityEntry, int64, error) {
	db := r.getDB(tx)
	var entries []*models.ActivityEntry
	var total int64

	query := db.WithContext(ctx).Model(&models.ActivityEntry{}).
		Where("owner_id = ?", ownerID)

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	query = applyDateRange(query, filters.DateFrom, filters.DateTo)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count activity entries")
	}

	query = applyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)

	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, handleDBError(err, "list activity entries")
	}

	return entries, total, nil
}

func (r *activityRepository) DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID string) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.ActivityEntry{}).Error
	if err != nil {
		return handleDBError(err, "delete activity entries")
	}
	return nil
}

func (r *activityRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
