package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/cache"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
)

type examResultRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewExamResultPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExamResultRepository {
	return &examResultRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.ExamCacheConfig.Prefix),
	}
}

func (r *examResultRepository) Create(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return handleDBError(err, "create exam result")
	}

	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", result.OwnerID))
	return nil
}

func (r *examResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamResult, error) {
	db := r.getDB(tx)
	var result models.ExamResult

	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, handleDBError(err, "get exam result by id")
	}

	return &result, nil
}

func (r *examResultRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	db := r.getDB(tx)
	res := db.WithContext(ctx).Delete(&models.ExamResult{}, id)
	if res.Error != nil {
		return handleDBError(res.Error, "delete exam result")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete exam result: %w", repositories.ErrNotFound)
	}

	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", result.OwnerID))
	return nil
}

func (r *examResultRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.ExamResultFilters) ([]*models.ExamResult, int64, error) {
	db := r.getDB(tx)
	var results []*models.ExamResult
	var total int64

	query := db.WithContext(ctx).Model(&models.ExamResult{}).
		Where("owner_id = ?", ownerID)

	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.MaterialID != nil {
		query = query.Where("material_id = ?", *filters.MaterialID)
	}
	query = applyDateRange(query, filters.DateFrom, filters.DateTo)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count exam results")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, handleDBError(err, "list exam results")
	}

	return results, total, nil
}

func (r *examResultRepository) GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*repositories.ExamStats, error) {
	db := r.getDB(tx)
	stats := &repositories.ExamStats{}

	type aggregate struct {
		Total    int
		Average  float64
		Best     float64
		Subjects int
	}
	var agg aggregate

	err := db.WithContext(ctx).Model(&models.ExamResult{}).
		Select("count(*) as total, coalesce(avg(percentage), 0) as average, coalesce(max(percentage), 0) as best, count(distinct subject) as subjects").
		Where("owner_id = ?", ownerID).
		Scan(&agg).Error
	if err != nil {
		return nil, handleDBError(err, "aggregate exam stats")
	}

	stats.TotalExams = agg.Total
	stats.AveragePercentage = agg.Average
	stats.BestPercentage = agg.Best
	stats.SubjectCount = agg.Subjects

	return stats, nil
}

func (r *examResultRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
