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

type materialRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewMaterialPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MaterialRepository {
	return &materialRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.MaterialCacheConfig.Prefix),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *materialRepository) Create(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(material).Error; err != nil {
		return handleDBError(err, "create study material")
	}

	r.invalidateOwner(ctx, material.OwnerID)
	return nil
}

func (r *materialRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudyMaterial, error) {
	// Cached reads bypass the cache inside a transaction to keep reads
	// consistent with uncommitted writes.
	if tx != nil {
		return r.getByIDUncached(ctx, tx, id)
	}

	var material models.StudyMaterial
	cacheKey := fmt.Sprintf("id:%d", id)

	err := r.cacheHelper.CacheOrExecute(ctx, cacheKey, &material, cache.MaterialCacheConfig.TTL, func() (interface{}, error) {
		return r.getByIDUncached(ctx, nil, id)
	})
	if err != nil {
		return nil, err
	}

	return &material, nil
}

func (r *materialRepository) getByIDUncached(ctx context.Context, tx *gorm.DB, id uint) (*models.StudyMaterial, error) {
	db := r.getDB(tx)
	var material models.StudyMaterial

	if err := db.WithContext(ctx).First(&material, id).Error; err != nil {
		return nil, handleDBError(err, "get study material by id")
	}

	return &material, nil
}

func (r *materialRepository) Update(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(material).Error; err != nil {
		return handleDBError(err, "update study material")
	}

	r.invalidate(ctx, material.ID, material.OwnerID)
	return nil
}

func (r *materialRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	// Fetch first so the owner's cached lists can be invalidated.
	material, err := r.getByIDUncached(ctx, tx, id)
	if err != nil {
		return err
	}

	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.StudyMaterial{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete study material")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete study material: %w", repositories.ErrNotFound)
	}

	r.invalidate(ctx, id, material.OwnerID)
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *materialRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	filters.OwnerID = &ownerID
	return r.list(ctx, tx, filters)
}

func (r *materialRepository) GetPublic(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	isPublic := true
	filters.IsPublic = &isPublic
	return r.list(ctx, tx, filters)
}

func (r *materialRepository) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	db := r.getDB(tx)
	var materials []*models.StudyMaterial
	var total int64

	searchQuery := "%" + query + "%"
	dbQuery := db.WithContext(ctx).Model(&models.StudyMaterial{}).
		Where("title ILIKE ? OR subject ILIKE ?", searchQuery, searchQuery)

	dbQuery = r.applyFilters(dbQuery, filters)

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count material search results")
	}

	dbQuery = applyPaginationAndSort(dbQuery, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := dbQuery.Find(&materials).Error; err != nil {
		return nil, 0, handleDBError(err, "search study materials")
	}

	return materials, total, nil
}

func (r *materialRepository) list(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	db := r.getDB(tx)
	var materials []*models.StudyMaterial
	var total int64

	query := db.WithContext(ctx).Model(&models.StudyMaterial{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count study materials")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&materials).Error; err != nil {
		return nil, 0, handleDBError(err, "list study materials")
	}

	return materials, total, nil
}

// ===== STATISTICS =====

func (r *materialRepository) GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*repositories.MaterialStats, error) {
	db := r.getDB(tx)
	stats := &repositories.MaterialStats{
		MaterialsByType: make(map[models.MaterialType]int),
	}

	type typeCount struct {
		Type  models.MaterialType
		Count int
	}
	var counts []typeCount

	err := db.WithContext(ctx).Model(&models.StudyMaterial{}).
		Select("type, count(*) as count").
		Where("owner_id = ?", ownerID).
		Group("type").
		Scan(&counts).Error
	if err != nil {
		return nil, handleDBError(err, "count materials by type")
	}

	for _, tc := range counts {
		stats.MaterialsByType[tc.Type] = tc.Count
		stats.TotalMaterials += tc.Count
	}

	var publicCount int64
	err = db.WithContext(ctx).Model(&models.StudyMaterial{}).
		Where("owner_id = ? AND is_public = ?", ownerID, true).
		Count(&publicCount).Error
	if err != nil {
		return nil, handleDBError(err, "count public materials")
	}
	stats.PublicMaterials = int(publicCount)

	err = db.WithContext(ctx).Model(&models.StudyMaterial{}).
		Distinct("subject").
		Where("owner_id = ? AND subject <> ''", ownerID).
		Pluck("subject", &stats.Subjects).Error
	if err != nil {
		return nil, handleDBError(err, "list material subjects")
	}

	return stats, nil
}

// ===== HELPERS =====

func (r *materialRepository) applyFilters(query *gorm.DB, filters repositories.MaterialFilters) *gorm.DB {
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.IsPublic != nil {
		query = query.Where("is_public = ?", *filters.IsPublic)
	}
	return applyDateRange(query, filters.DateFrom, filters.DateTo)
}

func (r *materialRepository) invalidate(ctx context.Context, id uint, ownerID string) {
	r.cacheHelper.Delete(ctx, fmt.Sprintf("id:%d", id))
	r.invalidateOwner(ctx, ownerID)
}

func (r *materialRepository) invalidateOwner(ctx context.Context, ownerID string) {
	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", ownerID))
}

func (r *materialRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
