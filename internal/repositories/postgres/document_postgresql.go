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

type documentRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewDocumentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DocumentRepository {
	return &documentRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.DocumentCacheConfig.Prefix),
	}
}

func (r *documentRepository) Create(ctx context.Context, tx *gorm.DB, doc *models.Document) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		return handleDBError(err, "create document")
	}

	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", doc.OwnerID))
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Document, error) {
	db := r.getDB(tx)
	var doc models.Document

	if err := db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, handleDBError(err, "get document by id")
	}

	return &doc, nil
}

func (r *documentRepository) Update(ctx context.Context, tx *gorm.DB, doc *models.Document) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(doc).Error; err != nil {
		return handleDBError(err, "update document")
	}

	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", doc.OwnerID))
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	doc, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete document")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete document: %w", repositories.ErrNotFound)
	}

	r.cacheHelper.InvalidatePattern(ctx, fmt.Sprintf("owner:%s*", doc.OwnerID))
	return nil
}

func (r *documentRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.DocumentFilters) ([]*models.Document, int64, error) {
	db := r.getDB(tx)
	var docs []*models.Document
	var total int64

	query := db.WithContext(ctx).Model(&models.Document{}).
		Where("owner_id = ?", ownerID)
	query = applyDateRange(query, filters.DateFrom, filters.DateTo)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count documents")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&docs).Error; err != nil {
		return nil, 0, handleDBError(err, "list documents")
	}

	return docs, total, nil
}

func (r *documentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
