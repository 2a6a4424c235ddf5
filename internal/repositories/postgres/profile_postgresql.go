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

type profileRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewProfilePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProfileRepository {
	return &profileRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.ProfileCacheConfig.Prefix),
	}
}

func (r *profileRepository) Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		return handleDBError(err, "create profile")
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	if tx != nil {
		return r.getByIDUncached(ctx, tx, id)
	}

	var profile models.Profile
	cacheKey := fmt.Sprintf("id:%s", id)

	err := r.cacheHelper.CacheOrExecute(ctx, cacheKey, &profile, cache.ProfileCacheConfig.TTL, func() (interface{}, error) {
		return r.getByIDUncached(ctx, nil, id)
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) getByIDUncached(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	db := r.getDB(tx)
	var profile models.Profile

	if err := db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get profile by id")
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(profile).Error; err != nil {
		return handleDBError(err, "update profile")
	}

	r.cacheHelper.Delete(ctx, fmt.Sprintf("id:%s", profile.ID))
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete profile")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete profile: %w", repositories.ErrNotFound)
	}

	r.cacheHelper.Delete(ctx, fmt.Sprintf("id:%s", id))
	return nil
}

func (r *profileRepository) Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*models.Profile, int64, error) {
	db := r.getDB(tx)
	var profiles []*models.Profile
	var total int64

	searchQuery := "%" + query + "%"
	dbQuery := db.WithContext(ctx).Model(&models.Profile{}).
		Where("full_name ILIKE ? OR email ILIKE ?", searchQuery, searchQuery)

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count profile search results")
	}

	dbQuery = applyPaginationAndSort(dbQuery, "created_at", "desc", limit, offset)

	if err := dbQuery.Find(&profiles).Error; err != nil {
		return nil, 0, handleDBError(err, "search profiles")
	}

	return profiles, total, nil
}

func (r *profileRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
