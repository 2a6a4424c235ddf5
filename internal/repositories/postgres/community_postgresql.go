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

type postRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewPostPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PostRepository {
	return &postRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.FeedCacheConfig.Prefix),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *postRepository) Create(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(post).Error; err != nil {
		return handleDBError(err, "create post")
	}

	r.invalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CommunityPost, error) {
	db := r.getDB(tx)
	var post models.CommunityPost

	if err := db.WithContext(ctx).
		Preload("Owner").
		First(&post, id).Error; err != nil {
		return nil, handleDBError(err, "get post by id")
	}

	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error {
	db := r.getDB(tx)

	// Counters are excluded from entity saves; they only move through the
	// atomic paths below.
	err := db.WithContext(ctx).Model(post).
		Omit("like_count", "comment_count", "created_at", "owner_id").
		Updates(map[string]interface{}{
			"content":     post.Content,
			"material_id": post.MaterialID,
			"updated_at":  post.UpdatedAt,
		}).Error
	if err != nil {
		return handleDBError(err, "update post")
	}

	r.invalidateFeed(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.CommunityPost{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete post")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete post: %w", repositories.ErrNotFound)
	}

	r.invalidateFeed(ctx)
	return nil
}

// ===== FEED QUERIES =====

func (r *postRepository) GetFeed(ctx context.Context, tx *gorm.DB, filters repositories.PostFilters) ([]*models.CommunityPost, int64, error) {
	db := r.getDB(tx)
	var posts []*models.CommunityPost
	var total int64

	query := db.WithContext(ctx).Model(&models.CommunityPost{}).Preload("Owner")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count posts")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, handleDBError(err, "list posts")
	}

	return posts, total, nil
}

func (r *postRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.PostFilters) ([]*models.CommunityPost, int64, error) {
	filters.OwnerID = &ownerID
	return r.GetFeed(ctx, tx, filters)
}

// ===== LIKE MANAGEMENT =====

// AddLike inserts the backing like row and moves the counter with a
// server-side increment. Two concurrent likers both land: the row insert is
// guarded by the unique (post_id, user_id) index and the counter moves by an
// atomic SQL expression, never a read-modify-write from the client.
func (r *postRepository) AddLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error {
	db := r.getDB(tx)

	like := &models.PostLike{PostID: postID, UserID: userID}
	if err := db.WithContext(ctx).Create(like).Error; err != nil {
		return handleDBError(err, "add like")
	}

	result := db.WithContext(ctx).Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	if result.Error != nil {
		return handleDBError(result.Error, "increment like count")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("increment like count: %w", repositories.ErrNotFound)
	}

	r.invalidateFeed(ctx)
	return nil
}

// RemoveLike deletes the backing row and decrements the counter, clamped at
// zero so an unmatched unlike can never drive the count negative.
func (r *postRepository) RemoveLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	if result.Error != nil {
		return handleDBError(result.Error, "remove like")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("remove like: %w", repositories.ErrNotFound)
	}

	result = db.WithContext(ctx).Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)"))
	if result.Error != nil {
		return handleDBError(result.Error, "decrement like count")
	}

	r.invalidateFeed(ctx)
	return nil
}

func (r *postRepository) HasLiked(ctx context.Context, tx *gorm.DB, postID uint, userID string) (bool, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check like")
	}

	return count > 0, nil
}

func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *gorm.DB, postID uint, delta int) error {
	db := r.getDB(tx)

	expr := gorm.Expr("comment_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("GREATEST(comment_count + ?, 0)", delta)
	}

	result := db.WithContext(ctx).Model(&models.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", expr)
	if result.Error != nil {
		return handleDBError(result.Error, "move comment count")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("move comment count: %w", repositories.ErrNotFound)
	}

	r.invalidateFeed(ctx)
	return nil
}

// ===== HELPERS =====

func (r *postRepository) applyFilters(query *gorm.DB, filters repositories.PostFilters) *gorm.DB {
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.MaterialID != nil {
		query = query.Where("material_id = ?", *filters.MaterialID)
	}
	return applyDateRange(query, filters.DateFrom, filters.DateTo)
}

func (r *postRepository) invalidateFeed(ctx context.Context) {
	r.cacheHelper.InvalidatePattern(ctx, "*")
}

func (r *postRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== COMMENT REPOSITORY =====

type commentRepository struct {
	db *gorm.DB
}

func NewCommentPostgreSQL(db *gorm.DB) repositories.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, tx *gorm.DB, comment *models.PostComment) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(comment).Error; err != nil {
		return handleDBError(err, "create comment")
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PostComment, error) {
	db := r.getDB(tx)
	var comment models.PostComment

	if err := db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, handleDBError(err, "get comment by id")
	}

	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	result := db.WithContext(ctx).Delete(&models.PostComment{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete comment")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete comment: %w", repositories.ErrNotFound)
	}

	return nil
}

func (r *commentRepository) GetByPost(ctx context.Context, tx *gorm.DB, postID uint, limit, offset int) ([]*models.PostComment, int64, error) {
	db := r.getDB(tx)
	var comments []*models.PostComment
	var total int64

	query := db.WithContext(ctx).Model(&models.PostComment{}).
		Where("post_id = ?", postID).
		Preload("Owner")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count comments")
	}

	query = applyPaginationAndSort(query, "created_at", "desc", limit, offset)

	if err := query.Find(&comments).Error; err != nil {
		return nil, 0, handleDBError(err, "list comments")
	}

	return comments, total, nil
}

func (r *commentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
