package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

type PostRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CommunityPost, error)
	Update(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Feed queries
	GetFeed(ctx context.Context, tx *gorm.DB, filters PostFilters) ([]*models.CommunityPost, int64, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters PostFilters) ([]*models.CommunityPost, int64, error)

	// Like management. AddLike/RemoveLike insert or delete the backing row
	// and move the denormalized counter with an atomic SQL expression in the
	// same transaction; the counter is never written from a client-computed
	// value. RemoveLike clamps the counter at zero.
	AddLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error
	RemoveLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error
	HasLiked(ctx context.Context, tx *gorm.DB, postID uint, userID string) (bool, error)

	// Comment counter, moved by the comment repository's create/delete paths.
	IncrementCommentCount(ctx context.Context, tx *gorm.DB, postID uint, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, comment *models.PostComment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PostComment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByPost(ctx context.Context, tx *gorm.DB, postID uint, limit, offset int) ([]*models.PostComment, int64, error)
}
