package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*models.Profile, int64, error)
}
