package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

type MaterialRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudyMaterial, error)
	Update(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Queries; all list variants order by creation time descending
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters MaterialFilters) ([]*models.StudyMaterial, int64, error)
	GetPublic(ctx context.Context, tx *gorm.DB, filters MaterialFilters) ([]*models.StudyMaterial, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters MaterialFilters) ([]*models.StudyMaterial, int64, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*MaterialStats, error)
}
