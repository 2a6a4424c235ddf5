package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

type ExamResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamResult, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters ExamResultFilters) ([]*models.ExamResult, int64, error)
	GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*ExamStats, error)
}
