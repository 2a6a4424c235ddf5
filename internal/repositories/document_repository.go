package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, doc *models.Document) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Document, error)
	Update(ctx context.Context, tx *gorm.DB, doc *models.Document) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters DocumentFilters) ([]*models.Document, int64, error)
}
