package repositories

import (
	"context"

	"github.com/studyhive/studyhub-service/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository is append-only; entries are never updated.
type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.ActivityEntry) error
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters ActivityFilters) ([]*models.ActivityEntry, int64, error)
	DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID string) error
}
