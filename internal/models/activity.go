package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityMaterialCreated  ActivityType = "material_created"
	ActivityMaterialUpdated  ActivityType = "material_updated"
	ActivityDocumentUploaded ActivityType = "document_uploaded"
	ActivityExamCompleted    ActivityType = "exam_completed"
	ActivityPostCreated      ActivityType = "post_created"
)

// ActivityEntry is an append-only history row; entries are never updated.
type ActivityEntry struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	Type    ActivityType `json:"type" gorm:"not null;index;size:30"`
	OwnerID string       `json:"owner_id" gorm:"not null;index;size:255"`

	MaterialID *uint             `json:"material_id" gorm:"index"`
	Detail     datatypes.JSONMap `json:"detail" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Owner Profile `json:"owner" gorm:"foreignKey:OwnerID"`
}

func (ActivityEntry) TableName() string {
	return "activity_entries"
}
