package models

import (
	"time"
)

// Document is a user-uploaded source file. StorageKey references the blob in
// the document bucket; the row is only written after the blob upload succeeds.
type Document struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	FileName    string `json:"file_name" gorm:"not null;size:255" validate:"required,max=255"`
	StorageKey  string `json:"storage_key" gorm:"not null;uniqueIndex;size:500"`
	ContentType string `json:"content_type" gorm:"size:100"`
	Size        int64  `json:"size" gorm:"not null"`

	OwnerID string `json:"owner_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner Profile `json:"owner" gorm:"foreignKey:OwnerID"`
}

func (Document) TableName() string {
	return "documents"
}
