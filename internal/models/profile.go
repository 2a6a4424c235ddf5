package models

import (
	"time"
)

type Profile struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	FullName string `json:"full_name" gorm:"size:100"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`
	Bio       *string `json:"bio" gorm:"size:1000"`

	// Status
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
