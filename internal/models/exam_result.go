package models

import (
	"time"
)

type ExamResult struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Subject string  `json:"subject" gorm:"not null;index;size:100" validate:"required,max=100"`
	Score   float64 `json:"score" gorm:"not null" validate:"min=0"`
	// MaxScore must be positive; Percentage is derived on create.
	MaxScore   float64 `json:"max_score" gorm:"not null" validate:"required,gt=0"`
	Percentage float64 `json:"percentage" gorm:"not null"`

	OwnerID string `json:"owner_id" gorm:"not null;index;size:255"`

	// Optional link to the material the exam was generated from.
	MaterialID *uint `json:"material_id" gorm:"index"`

	TakenAt   time.Time `json:"taken_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner    Profile        `json:"owner" gorm:"foreignKey:OwnerID"`
	Material *StudyMaterial `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
