package models

import (
	"time"

	"gorm.io/datatypes"
)

type MaterialType string

const (
	MaterialStudyGuide MaterialType = "study_guide"
	MaterialFlashcards MaterialType = "flashcards"
	MaterialQuiz       MaterialType = "quiz"
	MaterialConceptMap MaterialType = "concept_map"
	MaterialExam       MaterialType = "exam"
)

// Valid reports whether t is one of the known material kinds.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialStudyGuide, MaterialFlashcards, MaterialQuiz, MaterialConceptMap, MaterialExam:
		return true
	}
	return false
}

// StudyMaterial is the central entity of the service. Content encoding is
// type-specific: a flashcard list, a quiz question list, a concept-map graph
// or free text. ID, OwnerID and CreatedAt are immutable once assigned;
// UpdatedAt moves forward on every mutation.
type StudyMaterial struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	Title   string       `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Content string       `json:"content" gorm:"type:text"`
	Type    MaterialType `json:"type" gorm:"not null;index;size:20" validate:"required,material_type"`
	Subject string       `json:"subject" gorm:"index;size:100"`

	// Access control
	OwnerID  string `json:"owner_id" gorm:"not null;index;size:255"`
	IsPublic bool   `json:"is_public" gorm:"default:false"`

	// Type-specific extensions (card count, question count, node layout, ...)
	Metadata datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner Profile `json:"owner" gorm:"foreignKey:OwnerID"`
}

func (StudyMaterial) TableName() string {
	return "study_materials"
}
