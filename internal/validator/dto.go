package validator

import (
	"time"

	"github.com/studyhive/studyhub-service/internal/models"
)

// MaterialCreateRequest represents the request structure for creating study materials
type MaterialCreateRequest struct {
	Title    string                 `json:"title" validate:"required,max=200"`
	Content  string                 `json:"content"`
	Type     models.MaterialType    `json:"type" validate:"required,material_type"`
	Subject  string                 `json:"subject" validate:"max=100"`
	IsPublic bool                   `json:"is_public"`
	Metadata map[string]interface{} `json:"metadata"`
}

// MaterialUpdateRequest represents the request structure for updating study materials
type MaterialUpdateRequest struct {
	Title    *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string                `json:"content"`
	Subject  *string                `json:"subject" validate:"omitempty,max=100"`
	IsPublic *bool                  `json:"is_public"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ExamResultCreateRequest represents the request structure for recording exam results
type ExamResultCreateRequest struct {
	Subject    string     `json:"subject" validate:"required,max=100"`
	Score      float64    `json:"score"`
	MaxScore   float64    `json:"max_score" validate:"required,gt=0"`
	MaterialID *uint      `json:"material_id"`
	TakenAt    *time.Time `json:"taken_at" validate:"omitempty,past_or_present"`
}

// PostCreateRequest represents the request structure for creating community posts
type PostCreateRequest struct {
	Content    string `json:"content" validate:"required,max=5000"`
	MaterialID *uint  `json:"material_id"`
}

// PostUpdateRequest represents the request structure for editing a post
type PostUpdateRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=5000"`
}

// CommentCreateRequest represents the request structure for commenting on a post
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// ProfileUpdateRequest represents the request structure for updating a profile
type ProfileUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
}
