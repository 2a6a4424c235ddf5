package repositories

import (
	"time"

	"github.com/studyhive/studyhub-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type MaterialFilters struct {
	Type      *models.MaterialType `json:"type"`
	Subject   *string              `json:"subject"`
	OwnerID   *string              `json:"owner_id"`
	IsPublic  *bool                `json:"is_public"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "updated_at", "title"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type DocumentFilters struct {
	OwnerID   *string    `json:"owner_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type ExamResultFilters struct {
	OwnerID    *string    `json:"owner_id"`
	Subject    *string    `json:"subject"`
	MaterialID *uint      `json:"material_id"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

type PostFilters struct {
	OwnerID    *string    `json:"owner_id"`
	MaterialID *uint      `json:"material_id"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

type ActivityFilters struct {
	OwnerID  *string              `json:"owner_id"`
	Type     *models.ActivityType `json:"type"`
	DateFrom *time.Time           `json:"date_from"`
	DateTo   *time.Time           `json:"date_to"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type MaterialStats struct {
	TotalMaterials  int                         `json:"total_materials"`
	PublicMaterials int                         `json:"public_materials"`
	MaterialsByType map[models.MaterialType]int `json:"materials_by_type"`
	Subjects        []string                    `json:"subjects"`
}

type ExamStats struct {
	TotalExams        int     `json:"total_exams"`
	AveragePercentage float64 `json:"average_percentage"`
	BestPercentage    float64 `json:"best_percentage"`
	SubjectCount      int     `json:"subject_count"`
}
