package services

import (
	"context"
	"io"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use request validator types
type CreateMaterialRequest = validator.MaterialCreateRequest
type UpdateMaterialRequest = validator.MaterialUpdateRequest
type CreateExamResultRequest = validator.ExamResultCreateRequest
type CreatePostRequest = validator.PostCreateRequest
type UpdatePostRequest = validator.PostUpdateRequest
type CreateCommentRequest = validator.CommentCreateRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest

type MaterialResponse struct {
	*models.StudyMaterial
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type MaterialListResponse struct {
	Materials []*MaterialResponse `json:"materials"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type DocumentResponse struct {
	*models.Document
	DownloadURL string `json:"download_url"`
}

type DocumentListResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type UploadDocumentRequest struct {
	FileName    string    `json:"file_name" validate:"required,max=255"`
	ContentType string    `json:"content_type" validate:"max=100"`
	Size        int64     `json:"size" validate:"gte=0"`
	File        io.Reader `json:"-"`
}

type ExamResultResponse struct {
	*models.ExamResult
}

type ExamResultListResponse struct {
	Results []*ExamResultResponse   `json:"results"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Size    int                     `json:"size"`
	Stats   *repositories.ExamStats `json:"stats,omitempty"`
}

type PostResponse struct {
	*models.CommunityPost
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	HasLiked  bool `json:"has_liked"`
}

type PostListResponse struct {
	Posts []*PostResponse `json:"posts"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type CommentResponse struct {
	*models.PostComment
	CanDelete bool `json:"can_delete"`
}

type CommentListResponse struct {
	Comments []*CommentResponse `json:"comments"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type ProfileResponse struct {
	*models.Profile
}

type ActivityListResponse struct {
	Entries []*models.ActivityEntry `json:"entries"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Size    int                     `json:"size"`
}

type RecordActivityRequest struct {
	Type       models.ActivityType    `json:"type" validate:"required"`
	MaterialID *uint                  `json:"material_id"`
	Detail     map[string]interface{} `json:"detail"`
}

// ===== SERVICE INTERFACES =====

type MaterialService interface {
	Create(ctx context.Context, req *CreateMaterialRequest, ownerID string) (*MaterialResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*MaterialResponse, error)
	Update(ctx context.Context, id uint, req *UpdateMaterialRequest, userID string) (*MaterialResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	ListByOwner(ctx context.Context, ownerID string, filters repositories.MaterialFilters) (*MaterialListResponse, error)
	ListPublic(ctx context.Context, filters repositories.MaterialFilters) (*MaterialListResponse, error)
	Search(ctx context.Context, query string, filters repositories.MaterialFilters, userID string) (*MaterialListResponse, error)

	GetStats(ctx context.Context, ownerID string) (*repositories.MaterialStats, error)
}

type DocumentService interface {
	Upload(ctx context.Context, req *UploadDocumentRequest, ownerID string) (*DocumentResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*DocumentResponse, error)
	Download(ctx context.Context, id uint, userID string) (io.ReadCloser, *models.Document, error)
	Delete(ctx context.Context, id uint, userID string) error

	ListByOwner(ctx context.Context, ownerID string, filters repositories.DocumentFilters) (*DocumentListResponse, error)
}

type ExamResultService interface {
	Record(ctx context.Context, req *CreateExamResultRequest, ownerID string) (*ExamResultResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*ExamResultResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	ListByOwner(ctx context.Context, ownerID string, filters repositories.ExamResultFilters) (*ExamResultListResponse, error)
	GetStats(ctx context.Context, ownerID string) (*repositories.ExamStats, error)
}

type CommunityService interface {
	CreatePost(ctx context.Context, req *CreatePostRequest, ownerID string) (*PostResponse, error)
	GetPost(ctx context.Context, id uint, userID string) (*PostResponse, error)
	UpdatePost(ctx context.Context, id uint, req *UpdatePostRequest, userID string) (*PostResponse, error)
	DeletePost(ctx context.Context, id uint, userID string) error

	GetFeed(ctx context.Context, filters repositories.PostFilters, userID string) (*PostListResponse, error)

	LikePost(ctx context.Context, postID uint, userID string) error
	UnlikePost(ctx context.Context, postID uint, userID string) error

	AddComment(ctx context.Context, postID uint, req *CreateCommentRequest, ownerID string) (*CommentResponse, error)
	DeleteComment(ctx context.Context, commentID uint, userID string) error
	GetComments(ctx context.Context, postID uint, limit, offset int, userID string) (*CommentListResponse, error)
}

type ActivityService interface {
	Record(ctx context.Context, req *RecordActivityRequest, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string, filters repositories.ActivityFilters) (*ActivityListResponse, error)
}

type ProfileService interface {
	GetByID(ctx context.Context, id string) (*ProfileResponse, error)
	EnsureProfile(ctx context.Context, id, email, fullName string) (*ProfileResponse, error)
	Update(ctx context.Context, id string, req *UpdateProfileRequest, userID string) (*ProfileResponse, error)
	UploadAvatar(ctx context.Context, id string, fileName string, file io.Reader, userID string) (*ProfileResponse, error)
	DeleteAccount(ctx context.Context, id string, userID string) error

	Search(ctx context.Context, query string, limit, offset int) ([]*ProfileResponse, int64, error)
}

type ExportService interface {
	ExportExamResults(ctx context.Context, ownerID string) ([]byte, string, error)
	ExportMaterials(ctx context.Context, ownerID string) ([]byte, string, error)
}

// ServiceManager provides access to all services with lifecycle management
type ServiceManager interface {
	Material() MaterialService
	Document() DocumentService
	ExamResult() ExamResultService
	Community() CommunityService
	Activity() ActivityService
	Profile() ProfileService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// pageOf computes the 1-based page number list responses report.
func pageOf(offset, limit int) int {
	return offset/max(limit, 1) + 1
}
