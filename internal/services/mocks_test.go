package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/storage"
)

// memoryRepository is a map-backed repositories.Repository for service tests.
// A single mutex guards all state, so concurrent service calls observe the
// same increment-by-one counter behavior the SQL layer provides.
type memoryRepository struct {
	mu sync.Mutex

	materials      map[uint]*models.StudyMaterial
	nextMaterialID uint

	documents      map[uint]*models.Document
	nextDocumentID uint

	examResults  map[uint]*models.ExamResult
	nextExamID   uint

	posts      map[uint]*models.CommunityPost
	nextPostID uint
	likes      map[string]bool

	comments      map[uint]*models.PostComment
	nextCommentID uint

	profiles map[string]*models.Profile

	activities []*models.ActivityEntry
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		materials:   make(map[uint]*models.StudyMaterial),
		documents:   make(map[uint]*models.Document),
		examResults: make(map[uint]*models.ExamResult),
		posts:       make(map[uint]*models.CommunityPost),
		likes:       make(map[string]bool),
		comments:    make(map[uint]*models.PostComment),
		profiles:    make(map[string]*models.Profile),
	}
}

func likeKey(postID uint, userID string) string {
	return fmt.Sprintf("%d/%s", postID, userID)
}

func (m *memoryRepository) Material() repositories.MaterialRepository     { return &memMaterialRepo{m} }
func (m *memoryRepository) Document() repositories.DocumentRepository     { return &memDocumentRepo{m} }
func (m *memoryRepository) ExamResult() repositories.ExamResultRepository { return &memExamRepo{m} }
func (m *memoryRepository) Post() repositories.PostRepository             { return &memPostRepo{m} }
func (m *memoryRepository) Comment() repositories.CommentRepository       { return &memCommentRepo{m} }
func (m *memoryRepository) Profile() repositories.ProfileRepository       { return &memProfileRepo{m} }
func (m *memoryRepository) Activity() repositories.ActivityRepository     { return &memActivityRepo{m} }

func (m *memoryRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *memoryRepository) ClearOwnerCache(ctx context.Context, ownerID string) error { return nil }

func (m *memoryRepository) Ping(ctx context.Context) error { return nil }
func (m *memoryRepository) Close() error                   { return nil }

// ===== MATERIALS =====

type memMaterialRepo struct{ m *memoryRepository }

func (r *memMaterialRepo) Create(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextMaterialID++
	material.ID = r.m.nextMaterialID
	copied := *material
	r.m.materials[material.ID] = &copied
	return nil
}

func (r *memMaterialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudyMaterial, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	material, ok := r.m.materials[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *material
	return &copied, nil
}

func (r *memMaterialRepo) Update(ctx context.Context, tx *gorm.DB, material *models.StudyMaterial) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.materials[material.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *material
	r.m.materials[material.ID] = &copied
	return nil
}

func (r *memMaterialRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.materials[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.materials, id)
	return nil
}

func (r *memMaterialRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.StudyMaterial
	for _, material := range r.m.materials {
		if material.OwnerID == ownerID {
			copied := *material
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memMaterialRepo) GetPublic(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.StudyMaterial
	for _, material := range r.m.materials {
		if material.IsPublic {
			copied := *material
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memMaterialRepo) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.MaterialFilters) ([]*models.StudyMaterial, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.StudyMaterial
	for _, material := range r.m.materials {
		if filters.OwnerID != nil && material.OwnerID != *filters.OwnerID {
			continue
		}
		if strings.Contains(strings.ToLower(material.Title), strings.ToLower(query)) {
			copied := *material
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memMaterialRepo) GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*repositories.MaterialStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := &repositories.MaterialStats{MaterialsByType: make(map[models.MaterialType]int)}
	for _, material := range r.m.materials {
		if material.OwnerID != ownerID {
			continue
		}
		stats.TotalMaterials++
		if material.IsPublic {
			stats.PublicMaterials++
		}
		stats.MaterialsByType[material.Type]++
	}
	return stats, nil
}

// ===== DOCUMENTS =====

type memDocumentRepo struct{ m *memoryRepository }

func (r *memDocumentRepo) Create(ctx context.Context, tx *gorm.DB, doc *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextDocumentID++
	doc.ID = r.m.nextDocumentID
	copied := *doc
	r.m.documents[doc.ID] = &copied
	return nil
}

func (r *memDocumentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	doc, ok := r.m.documents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *memDocumentRepo) Update(ctx context.Context, tx *gorm.DB, doc *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.documents[doc.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *doc
	r.m.documents[doc.ID] = &copied
	return nil
}

func (r *memDocumentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.documents[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.documents, id)
	return nil
}

func (r *memDocumentRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.DocumentFilters) ([]*models.Document, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Document
	for _, doc := range r.m.documents {
		if doc.OwnerID == ownerID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

// ===== EXAM RESULTS =====

type memExamRepo struct{ m *memoryRepository }

func (r *memExamRepo) Create(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextExamID++
	result.ID = r.m.nextExamID
	copied := *result
	r.m.examResults[result.ID] = &copied
	return nil
}

func (r *memExamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result, ok := r.m.examResults[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

func (r *memExamRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.examResults[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.examResults, id)
	return nil
}

func (r *memExamRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.ExamResultFilters) ([]*models.ExamResult, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ExamResult
	for _, result := range r.m.examResults {
		if result.OwnerID == ownerID {
			copied := *result
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memExamRepo) GetStats(ctx context.Context, tx *gorm.DB, ownerID string) (*repositories.ExamStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := &repositories.ExamStats{}
	var sum float64
	subjects := make(map[string]bool)
	for _, result := range r.m.examResults {
		if result.OwnerID != ownerID {
			continue
		}
		stats.TotalExams++
		sum += result.Percentage
		if result.Percentage > stats.BestPercentage {
			stats.BestPercentage = result.Percentage
		}
		subjects[result.Subject] = true
	}
	if stats.TotalExams > 0 {
		stats.AveragePercentage = sum / float64(stats.TotalExams)
	}
	stats.SubjectCount = len(subjects)
	return stats, nil
}

// ===== POSTS =====

type memPostRepo struct{ m *memoryRepository }

func (r *memPostRepo) Create(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextPostID++
	post.ID = r.m.nextPostID
	copied := *post
	r.m.posts[post.ID] = &copied
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CommunityPost, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	post, ok := r.m.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *memPostRepo) Update(ctx context.Context, tx *gorm.DB, post *models.CommunityPost) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	// Counters stay server-owned; only content fields move
	existing.Content = post.Content
	existing.UpdatedAt = post.UpdatedAt
	return nil
}

func (r *memPostRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.posts, id)
	return nil
}

func (r *memPostRepo) GetFeed(ctx context.Context, tx *gorm.DB, filters repositories.PostFilters) ([]*models.CommunityPost, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.CommunityPost
	for _, post := range r.m.posts {
		copied := *post
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *memPostRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.PostFilters) ([]*models.CommunityPost, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.CommunityPost
	for _, post := range r.m.posts {
		if post.OwnerID == ownerID {
			copied := *post
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPostRepo) AddLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	post, ok := r.m.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	key := likeKey(postID, userID)
	if r.m.likes[key] {
		return repositories.ErrDuplicate
	}
	r.m.likes[key] = true
	post.LikeCount++
	return nil
}

func (r *memPostRepo) RemoveLike(ctx context.Context, tx *gorm.DB, postID uint, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := likeKey(postID, userID)
	if !r.m.likes[key] {
		return repositories.ErrNotFound
	}
	delete(r.m.likes, key)
	if post, ok := r.m.posts[postID]; ok && post.LikeCount > 0 {
		post.LikeCount--
	}
	return nil
}

func (r *memPostRepo) HasLiked(ctx context.Context, tx *gorm.DB, postID uint, userID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.likes[likeKey(postID, userID)], nil
}

func (r *memPostRepo) IncrementCommentCount(ctx context.Context, tx *gorm.DB, postID uint, delta int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	post, ok := r.m.posts[postID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.CommentCount += delta
	if post.CommentCount < 0 {
		post.CommentCount = 0
	}
	return nil
}

// ===== COMMENTS =====

type memCommentRepo struct{ m *memoryRepository }

func (r *memCommentRepo) Create(ctx context.Context, tx *gorm.DB, comment *models.PostComment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[comment.PostID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.nextCommentID++
	comment.ID = r.m.nextCommentID
	copied := *comment
	r.m.comments[comment.ID] = &copied
	return nil
}

func (r *memCommentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PostComment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	comment, ok := r.m.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *comment
	return &copied, nil
}

func (r *memCommentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.comments, id)
	return nil
}

func (r *memCommentRepo) GetByPost(ctx context.Context, tx *gorm.DB, postID uint, limit, offset int) ([]*models.PostComment, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.PostComment
	for _, comment := range r.m.comments {
		if comment.PostID == postID {
			copied := *comment
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

// ===== PROFILES =====

type memProfileRepo struct{ m *memoryRepository }

func (r *memProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[profile.ID]; ok {
		return repositories.ErrDuplicate
	}
	copied := *profile
	r.m.profiles[profile.ID] = &copied
	return nil
}

func (r *memProfileRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile, ok := r.m.profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *memProfileRepo) Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[profile.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *profile
	r.m.profiles[profile.ID] = &copied
	return nil
}

func (r *memProfileRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.profiles, id)
	return nil
}

func (r *memProfileRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*models.Profile, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Profile
	for _, profile := range r.m.profiles {
		if strings.Contains(strings.ToLower(profile.FullName), strings.ToLower(query)) {
			copied := *profile
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

// ===== ACTIVITIES =====

type memActivityRepo struct{ m *memoryRepository }

func (r *memActivityRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.ActivityEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	entry.ID = uint(len(r.m.activities) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	copied := *entry
	r.m.activities = append(r.m.activities, &copied)
	return nil
}

func (r *memActivityRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.ActivityFilters) ([]*models.ActivityEntry, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ActivityEntry
	for _, entry := range r.m.activities {
		if entry.OwnerID != ownerID {
			continue
		}
		if filters.Type != nil && entry.Type != *filters.Type {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *memActivityRepo) DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	kept := r.m.activities[:0:0]
	for _, entry := range r.m.activities {
		if entry.OwnerID != ownerID {
			kept = append(kept, entry)
		}
	}
	r.m.activities = kept
	return nil
}

// ===== BLOB STORAGE =====

// memBucket is a map-backed storage.BucketService for service tests.
type memBucket struct {
	mu      sync.Mutex
	objects map[string]string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: make(map[string]string)}
}

func objectKey(category storage.BucketCategory, key string) string {
	return fmt.Sprintf("%s/%s", category, key)
}

func (b *memBucket) Upload(ctx context.Context, category storage.BucketCategory, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectKey(category, key)] = string(data)
	return nil
}

func (b *memBucket) Download(ctx context.Context, category storage.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[objectKey(category, key)]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (b *memBucket) Delete(ctx context.Context, category storage.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	full := objectKey(category, key)
	if _, ok := b.objects[full]; !ok {
		return fmt.Errorf("object %q not found", key)
	}
	delete(b.objects, full)
	return nil
}

func (b *memBucket) DeletePrefix(ctx context.Context, category storage.BucketCategory, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	full := objectKey(category, prefix)
	for key := range b.objects {
		if strings.HasPrefix(key, full) {
			delete(b.objects, key)
		}
	}
	return nil
}

func (b *memBucket) PublicURL(category storage.BucketCategory, key string) string {
	return fmt.Sprintf("https://cdn.test/%s/%s", category, key)
}

func (b *memBucket) Close() error { return nil }

// keysWithPrefix lists stored object keys for assertions.
func (b *memBucket) keysWithPrefix(category storage.BucketCategory, prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	full := objectKey(category, prefix)
	var out []string
	for key := range b.objects {
		if strings.HasPrefix(key, full) {
			out = append(out, key)
		}
	}
	return out
}
