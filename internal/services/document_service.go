package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/storage"
	"github.com/studyhive/studyhub-service/internal/validator"
)

const documentTopic = "studyhub.documents"

type documentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	bucket    storage.BucketService
	publisher events.EventPublisher
}

func NewDocumentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, bucket storage.BucketService, publisher events.EventPublisher) DocumentService {
	return &documentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		bucket:    bucket,
		publisher: publisher,
	}
}

// Upload writes the blob first and the metadata row second. If the row write
// fails the blob is removed again; a blob without a row is recoverable, a row
// without a blob is a broken download link.
func (s *documentService) Upload(ctx context.Context, req *UploadDocumentRequest, ownerID string) (*DocumentResponse, error) {
	s.logger.Info("Uploading document", "owner_id", ownerID, "file_name", req.FileName, "size", req.Size)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}
	if req.File == nil {
		return nil, validator.ValidationErrors{{Field: "file", Message: "is required", Rule: "required"}}
	}

	storageKey := buildStorageKey(ownerID, req.FileName)

	if err := s.bucket.Upload(ctx, storage.BucketCategoryDocument, storageKey, req.File); err != nil {
		return nil, NewPersistenceError("upload document blob", err)
	}

	doc := &models.Document{
		FileName:    req.FileName,
		StorageKey:  storageKey,
		ContentType: req.ContentType,
		Size:        req.Size,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Document().Create(ctx, nil, doc); err != nil {
		if delErr := s.bucket.Delete(ctx, storage.BucketCategoryDocument, storageKey); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned blob", "storage_key", storageKey, "error", delErr)
		}
		return nil, NewPersistenceError("create document record", err)
	}

	s.recordActivity(ctx, ownerID, doc.ID, doc.FileName)
	s.publishEvent(ctx, events.EventDocumentUploaded, doc)

	s.logger.Info("Document uploaded", "document_id", doc.ID, "storage_key", storageKey)

	return s.buildResponse(doc), nil
}

func (s *documentService) GetByID(ctx context.Context, id uint, userID string) (*DocumentResponse, error) {
	doc, err := s.getOwned(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}
	return s.buildResponse(doc), nil
}

func (s *documentService) Download(ctx context.Context, id uint, userID string) (io.ReadCloser, *models.Document, error) {
	doc, err := s.getOwned(ctx, id, userID, "download")
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.bucket.Download(ctx, storage.BucketCategoryDocument, doc.StorageKey)
	if err != nil {
		return nil, nil, NewPersistenceError("download document blob", err)
	}

	return reader, doc, nil
}

// Delete removes the row first and the blob second. A failed blob delete
// leaves an orphan in the bucket, never a dangling row.
func (s *documentService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting document", "document_id", id, "user_id", userID)

	doc, err := s.getOwned(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Document().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("document", id)
		}
		return NewPersistenceError("delete document record", err)
	}

	if err := s.bucket.Delete(ctx, storage.BucketCategoryDocument, doc.StorageKey); err != nil {
		s.logger.Warn("Failed to delete blob for removed document", "storage_key", doc.StorageKey, "error", err)
	}

	s.publishEvent(ctx, events.EventDocumentDeleted, map[string]interface{}{"id": id, "owner_id": userID})

	return nil
}

func (s *documentService) ListByOwner(ctx context.Context, ownerID string, filters repositories.DocumentFilters) (*DocumentListResponse, error) {
	docs, total, err := s.repo.Document().GetByOwner(ctx, nil, ownerID, filters)
	if err != nil {
		return nil, NewPersistenceError("list documents", err)
	}

	response := &DocumentListResponse{
		Documents: make([]*DocumentResponse, len(docs)),
		Total:     total,
		Page:      pageOf(filters.Offset, filters.Limit),
		Size:      filters.Limit,
	}
	for i, doc := range docs {
		response.Documents[i] = s.buildResponse(doc)
	}

	return response, nil
}

// ===== HELPERS =====

func (s *documentService) getOwned(ctx context.Context, id uint, userID, operation string) (*models.Document, error) {
	doc, err := s.repo.Document().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("document", id)
		}
		return nil, NewPersistenceError("get document", err)
	}

	if doc.OwnerID != userID {
		return nil, NewPermissionError(userID, id, "document", operation, "not owner")
	}

	return doc, nil
}

func (s *documentService) buildResponse(doc *models.Document) *DocumentResponse {
	return &DocumentResponse{
		Document:    doc,
		DownloadURL: s.bucket.PublicURL(storage.BucketCategoryDocument, doc.StorageKey),
	}
}

func (s *documentService) recordActivity(ctx context.Context, ownerID string, docID uint, fileName string) {
	entry := &models.ActivityEntry{
		Type:    models.ActivityDocumentUploaded,
		OwnerID: ownerID,
		Detail: map[string]interface{}{
			"document_id": docID,
			"file_name":   fileName,
		},
		CreatedAt: time.Now(),
	}
	if err := s.repo.Activity().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("Failed to record activity", "type", models.ActivityDocumentUploaded, "owner_id", ownerID, "error", err)
	}
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, documentTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}

// buildStorageKey namespaces blobs per owner and prefixes a uuid so two
// uploads of the same file name never collide.
func buildStorageKey(ownerID, fileName string) string {
	return fmt.Sprintf("documents/%s/%s%s", ownerID, uuid.New().String(), path.Ext(fileName))
}
