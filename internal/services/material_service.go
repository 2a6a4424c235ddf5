package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/validator"
)

const materialTopic = "studyhub.materials"

type materialService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewMaterialService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) MaterialService {
	return &materialService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *materialService) Create(ctx context.Context, req *CreateMaterialRequest, ownerID string) (*MaterialResponse, error) {
	s.logger.Info("Creating study material", "owner_id", ownerID, "type", req.Type, "title", req.Title)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	material := &models.StudyMaterial{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		Subject:   req.Subject,
		OwnerID:   ownerID,
		IsPublic:  req.IsPublic,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Material().Create(ctx, nil, material); err != nil {
		return nil, NewPersistenceError("create material", err)
	}

	s.recordActivity(ctx, ownerID, models.ActivityMaterialCreated, &material.ID, map[string]interface{}{
		"title": material.Title,
		"type":  string(material.Type),
	})
	s.publishEvent(ctx, events.EventMaterialCreated, material)

	s.logger.Info("Study material created", "material_id", material.ID)

	return s.buildResponse(material, ownerID), nil
}

func (s *materialService) GetByID(ctx context.Context, id uint, userID string) (*MaterialResponse, error) {
	material, err := s.repo.Material().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("study_material", id)
		}
		return nil, NewPersistenceError("get material", err)
	}

	if material.OwnerID != userID && !material.IsPublic {
		return nil, NewPermissionError(userID, id, "study_material", "read", "not owner and not public")
	}

	return s.buildResponse(material, userID), nil
}

func (s *materialService) Update(ctx context.Context, id uint, req *UpdateMaterialRequest, userID string) (*MaterialResponse, error) {
	s.logger.Info("Updating study material", "material_id", id, "user_id", userID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	material, err := s.repo.Material().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("study_material", id)
		}
		return nil, NewPersistenceError("get material", err)
	}

	if material.OwnerID != userID {
		return nil, NewPermissionError(userID, id, "study_material", "update", "not owner")
	}

	// Apply updates; ID, OwnerID and CreatedAt never change
	if req.Title != nil {
		material.Title = *req.Title
	}
	if req.Content != nil {
		material.Content = *req.Content
	}
	if req.Subject != nil {
		material.Subject = *req.Subject
	}
	if req.IsPublic != nil {
		material.IsPublic = *req.IsPublic
	}
	if req.Metadata != nil {
		material.Metadata = req.Metadata
	}
	material.UpdatedAt = time.Now()

	if err := s.repo.Material().Update(ctx, nil, material); err != nil {
		return nil, NewPersistenceError("update material", err)
	}

	s.recordActivity(ctx, userID, models.ActivityMaterialUpdated, &material.ID, map[string]interface{}{
		"title": material.Title,
	})
	s.publishEvent(ctx, events.EventMaterialUpdated, material)

	return s.buildResponse(material, userID), nil
}

func (s *materialService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting study material", "material_id", id, "user_id", userID)

	material, err := s.repo.Material().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("study_material", id)
		}
		return NewPersistenceError("get material", err)
	}

	if material.OwnerID != userID {
		return NewPermissionError(userID, id, "study_material", "delete", "not owner")
	}

	if err := s.repo.Material().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("study_material", id)
		}
		return NewPersistenceError("delete material", err)
	}

	s.publishEvent(ctx, events.EventMaterialDeleted, map[string]interface{}{"id": id, "owner_id": userID})

	s.logger.Info("Study material deleted", "material_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *materialService) ListByOwner(ctx context.Context, ownerID string, filters repositories.MaterialFilters) (*MaterialListResponse, error) {
	materials, total, err := s.repo.Material().GetByOwner(ctx, nil, ownerID, filters)
	if err != nil {
		return nil, NewPersistenceError("list materials", err)
	}

	return s.buildListResponse(materials, total, filters, ownerID), nil
}

func (s *materialService) ListPublic(ctx context.Context, filters repositories.MaterialFilters) (*MaterialListResponse, error) {
	materials, total, err := s.repo.Material().GetPublic(ctx, nil, filters)
	if err != nil {
		return nil, NewPersistenceError("list public materials", err)
	}

	return s.buildListResponse(materials, total, filters, ""), nil
}

func (s *materialService) Search(ctx context.Context, query string, filters repositories.MaterialFilters, userID string) (*MaterialListResponse, error) {
	// Search is scoped to the caller's own materials
	filters.OwnerID = &userID

	materials, total, err := s.repo.Material().Search(ctx, nil, query, filters)
	if err != nil {
		return nil, NewPersistenceError("search materials", err)
	}

	return s.buildListResponse(materials, total, filters, userID), nil
}

// ===== STATISTICS =====

func (s *materialService) GetStats(ctx context.Context, ownerID string) (*repositories.MaterialStats, error) {
	stats, err := s.repo.Material().GetStats(ctx, nil, ownerID)
	if err != nil {
		return nil, NewPersistenceError("get material stats", err)
	}
	return stats, nil
}

// ===== HELPERS =====

func (s *materialService) buildResponse(material *models.StudyMaterial, userID string) *MaterialResponse {
	isOwner := material.OwnerID == userID
	return &MaterialResponse{
		StudyMaterial: material,
		CanEdit:       isOwner,
		CanDelete:     isOwner,
	}
}

func (s *materialService) buildListResponse(materials []*models.StudyMaterial, total int64, filters repositories.MaterialFilters, userID string) *MaterialListResponse {
	response := &MaterialListResponse{
		Materials: make([]*MaterialResponse, len(materials)),
		Total:     total,
		Page:      pageOf(filters.Offset, filters.Limit),
		Size:      filters.Limit,
	}
	for i, m := range materials {
		response.Materials[i] = s.buildResponse(m, userID)
	}
	return response
}

func (s *materialService) recordActivity(ctx context.Context, ownerID string, activityType models.ActivityType, materialID *uint, detail map[string]interface{}) {
	entry := &models.ActivityEntry{
		Type:       activityType,
		OwnerID:    ownerID,
		MaterialID: materialID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Activity().Create(ctx, nil, entry); err != nil {
		// History is best effort; the primary mutation already succeeded
		s.logger.Warn("Failed to record activity", "type", activityType, "owner_id", ownerID, "error", err)
	}
}

func (s *materialService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, materialTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
