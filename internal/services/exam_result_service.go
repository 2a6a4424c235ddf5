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

const examTopic = "studyhub.exams"

type examResultService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewExamResultService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ExamResultService {
	return &examResultService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *examResultService) Record(ctx context.Context, req *CreateExamResultRequest, ownerID string) (*ExamResultResponse, error) {
	s.logger.Info("Recording exam result", "owner_id", ownerID, "subject", req.Subject)

	if errs := s.validator.ValidateExamResultCreate(req); errs.HasErrors() {
		return nil, errs
	}

	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	result := &models.ExamResult{
		Subject:    req.Subject,
		Score:      req.Score,
		MaxScore:   req.MaxScore,
		Percentage: req.Score / req.MaxScore * 100,
		OwnerID:    ownerID,
		MaterialID: req.MaterialID,
		TakenAt:    takenAt,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// Verify the linked material exists and is visible to the owner
	if req.MaterialID != nil {
		material, err := s.repo.Material().GetByID(ctx, nil, *req.MaterialID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewNotFoundError("study_material", *req.MaterialID)
			}
			return nil, NewPersistenceError("get linked material", err)
		}
		if material.OwnerID != ownerID && !material.IsPublic {
			return nil, NewPermissionError(ownerID, *req.MaterialID, "study_material", "link", "not owner and not public")
		}
	}

	if err := s.repo.ExamResult().Create(ctx, nil, result); err != nil {
		return nil, NewPersistenceError("create exam result", err)
	}

	s.recordActivity(ctx, ownerID, result)
	s.publishEvent(ctx, events.EventExamCompleted, result)

	s.logger.Info("Exam result recorded", "result_id", result.ID, "percentage", result.Percentage)

	return &ExamResultResponse{ExamResult: result}, nil
}

func (s *examResultService) GetByID(ctx context.Context, id uint, userID string) (*ExamResultResponse, error) {
	result, err := s.repo.ExamResult().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("exam_result", id)
		}
		return nil, NewPersistenceError("get exam result", err)
	}

	if result.OwnerID != userID {
		return nil, NewPermissionError(userID, id, "exam_result", "read", "not owner")
	}

	return &ExamResultResponse{ExamResult: result}, nil
}

func (s *examResultService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting exam result", "result_id", id, "user_id", userID)

	result, err := s.repo.ExamResult().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("exam_result", id)
		}
		return NewPersistenceError("get exam result", err)
	}

	if result.OwnerID != userID {
		return NewPermissionError(userID, id, "exam_result", "delete", "not owner")
	}

	if err := s.repo.ExamResult().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("exam_result", id)
		}
		return NewPersistenceError("delete exam result", err)
	}

	return nil
}

func (s *examResultService) ListByOwner(ctx context.Context, ownerID string, filters repositories.ExamResultFilters) (*ExamResultListResponse, error) {
	results, total, err := s.repo.ExamResult().GetByOwner(ctx, nil, ownerID, filters)
	if err != nil {
		return nil, NewPersistenceError("list exam results", err)
	}

	response := &ExamResultListResponse{
		Results: make([]*ExamResultResponse, len(results)),
		Total:   total,
		Page:    pageOf(filters.Offset, filters.Limit),
		Size:    filters.Limit,
	}
	for i, r := range results {
		response.Results[i] = &ExamResultResponse{ExamResult: r}
	}

	return response, nil
}

func (s *examResultService) GetStats(ctx context.Context, ownerID string) (*repositories.ExamStats, error) {
	stats, err := s.repo.ExamResult().GetStats(ctx, nil, ownerID)
	if err != nil {
		return nil, NewPersistenceError("get exam stats", err)
	}
	return stats, nil
}

func (s *examResultService) recordActivity(ctx context.Context, ownerID string, result *models.ExamResult) {
	entry := &models.ActivityEntry{
		Type:       models.ActivityExamCompleted,
		OwnerID:    ownerID,
		MaterialID: result.MaterialID,
		Detail: map[string]interface{}{
			"result_id":  result.ID,
			"subject":    result.Subject,
			"percentage": result.Percentage,
		},
		CreatedAt: time.Now(),
	}
	if err := s.repo.Activity().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("Failed to record activity", "type", models.ActivityExamCompleted, "owner_id", ownerID, "error", err)
	}
}

func (s *examResultService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, examTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
