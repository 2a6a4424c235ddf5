package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/validator"
)

type activityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewActivityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ActivityService {
	return &activityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *activityService) Record(ctx context.Context, req *RecordActivityRequest, ownerID string) error {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return errs
	}

	entry := &models.ActivityEntry{
		Type:       req.Type,
		OwnerID:    ownerID,
		MaterialID: req.MaterialID,
		Detail:     req.Detail,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Activity().Create(ctx, nil, entry); err != nil {
		return NewPersistenceError("record activity", err)
	}

	return nil
}

func (s *activityService) ListByOwner(ctx context.Context, ownerID string, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	entries, total, err := s.repo.Activity().GetByOwner(ctx, nil, ownerID, filters)
	if err != nil {
		return nil, NewPersistenceError("list activity", err)
	}

	return &ActivityListResponse{
		Entries: entries,
		Total:   total,
		Page:    pageOf(filters.Offset, filters.Limit),
		Size:    filters.Limit,
	}, nil
}
