package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/storage"
	"github.com/studyhive/studyhub-service/internal/validator"
)

const profileTopic = "studyhub.profiles"

type profileService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	bucket    storage.BucketService
	publisher events.EventPublisher
}

func NewProfileService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, bucket storage.BucketService, publisher events.EventPublisher) ProfileService {
	return &profileService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		bucket:    bucket,
		publisher: publisher,
	}
}

func (s *profileService) GetByID(ctx context.Context, id string) (*ProfileResponse, error) {
	profile, err := s.repo.Profile().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("profile", id)
		}
		return nil, NewPersistenceError("get profile", err)
	}

	return &ProfileResponse{Profile: profile}, nil
}

// EnsureProfile creates the profile row on first sign-in and returns the
// existing one on every later call.
func (s *profileService) EnsureProfile(ctx context.Context, id, email, fullName string) (*ProfileResponse, error) {
	profile, err := s.repo.Profile().GetByID(ctx, nil, id)
	if err == nil {
		return &ProfileResponse{Profile: profile}, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, NewPersistenceError("get profile", err)
	}

	s.logger.Info("Creating profile on first sign-in", "user_id", id, "email", email)

	profile = &models.Profile{
		ID:        id,
		FullName:  fullName,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Profile().Create(ctx, nil, profile); err != nil {
		// A concurrent first request may have won the race
		if repositories.IsDuplicateError(err) {
			existing, getErr := s.repo.Profile().GetByID(ctx, nil, id)
			if getErr == nil {
				return &ProfileResponse{Profile: existing}, nil
			}
		}
		return nil, NewPersistenceError("create profile", err)
	}

	return &ProfileResponse{Profile: profile}, nil
}

func (s *profileService) Update(ctx context.Context, id string, req *UpdateProfileRequest, userID string) (*ProfileResponse, error) {
	if id != userID {
		return nil, NewPermissionError(userID, id, "profile", "update", "not profile owner")
	}

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	profile, err := s.repo.Profile().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("profile", id)
		}
		return nil, NewPersistenceError("get profile", err)
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	profile.UpdatedAt = time.Now()

	if err := s.repo.Profile().Update(ctx, nil, profile); err != nil {
		return nil, NewPersistenceError("update profile", err)
	}

	s.publishEvent(ctx, events.EventProfileUpdated, profile)

	return &ProfileResponse{Profile: profile}, nil
}

// UploadAvatar writes the blob first, then points the profile at it. The old
// avatar blob is removed afterwards on a best effort basis.
func (s *profileService) UploadAvatar(ctx context.Context, id string, fileName string, file io.Reader, userID string) (*ProfileResponse, error) {
	if id != userID {
		return nil, NewPermissionError(userID, id, "profile", "upload_avatar", "not profile owner")
	}
	if file == nil {
		return nil, validator.ValidationErrors{{Field: "file", Message: "is required", Rule: "required"}}
	}

	profile, err := s.repo.Profile().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("profile", id)
		}
		return nil, NewPersistenceError("get profile", err)
	}

	key := fmt.Sprintf("avatars/%s/%s%s", id, uuid.New().String(), path.Ext(fileName))

	if err := s.bucket.Upload(ctx, storage.BucketCategoryAvatar, key, file); err != nil {
		return nil, NewPersistenceError("upload avatar blob", err)
	}

	oldURL := profile.AvatarURL
	url := s.bucket.PublicURL(storage.BucketCategoryAvatar, key)
	profile.AvatarURL = &url
	profile.UpdatedAt = time.Now()

	if err := s.repo.Profile().Update(ctx, nil, profile); err != nil {
		if delErr := s.bucket.Delete(ctx, storage.BucketCategoryAvatar, key); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned avatar blob", "key", key, "error", delErr)
		}
		return nil, NewPersistenceError("update profile avatar", err)
	}

	if oldURL != nil {
		if oldKey, ok := avatarKeyFromURL(*oldURL, id); ok {
			if err := s.bucket.Delete(ctx, storage.BucketCategoryAvatar, oldKey); err != nil {
				s.logger.Warn("Failed to delete previous avatar blob", "key", oldKey, "error", err)
			}
		}
	}

	s.publishEvent(ctx, events.EventProfileUpdated, profile)

	return &ProfileResponse{Profile: profile}, nil
}

// DeleteAccount removes the profile row and its activity history in one
// transaction, then cleans up avatar blobs and cached reads best effort.
// Owned materials, documents and posts are removed through their own delete
// operations, not here.
func (s *profileService) DeleteAccount(ctx context.Context, id string, userID string) error {
	if id != userID {
		return NewPermissionError(userID, id, "profile", "delete", "not profile owner")
	}

	s.logger.Info("Deleting account", "user_id", id)

	if _, err := s.repo.Profile().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("profile", id)
		}
		return NewPersistenceError("get profile", err)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Activity().DeleteByOwner(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Profile().Delete(ctx, nil, id)
	})
	if err != nil {
		return NewPersistenceError("delete account", err)
	}

	if err := s.bucket.DeletePrefix(ctx, storage.BucketCategoryAvatar, fmt.Sprintf("avatars/%s/", id)); err != nil {
		s.logger.Warn("Failed to delete avatar blobs", "user_id", id, "error", err)
	}
	if err := s.repo.ClearOwnerCache(ctx, id); err != nil {
		s.logger.Warn("Failed to clear owner cache", "user_id", id, "error", err)
	}

	s.publishEvent(ctx, events.EventProfileDeleted, map[string]interface{}{"id": id})

	s.logger.Info("Account deleted", "user_id", id)
	return nil
}

func (s *profileService) Search(ctx context.Context, query string, limit, offset int) ([]*ProfileResponse, int64, error) {
	profiles, total, err := s.repo.Profile().Search(ctx, nil, query, limit, offset)
	if err != nil {
		return nil, 0, NewPersistenceError("search profiles", err)
	}

	out := make([]*ProfileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = &ProfileResponse{Profile: p}
	}
	return out, total, nil
}

func (s *profileService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, profileTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}

// avatarKeyFromURL recovers the object key from a public avatar URL. Only
// keys under the caller's own avatar prefix are returned, so a malformed URL
// can never delete someone else's blob.
func avatarKeyFromURL(url, ownerID string) (string, bool) {
	prefix := fmt.Sprintf("avatars/%s/", ownerID)
	if i := strings.Index(url, prefix); i >= 0 {
		return url[i:], true
	}
	return "", false
}
