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

const communityTopic = "studyhub.community"

type communityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCommunityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CommunityService {
	return &communityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== POST OPERATIONS =====

func (s *communityService) CreatePost(ctx context.Context, req *CreatePostRequest, ownerID string) (*PostResponse, error) {
	s.logger.Info("Creating post", "owner_id", ownerID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	// Shared materials must exist and be visible to the poster
	if req.MaterialID != nil {
		material, err := s.repo.Material().GetByID(ctx, nil, *req.MaterialID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewNotFoundError("study_material", *req.MaterialID)
			}
			return nil, NewPersistenceError("get shared material", err)
		}
		if material.OwnerID != ownerID && !material.IsPublic {
			return nil, NewPermissionError(ownerID, *req.MaterialID, "study_material", "share", "not owner and not public")
		}
	}

	post := &models.CommunityPost{
		Content:    req.Content,
		OwnerID:    ownerID,
		MaterialID: req.MaterialID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.repo.Post().Create(ctx, nil, post); err != nil {
		return nil, NewPersistenceError("create post", err)
	}

	s.recordActivity(ctx, ownerID, post)
	s.publishEvent(ctx, events.EventPostCreated, post)

	s.logger.Info("Post created", "post_id", post.ID)

	return s.buildPostResponse(ctx, post, ownerID), nil
}

func (s *communityService) GetPost(ctx context.Context, id uint, userID string) (*PostResponse, error) {
	post, err := s.repo.Post().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("post", id)
		}
		return nil, NewPersistenceError("get post", err)
	}

	return s.buildPostResponse(ctx, post, userID), nil
}

func (s *communityService) UpdatePost(ctx context.Context, id uint, req *UpdatePostRequest, userID string) (*PostResponse, error) {
	s.logger.Info("Updating post", "post_id", id, "user_id", userID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	post, err := s.repo.Post().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("post", id)
		}
		return nil, NewPersistenceError("get post", err)
	}

	if post.OwnerID != userID {
		return nil, NewPermissionError(userID, id, "post", "update", "not owner")
	}

	if req.Content != nil {
		post.Content = *req.Content
	}
	post.UpdatedAt = time.Now()

	if err := s.repo.Post().Update(ctx, nil, post); err != nil {
		return nil, NewPersistenceError("update post", err)
	}

	return s.buildPostResponse(ctx, post, userID), nil
}

func (s *communityService) DeletePost(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting post", "post_id", id, "user_id", userID)

	post, err := s.repo.Post().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("post", id)
		}
		return NewPersistenceError("get post", err)
	}

	if post.OwnerID != userID {
		return NewPermissionError(userID, id, "post", "delete", "not owner")
	}

	if err := s.repo.Post().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("post", id)
		}
		return NewPersistenceError("delete post", err)
	}

	return nil
}

func (s *communityService) GetFeed(ctx context.Context, filters repositories.PostFilters, userID string) (*PostListResponse, error) {
	posts, total, err := s.repo.Post().GetFeed(ctx, nil, filters)
	if err != nil {
		return nil, NewPersistenceError("get feed", err)
	}

	response := &PostListResponse{
		Posts: make([]*PostResponse, len(posts)),
		Total: total,
		Page:  pageOf(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}
	for i, post := range posts {
		response.Posts[i] = s.buildPostResponse(ctx, post, userID)
	}

	return response, nil
}

// ===== LIKES =====

// LikePost runs the like row insert and the counter increment in one
// transaction, so a crash between the two cannot leave them out of step.
// A second like from the same user hits the unique index and is rejected.
func (s *communityService) LikePost(ctx context.Context, postID uint, userID string) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Post().AddLike(ctx, nil, postID, userID)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			// Already liked; idempotent from the caller's view
			return nil
		}
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("post", postID)
		}
		return NewPersistenceError("like post", err)
	}

	s.publishEvent(ctx, events.EventPostLiked, map[string]interface{}{"post_id": postID, "user_id": userID})
	return nil
}

// UnlikePost mirrors LikePost. An unlike without a matching like is a no-op
// and the counter never goes below zero.
func (s *communityService) UnlikePost(ctx context.Context, postID uint, userID string) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Post().RemoveLike(ctx, nil, postID, userID)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// No like row existed; nothing to undo
			return nil
		}
		return NewPersistenceError("unlike post", err)
	}

	return nil
}

// ===== COMMENTS =====

func (s *communityService) AddComment(ctx context.Context, postID uint, req *CreateCommentRequest, ownerID string) (*CommentResponse, error) {
	s.logger.Info("Adding comment", "post_id", postID, "owner_id", ownerID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	comment := &models.PostComment{
		PostID:    postID,
		Content:   req.Content,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Comment insert and counter increment move together
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Comment().Create(ctx, nil, comment); err != nil {
			return err
		}
		return txRepo.Post().IncrementCommentCount(ctx, nil, postID, 1)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("post", postID)
		}
		return nil, NewPersistenceError("add comment", err)
	}

	s.publishEvent(ctx, events.EventCommentAdded, comment)

	return &CommentResponse{PostComment: comment, CanDelete: true}, nil
}

func (s *communityService) DeleteComment(ctx context.Context, commentID uint, userID string) error {
	s.logger.Info("Deleting comment", "comment_id", commentID, "user_id", userID)

	comment, err := s.repo.Comment().GetByID(ctx, nil, commentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("comment", commentID)
		}
		return NewPersistenceError("get comment", err)
	}

	if comment.OwnerID != userID {
		return NewPermissionError(userID, commentID, "comment", "delete", "not owner")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Comment().Delete(ctx, nil, commentID); err != nil {
			return err
		}
		return txRepo.Post().IncrementCommentCount(ctx, nil, comment.PostID, -1)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("comment", commentID)
		}
		return NewPersistenceError("delete comment", err)
	}

	return nil
}

func (s *communityService) GetComments(ctx context.Context, postID uint, limit, offset int, userID string) (*CommentListResponse, error) {
	comments, total, err := s.repo.Comment().GetByPost(ctx, nil, postID, limit, offset)
	if err != nil {
		return nil, NewPersistenceError("list comments", err)
	}

	response := &CommentListResponse{
		Comments: make([]*CommentResponse, len(comments)),
		Total:    total,
		Page:     pageOf(offset, limit),
		Size:     limit,
	}
	for i, c := range comments {
		response.Comments[i] = &CommentResponse{
			PostComment: c,
			CanDelete:   c.OwnerID == userID,
		}
	}

	return response, nil
}

// ===== HELPERS =====

func (s *communityService) buildPostResponse(ctx context.Context, post *models.CommunityPost, userID string) *PostResponse {
	isOwner := post.OwnerID == userID

	hasLiked := false
	if userID != "" {
		liked, err := s.repo.Post().HasLiked(ctx, nil, post.ID, userID)
		if err != nil {
			s.logger.Warn("Failed to check like state", "post_id", post.ID, "user_id", userID, "error", err)
		} else {
			hasLiked = liked
		}
	}

	return &PostResponse{
		CommunityPost: post,
		CanEdit:       isOwner,
		CanDelete:     isOwner,
		HasLiked:      hasLiked,
	}
}

func (s *communityService) recordActivity(ctx context.Context, ownerID string, post *models.CommunityPost) {
	entry := &models.ActivityEntry{
		Type:       models.ActivityPostCreated,
		OwnerID:    ownerID,
		MaterialID: post.MaterialID,
		Detail: map[string]interface{}{
			"post_id": post.ID,
		},
		CreatedAt: time.Now(),
	}
	if err := s.repo.Activity().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("Failed to record activity", "type", models.ActivityPostCreated, "owner_id", ownerID, "error", err)
	}
}

func (s *communityService) publishEvent(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, communityTopic, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
