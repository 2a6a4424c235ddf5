package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/validator"
)

func newTestCommunityService(repo *memoryRepository) (CommunityService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewCommunityService(repo, nil, logger, validator.New(), publisher), publisher
}

func seedPost(t *testing.T, repo *memoryRepository, ownerID string) *models.CommunityPost {
	t.Helper()
	post := &models.CommunityPost{Content: "post content", OwnerID: ownerID}
	if err := repo.Post().Create(context.Background(), nil, post); err != nil {
		t.Fatalf("Failed to seed post: %v", err)
	}
	return post
}

func TestCommunityService_LikePost_ConcurrentLikersBothCount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	var wg sync.WaitGroup
	for _, userID := range []string{"user-a", "user-b"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			if err := service.LikePost(ctx, post.ID, uid); err != nil {
				t.Errorf("LikePost(%s) failed: %v", uid, err)
			}
		}(userID)
	}
	wg.Wait()

	got, err := repo.Post().GetByID(ctx, nil, post.ID)
	if err != nil {
		t.Fatalf("Failed to reload post: %v", err)
	}
	if got.LikeCount != 2 {
		t.Errorf("Expected like count 2 after two concurrent likers, got %d", got.LikeCount)
	}
}

func TestCommunityService_LikePost_DuplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	if err := service.LikePost(ctx, post.ID, "user-a"); err != nil {
		t.Fatalf("First like failed: %v", err)
	}
	if err := service.LikePost(ctx, post.ID, "user-a"); err != nil {
		t.Fatalf("Second like from the same user should succeed silently, got: %v", err)
	}

	got, _ := repo.Post().GetByID(ctx, nil, post.ID)
	if got.LikeCount != 1 {
		t.Errorf("Expected like count 1 after duplicate like, got %d", got.LikeCount)
	}
}

func TestCommunityService_LikePost_MissingPost(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	err := service.LikePost(ctx, 999, "user-a")
	if !IsNotFound(err) {
		t.Errorf("Expected not-found error for missing post, got %v", err)
	}
}

func TestCommunityService_UnlikePost_WithoutLikeIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	if err := service.UnlikePost(ctx, post.ID, "user-a"); err != nil {
		t.Fatalf("Unlike without a like should be a no-op, got: %v", err)
	}

	got, _ := repo.Post().GetByID(ctx, nil, post.ID)
	if got.LikeCount != 0 {
		t.Errorf("Counter must not go below zero, got %d", got.LikeCount)
	}
}

func TestCommunityService_LikeUnlikeRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	if err := service.LikePost(ctx, post.ID, "user-a"); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if err := service.UnlikePost(ctx, post.ID, "user-a"); err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}

	got, _ := repo.Post().GetByID(ctx, nil, post.ID)
	if got.LikeCount != 0 {
		t.Errorf("Expected like count 0 after round trip, got %d", got.LikeCount)
	}

	response, err := service.GetPost(ctx, post.ID, "user-a")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if response.HasLiked {
		t.Error("HasLiked should be false after unlike")
	}
}

func TestCommunityService_AddComment_MovesCounter(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	comment, err := service.AddComment(ctx, post.ID, &CreateCommentRequest{Content: "nice"}, "user-a")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if comment.ID == 0 {
		t.Error("Comment should carry a server-assigned id")
	}
	if !comment.CanDelete {
		t.Error("Comment author should be able to delete it")
	}

	got, _ := repo.Post().GetByID(ctx, nil, post.ID)
	if got.CommentCount != 1 {
		t.Errorf("Expected comment count 1, got %d", got.CommentCount)
	}

	if err := service.DeleteComment(ctx, comment.ID, "user-a"); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}

	got, _ = repo.Post().GetByID(ctx, nil, post.ID)
	if got.CommentCount != 0 {
		t.Errorf("Expected comment count 0 after delete, got %d", got.CommentCount)
	}
}

func TestCommunityService_DeleteComment_NotOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	comment, err := service.AddComment(ctx, post.ID, &CreateCommentRequest{Content: "nice"}, "user-a")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	err = service.DeleteComment(ctx, comment.ID, "user-b")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error for foreign comment, got %v", err)
	}
}

func TestCommunityService_CreatePost_SharedMaterialMustBeVisible(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	private := &models.StudyMaterial{Title: "secret", Type: models.MaterialQuiz, OwnerID: "other", IsPublic: false}
	if err := repo.Material().Create(ctx, nil, private); err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}

	_, err := service.CreatePost(ctx, &CreatePostRequest{Content: "look at this", MaterialID: &private.ID}, "user-a")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error for sharing a foreign private material, got %v", err)
	}

	public := &models.StudyMaterial{Title: "open", Type: models.MaterialQuiz, OwnerID: "other", IsPublic: true}
	if err := repo.Material().Create(ctx, nil, public); err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}

	post, err := service.CreatePost(ctx, &CreatePostRequest{Content: "look at this", MaterialID: &public.ID}, "user-a")
	if err != nil {
		t.Fatalf("Sharing a public material should succeed, got %v", err)
	}
	if post.MaterialID == nil || *post.MaterialID != public.ID {
		t.Error("Post should reference the shared material")
	}
}

func TestCommunityService_CreatePost_PublishesEvent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, publisher := newTestCommunityService(repo)

	_, err := service.CreatePost(ctx, &CreatePostRequest{Content: "hello"}, "user-a")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}
	if published[0].Type != events.EventPostCreated {
		t.Errorf("Expected event type %q, got %q", events.EventPostCreated, published[0].Type)
	}
}

func TestCommunityService_UpdatePost_NotOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")

	newContent := "edited"
	_, err := service.UpdatePost(ctx, post.ID, &UpdatePostRequest{Content: &newContent}, "user-b")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error for foreign post edit, got %v", err)
	}
}

func TestCommunityService_GetFeed_AnonymousReader(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service, _ := newTestCommunityService(repo)

	post := seedPost(t, repo, "author")
	if err := service.LikePost(ctx, post.ID, "author"); err != nil {
		t.Fatalf("LikePost failed: %v", err)
	}

	feed, err := service.GetFeed(ctx, repositories.PostFilters{Limit: 20}, "")
	if err != nil {
		t.Fatalf("Anonymous GetFeed failed: %v", err)
	}
	if feed.Total != 1 || len(feed.Posts) != 1 {
		t.Fatalf("Expected 1 post in the feed, got total=%d len=%d", feed.Total, len(feed.Posts))
	}

	got := feed.Posts[0]
	if got.HasLiked {
		t.Error("Anonymous readers never have a like state")
	}
	if got.CanEdit || got.CanDelete {
		t.Error("Anonymous readers must not get edit or delete rights")
	}
	if got.LikeCount != 1 {
		t.Errorf("Like counter should still be visible anonymously, got %d", got.LikeCount)
	}
}
