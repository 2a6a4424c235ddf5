package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/validator"
)

func newTestMaterialService(repo *memoryRepository) MaterialService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewMaterialService(repo, nil, logger, validator.New(), publisher)
}

func TestMaterialService_CreateAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	first, err := service.Create(ctx, &CreateMaterialRequest{Title: "Algebra notes", Type: models.MaterialStudyGuide}, "user-a")
	if err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	second, err := service.Create(ctx, &CreateMaterialRequest{Title: "Algebra quiz", Type: models.MaterialQuiz}, "user-a")
	if err != nil {
		t.Fatalf("Second create failed: %v", err)
	}

	if first.ID == 0 || second.ID == 0 {
		t.Error("Created materials should carry server-assigned ids")
	}
	if first.ID == second.ID {
		t.Errorf("Ids must be unique, both got %d", first.ID)
	}
	if !first.CanEdit || !first.CanDelete {
		t.Error("Owner should be able to edit and delete the new material")
	}
}

func TestMaterialService_Create_InvalidType(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	_, err := service.Create(ctx, &CreateMaterialRequest{Title: "Bad", Type: "poster"}, "user-a")

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("Expected validation errors for unknown material type, got %v", err)
	}
}

func TestMaterialService_DeleteThenGetReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	material, err := service.Create(ctx, &CreateMaterialRequest{Title: "Doomed", Type: models.MaterialFlashcards}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := service.Delete(ctx, material.ID, "user-a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = service.GetByID(ctx, material.ID, "user-a")
	if !IsNotFound(err) {
		t.Errorf("Expected not-found after delete, got %v", err)
	}
}

func TestMaterialService_GetByID_ReadsAreStable(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	created, err := service.Create(ctx, &CreateMaterialRequest{Title: "Stable", Type: models.MaterialConceptMap, Subject: "Biology"}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := service.GetByID(ctx, created.ID, "user-a")
	if err != nil {
		t.Fatalf("First get failed: %v", err)
	}
	second, err := service.GetByID(ctx, created.ID, "user-a")
	if err != nil {
		t.Fatalf("Second get failed: %v", err)
	}

	if first.Title != second.Title || first.Subject != second.Subject || first.ID != second.ID {
		t.Errorf("Two reads without writes should agree: %+v vs %+v", first.StudyMaterial, second.StudyMaterial)
	}
}

func TestMaterialService_GetByID_PrivateHiddenFromOthers(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	private, err := service.Create(ctx, &CreateMaterialRequest{Title: "Mine", Type: models.MaterialStudyGuide}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = service.GetByID(ctx, private.ID, "user-b")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error for foreign private material, got %v", err)
	}

	public, err := service.Create(ctx, &CreateMaterialRequest{Title: "Shared", Type: models.MaterialStudyGuide, IsPublic: true}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := service.GetByID(ctx, public.ID, "user-b")
	if err != nil {
		t.Fatalf("Public material should be readable by anyone, got %v", err)
	}
	if got.CanEdit || got.CanDelete {
		t.Error("Non-owner must not get edit or delete rights on a public material")
	}
}

func TestMaterialService_Update_NotOwner(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	material, err := service.Create(ctx, &CreateMaterialRequest{Title: "Original", Type: models.MaterialQuiz}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	title := "Hijacked"
	_, err = service.Update(ctx, material.ID, &UpdateMaterialRequest{Title: &title}, "user-b")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error for foreign update, got %v", err)
	}
}

func TestMaterialService_Update_KeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	service := newTestMaterialService(newMemoryRepository())

	created, err := service.Create(ctx, &CreateMaterialRequest{Title: "Before", Type: models.MaterialQuiz}, "user-a")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	title := "After"
	updated, err := service.Update(ctx, created.ID, &UpdateMaterialRequest{Title: &title}, "user-a")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("ID must not change on update: %d vs %d", updated.ID, created.ID)
	}
	if updated.OwnerID != "user-a" {
		t.Errorf("OwnerID must not change on update, got %s", updated.OwnerID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt must not change on update: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt must move forward on update: %v vs %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.Title != "After" {
		t.Errorf("Title should be updated, got %s", updated.Title)
	}
}

func TestMaterialService_Search_ScopedToOwnAndPublic(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	service := newTestMaterialService(repo)

	if _, err := service.Create(ctx, &CreateMaterialRequest{Title: "Chemistry notes", Type: models.MaterialStudyGuide}, "user-a"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := service.Search(ctx, "chemistry", repositories.MaterialFilters{Limit: 20}, "user-a")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Total != 1 {
		t.Errorf("Expected 1 search hit, got %d", results.Total)
	}
}
