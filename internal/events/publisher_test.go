package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestNewEvent_Structure(t *testing.T) {
	event := NewEvent(EventMaterialCreated, map[string]interface{}{"material_id": uint(7)})

	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Type != EventMaterialCreated {
		t.Errorf("Expected type %q, got %q", EventMaterialCreated, event.Type)
	}
	if event.Source != "studyhub-service" {
		t.Errorf("Expected source 'studyhub-service', got %q", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got %q", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	first := NewEvent(EventPostCreated, nil)
	second := NewEvent(EventPostCreated, nil)
	if first.ID == second.ID {
		t.Errorf("Event ids must be unique, both got %s", first.ID)
	}
}

func TestMockEventPublisher_RecordsAndClears(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	if err := publisher.Publish(ctx, "studyhub.materials", NewEvent(EventMaterialCreated, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Publish(ctx, "studyhub.community", NewEvent(EventPostLiked, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("Expected 2 recorded events, got %d", len(published))
	}
	if published[0].Type != EventMaterialCreated || published[1].Type != EventPostLiked {
		t.Errorf("Events recorded out of order: %s, %s", published[0].Type, published[1].Type)
	}

	publisher.ClearEvents()
	if got := publisher.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("Expected no events after clear, got %d", len(got))
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
