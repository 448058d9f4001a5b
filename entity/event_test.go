package entity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestObjectEventWireFormat(t *testing.T) {
	object := &StoreObject{
		ID:          uuid.New(),
		Title:       "Vintage Camera",
		Description: "An old camera",
		ImageURL:    "https://cdn.example.com/objects/1700000000000-camera.jpg",
		Size:        10240,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(NewObjectCreatedEvent(object))
	if err != nil {
		t.Fatalf("marshal new_object: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if generic["event"] != "new_object" {
		t.Fatalf("unexpected event name: %v", generic["event"])
	}
	data, ok := generic["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", generic["data"])
	}
	if data["imageUrl"] != object.ImageURL || data["title"] != object.Title {
		t.Fatalf("unexpected payload: %v", data)
	}

	var decoded ObjectEvent
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.Type != EventNewObject || decoded.Object == nil || decoded.Object.ID != object.ID {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestObjectDeletedEventCarriesID(t *testing.T) {
	id := uuid.NewString()
	raw, err := json.Marshal(NewObjectDeletedEvent(id))
	if err != nil {
		t.Fatalf("marshal delete_object: %v", err)
	}
	want := `{"event":"delete_object","data":"` + id + `"}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestObjectEventRejectsUnknownType(t *testing.T) {
	var event ObjectEvent
	err := json.Unmarshal([]byte(`{"event":"rename_object","data":"x"}`), &event)
	if err == nil || !strings.Contains(err.Error(), "unknown event type") {
		t.Fatalf("expected unknown event type error, got %v", err)
	}
}
