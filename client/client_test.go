package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tnqbao/gau-object-gallery/entity"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": status,
			"message":    "Object not found",
			"error":      http.StatusText(status),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"message":    "Success",
		"data":       data,
	})
}

func TestClientCreateSendsMultipart(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/objects" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image: %v", err)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)

		if r.FormValue("title") != "Lamp" || r.FormValue("description") != "Brass" {
			t.Errorf("unexpected fields: %v", r.Form)
		}
		if header.Filename != "lamp.png" || header.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected file header: %s %s", header.Filename, header.Header.Get("Content-Type"))
		}

		writeEnvelope(w, http.StatusCreated, entity.StoreObject{
			ID:       id,
			Title:    r.FormValue("title"),
			ImageURL: "http://storage.test/objects/1-lamp.png",
			Size:     int64(len(content)),
		})
	}))
	defer server.Close()

	object, err := New(server.URL).CreateObject(context.Background(), CreateObjectRequest{
		Title:       "Lamp",
		Description: "Brass",
		Filename:    "lamp.png",
		ContentType: "image/png",
		Image:       strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	if object.ID != id || object.Size != int64(len("png-bytes")) {
		t.Fatalf("unexpected object: %+v", object)
	}
}

func TestClientListPassesSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "old camera" {
			t.Errorf("search = %q", got)
		}
		writeEnvelope(w, http.StatusOK, []entity.StoreObject{{ID: uuid.New(), Title: "Old Camera"}})
	}))
	defer server.Close()

	objects, err := New(server.URL + "/").ListObjects(context.Background(), "old camera")
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if len(objects) != 1 || objects[0].Title != "Old Camera" {
		t.Fatalf("unexpected objects: %+v", objects)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil)
	}))
	defer server.Close()

	err := New(server.URL).DeleteObject(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Object not found" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestWarmUpRetriesUntilServerIsUp(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(w, http.StatusOK, []entity.StoreObject{})
	}))
	defer server.Close()

	objects, err := New(server.URL).WarmUp(context.Background(), RetryPolicy{MaxAttempts: 5, Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("WarmUp: %v", err)
	}
	if objects == nil || calls.Load() != 3 {
		t.Fatalf("objects=%v calls=%d", objects, calls.Load())
	}
}

func TestWarmUpStopsAtMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL).WarmUp(context.Background(), RetryPolicy{MaxAttempts: 2, Interval: 5 * time.Millisecond})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected last 502 error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestWarmUpStopsAtMaxDuration(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	start := time.Now()
	_, err := New(server.URL).WarmUp(context.Background(), RetryPolicy{MaxDuration: 100 * time.Millisecond, Interval: 20 * time.Millisecond})
	if err == nil {
		t.Fatal("expected an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("warm-up ran for %v", elapsed)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected several attempts, got %d", calls.Load())
	}
}

func TestWarmUpDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusNotFound, nil)
	}))
	defer server.Close()

	_, err := New(server.URL).WarmUp(context.Background(), RetryPolicy{MaxAttempts: 5, Interval: 5 * time.Millisecond})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 api error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestSubscribeDispatchesEvents(t *testing.T) {
	object := &entity.StoreObject{ID: uuid.New(), Title: "Globe"}
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/realtime" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(entity.NewObjectCreatedEvent(object))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"unknown","data":1}`))
		_ = conn.WriteJSON(entity.NewObjectDeletedEvent(object.ID.String()))

		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan entity.ObjectEvent, 4)
	done := make(chan error, 1)
	go func() {
		done <- New(server.URL).Subscribe(ctx, func(event entity.ObjectEvent) { events <- event })
	}()

	for _, want := range []entity.EventType{entity.EventNewObject, entity.EventDeleteObject} {
		select {
		case event := <-events:
			if event.Type != want || event.ObjectID != object.ID.String() {
				t.Fatalf("unexpected event: %+v", event)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Subscribe returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}
