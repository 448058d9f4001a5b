package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
)

type memoryCache struct {
	values  map[string][]byte
	setErr  error
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.values[key]
	if !ok {
		return infra.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

type stubStore struct {
	objects   map[uuid.UUID]entity.StoreObject
	findCalls int
}

func newStubStore() *stubStore {
	return &stubStore{objects: map[uuid.UUID]entity.StoreObject{}}
}

func (s *stubStore) Create(_ context.Context, object *entity.StoreObject) error {
	object.ID = uuid.New()
	object.CreatedAt = time.Now().UTC()
	s.objects[object.ID] = *object
	return nil
}

func (s *stubStore) List(context.Context, string) ([]entity.StoreObject, error) {
	objects := make([]entity.StoreObject, 0, len(s.objects))
	for _, object := range s.objects {
		objects = append(objects, object)
	}
	return objects, nil
}

func (s *stubStore) FindByID(_ context.Context, id uuid.UUID) (*entity.StoreObject, error) {
	s.findCalls++
	object, ok := s.objects[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &object, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.objects, id)
	return nil
}

func TestCachedObjectRepositoryCreateWarmsCache(t *testing.T) {
	store, cache := newStubStore(), newMemoryCache()
	repo := NewCachedObjectRepository(store, cache, time.Minute, infra.NewLoggerClient(nil))

	object := &entity.StoreObject{Title: "Globe", Description: "Desk globe"}
	if err := repo.Create(context.Background(), object); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(context.Background(), object.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "Globe" {
		t.Fatalf("unexpected object: %+v", got)
	}
	if store.findCalls != 0 {
		t.Fatalf("expected cache hit, store was called %d times", store.findCalls)
	}
}

func TestCachedObjectRepositoryReadThrough(t *testing.T) {
	store, cache := newStubStore(), newMemoryCache()
	repo := NewCachedObjectRepository(store, cache, time.Minute, infra.NewLoggerClient(nil))

	object := &entity.StoreObject{Title: "Vase", Description: "Blue vase"}
	_ = store.Create(context.Background(), object)

	for i := 0; i < 3; i++ {
		if _, err := repo.FindByID(context.Background(), object.ID); err != nil {
			t.Fatalf("FindByID: %v", err)
		}
	}
	if store.findCalls != 1 {
		t.Fatalf("expected a single store lookup, got %d", store.findCalls)
	}
}

func TestCachedObjectRepositoryDeleteInvalidates(t *testing.T) {
	store, cache := newStubStore(), newMemoryCache()
	repo := NewCachedObjectRepository(store, cache, time.Minute, infra.NewLoggerClient(nil))

	object := &entity.StoreObject{Title: "Chair", Description: "Oak chair"}
	if err := repo.Create(context.Background(), object); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(context.Background(), object.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(cache.deleted) != 1 || cache.deleted[0] != "store_object:"+object.ID.String() {
		t.Fatalf("unexpected invalidations: %v", cache.deleted)
	}
	if _, err := repo.FindByID(context.Background(), object.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCachedObjectRepositoryToleratesCacheFailures(t *testing.T) {
	store, cache := newStubStore(), newMemoryCache()
	cache.setErr = errors.New("redis down")
	cache.getErr = errors.New("redis down")
	repo := NewCachedObjectRepository(store, cache, time.Minute, infra.NewLoggerClient(nil))

	object := &entity.StoreObject{Title: "Rug", Description: "Wool rug"}
	if err := repo.Create(context.Background(), object); err != nil {
		t.Fatalf("Create should ignore cache errors: %v", err)
	}
	got, err := repo.FindByID(context.Background(), object.ID)
	if err != nil {
		t.Fatalf("FindByID should fall back to the store: %v", err)
	}
	if got.ID != object.ID {
		t.Fatalf("unexpected object: %+v", got)
	}
}
