package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
)

const objectCachePrefix = "store_object:"

// Cache is implemented by infra.RedisClient.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type objectStore interface {
	Create(ctx context.Context, object *entity.StoreObject) error
	List(ctx context.Context, search string) ([]entity.StoreObject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.StoreObject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CachedObjectRepository serves FindByID from the cache when it can.
// Cache failures are logged and never fail the call.
type CachedObjectRepository struct {
	store  objectStore
	cache  Cache
	ttl    time.Duration
	logger *infra.LoggerClient
}

func NewCachedObjectRepository(store objectStore, cache Cache, ttl time.Duration, logger *infra.LoggerClient) *CachedObjectRepository {
	return &CachedObjectRepository{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func objectCacheKey(id uuid.UUID) string {
	return objectCachePrefix + id.String()
}

func (r *CachedObjectRepository) Create(ctx context.Context, object *entity.StoreObject) error {
	if err := r.store.Create(ctx, object); err != nil {
		return err
	}

	if err := r.cache.Set(ctx, objectCacheKey(object.ID), object, r.ttl); err != nil {
		r.logger.WarningWithContextf(ctx, "[Object Cache] Failed to warm cache for %s: %v", object.ID, err)
	}
	return nil
}

func (r *CachedObjectRepository) List(ctx context.Context, search string) ([]entity.StoreObject, error) {
	return r.store.List(ctx, search)
}

func (r *CachedObjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.StoreObject, error) {
	key := objectCacheKey(id)

	var cached entity.StoreObject
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, infra.ErrCacheMiss) {
		r.logger.WarningWithContextf(ctx, "[Object Cache] Failed to read %s: %v", key, err)
	}

	object, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, object, r.ttl); err != nil {
		r.logger.WarningWithContextf(ctx, "[Object Cache] Failed to store %s: %v", key, err)
	}
	return object, nil
}

func (r *CachedObjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, objectCacheKey(id)); err != nil {
		r.logger.WarningWithContextf(ctx, "[Object Cache] Failed to invalidate %s: %v", id, err)
	}
	return nil
}
