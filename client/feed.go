package client

import (
	"strings"
	"sync"

	"github.com/tnqbao/gau-object-gallery/entity"
)

// Feed is the client-side object list kept current by realtime events.
type Feed struct {
	mu      sync.RWMutex
	objects []entity.StoreObject
}

func NewFeed() *Feed {
	return &Feed{objects: make([]entity.StoreObject, 0)}
}

// Reset replaces the list, typically with the result of ListObjects.
func (f *Feed) Reset(objects []entity.StoreObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(make([]entity.StoreObject, 0, len(objects)), objects...)
}

// Apply prepends new objects and drops deleted ones. Duplicate creates are ignored.
func (f *Feed) Apply(event entity.ObjectEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch event.Type {
	case entity.EventNewObject:
		if event.Object == nil || f.indexOf(event.Object.ID.String()) >= 0 {
			return
		}
		f.objects = append([]entity.StoreObject{*event.Object}, f.objects...)
	case entity.EventDeleteObject:
		if i := f.indexOf(event.ObjectID); i >= 0 {
			f.objects = append(f.objects[:i], f.objects[i+1:]...)
		}
	}
}

func (f *Feed) indexOf(id string) int {
	for i := range f.objects {
		if f.objects[i].ID.String() == id {
			return i
		}
	}
	return -1
}

func (f *Feed) Objects() []entity.StoreObject {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append(make([]entity.StoreObject, 0, len(f.objects)), f.objects...)
}

// Saved returns the objects whose ids are in store, in feed order.
func (f *Feed) Saved(store *SavedStore) []entity.StoreObject {
	return f.filter(func(object entity.StoreObject) bool {
		return store.IsSaved(object.ID.String())
	})
}

// Search matches term against title or description, ignoring case.
func (f *Feed) Search(term string) []entity.StoreObject {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return f.Objects()
	}
	return f.filter(func(object entity.StoreObject) bool {
		return strings.Contains(strings.ToLower(object.Title), term) ||
			strings.Contains(strings.ToLower(object.Description), term)
	})
}

func (f *Feed) filter(keep func(entity.StoreObject) bool) []entity.StoreObject {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]entity.StoreObject, 0)
	for _, object := range f.objects {
		if keep(object) {
			result = append(result, object)
		}
	}
	return result
}
