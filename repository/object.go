package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tnqbao/gau-object-gallery/entity"
)

type ObjectRepository struct {
	db *gorm.DB
}

func NewObjectRepository(db *gorm.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

// Create assigns a fresh id and creation time before inserting.
// The time is truncated to the column's microsecond precision.
func (r *ObjectRepository) Create(ctx context.Context, object *entity.StoreObject) error {
	object.ID = uuid.New()
	object.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := r.db.WithContext(ctx).Create(object).Error; err != nil {
		return fmt.Errorf("%w: create object: %w", entity.ErrPersistence, err)
	}
	return nil
}

// List returns every object newest first, or the objects whose title contains search.
func (r *ObjectRepository) List(ctx context.Context, search string) ([]entity.StoreObject, error) {
	objects := make([]entity.StoreObject, 0)

	query := r.db.WithContext(ctx)
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+escapeLike(search)+"%")
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&objects).Error; err != nil {
		return nil, fmt.Errorf("%w: list objects: %w", entity.ErrPersistence, err)
	}
	return objects, nil
}

func (r *ObjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.StoreObject, error) {
	var object entity.StoreObject
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&object).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: find object %s: %w", entity.ErrPersistence, id, err)
	}
	return &object, nil
}

func (r *ObjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.StoreObject{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete object %s: %w", entity.ErrPersistence, id, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
