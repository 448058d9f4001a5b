package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Metadata keys stored alongside an object.
const (
	MetadataContentType  = "contentType"
	MetadataOriginalName = "originalName"
)

type StoreObject struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string            `json:"title" gorm:"type:text;not null"`
	Description string            `json:"description" gorm:"type:text;not null"`
	ImageURL    string            `json:"imageUrl" gorm:"column:image_url;type:varchar(1024);not null"`
	Size        int64             `json:"size" gorm:"not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"not null;index"`
}

func (StoreObject) TableName() string {
	return "store_objects"
}
