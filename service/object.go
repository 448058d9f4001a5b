package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/infra"
)

const instrumentationName = "github.com/tnqbao/gau-object-gallery/service"

type ObjectRepository interface {
	Create(ctx context.Context, object *entity.StoreObject) error
	List(ctx context.Context, search string) ([]entity.StoreObject, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.StoreObject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BlobStorage interface {
	Upload(ctx context.Context, body io.Reader, size int64, contentType, originalName string) (string, error)
	Delete(ctx context.Context, url string)
}

type Broadcaster interface {
	Broadcast(event entity.ObjectEvent)
}

type FileUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type CreateObjectInput struct {
	Title       string
	Description string
	File        *FileUpload
}

type ObjectService struct {
	repo        ObjectRepository
	storage     BlobStorage
	broadcaster Broadcaster
	logger      *infra.LoggerClient
	maxSize     int64

	tracer        trace.Tracer
	createdCount  metric.Int64Counter
	deletedCount  metric.Int64Counter
	failedCreates metric.Int64Counter
}

// NewObjectService wires the object workflow. maxSize <= 0 disables the size limit.
func NewObjectService(repo ObjectRepository, storage BlobStorage, broadcaster Broadcaster, logger *infra.LoggerClient, maxSize int64) *ObjectService {
	meter := otel.Meter(instrumentationName)

	return &ObjectService{
		repo:          repo,
		storage:       storage,
		broadcaster:   broadcaster,
		logger:        logger,
		maxSize:       maxSize,
		tracer:        otel.Tracer(instrumentationName),
		createdCount:  newCounter(meter, "objects.created", "Objects stored"),
		deletedCount:  newCounter(meter, "objects.deleted", "Objects removed"),
		failedCreates: newCounter(meter, "objects.create.failed", "Object creations that failed, by stage"),
	}
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}

// Create validates the input, uploads the file, persists the record and announces it.
// A persistence failure after a successful upload leaves the blob in storage.
func (s *ObjectService) Create(ctx context.Context, input CreateObjectInput) (*entity.StoreObject, error) {
	ctx, span := s.tracer.Start(ctx, "ObjectService.Create")
	defer span.End()

	if err := s.validate(input); err != nil {
		s.fail(ctx, span, "validation", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("object.filename", input.File.Filename),
		attribute.Int64("object.size", input.File.Size),
	)

	imageURL, err := s.storage.Upload(ctx, input.File.Reader, input.File.Size, input.File.ContentType, input.File.Filename)
	if err != nil {
		s.fail(ctx, span, "upload", err)
		return nil, err
	}

	object := &entity.StoreObject{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    imageURL,
		Size:        input.File.Size,
		Metadata: datatypes.JSONMap{
			entity.MetadataContentType:  input.File.ContentType,
			entity.MetadataOriginalName: input.File.Filename,
		},
	}
	if err := s.repo.Create(ctx, object); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Object] Stored blob %s has no record", imageURL)
		s.fail(ctx, span, "persist", err)
		return nil, err
	}

	s.broadcaster.Broadcast(entity.NewObjectCreatedEvent(object))
	s.createdCount.Add(ctx, 1)
	span.SetAttributes(attribute.String("object.id", object.ID.String()))
	s.logger.InfoWithContextf(ctx, "[Object] Created %s (%s)", object.ID, object.Title)

	return object, nil
}

func (s *ObjectService) validate(input CreateObjectInput) error {
	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Description == "" {
		missing = append(missing, "description")
	}
	if input.File == nil || input.File.Reader == nil {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", entity.ErrValidation, strings.Join(missing, ", "))
	}

	if s.maxSize > 0 && input.File.Size > s.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", entity.ErrTooLarge, input.File.Size, s.maxSize)
	}
	return nil
}

func (s *ObjectService) fail(ctx context.Context, span trace.Span, stage string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	s.failedCreates.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	s.logger.WarningWithContextf(ctx, "[Object] Create failed at %s: %v", stage, err)
}

func (s *ObjectService) List(ctx context.Context, search string) ([]entity.StoreObject, error) {
	ctx, span := s.tracer.Start(ctx, "ObjectService.List", trace.WithAttributes(attribute.String("search", search)))
	defer span.End()

	objects, err := s.repo.List(ctx, search)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list")
		s.logger.ErrorWithContextf(ctx, err, "[Object] Failed to list objects")
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(objects)))
	return objects, nil
}

// Get looks an object up by id. Ids that are not UUIDs cannot exist.
func (s *ObjectService) Get(ctx context.Context, id string) (*entity.StoreObject, error) {
	ctx, span := s.tracer.Start(ctx, "ObjectService.Get", trace.WithAttributes(attribute.String("object.id", id)))
	defer span.End()

	objectID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	object, err := s.repo.FindByID(ctx, objectID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return object, nil
}

// Remove deletes the blob then the record and announces the removal.
// Blob deletion is best-effort; an unknown id touches nothing.
func (s *ObjectService) Remove(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ObjectService.Remove", trace.WithAttributes(attribute.String("object.id", id)))
	defer span.End()

	objectID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}

	object, err := s.repo.FindByID(ctx, objectID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.storage.Delete(ctx, object.ImageURL)

	if err := s.repo.Delete(ctx, objectID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete")
		s.logger.ErrorWithContextf(ctx, err, "[Object] Failed to delete record %s", objectID)
		return err
	}

	s.broadcaster.Broadcast(entity.NewObjectDeletedEvent(objectID.String()))
	s.deletedCount.Add(ctx, 1)
	s.logger.InfoWithContextf(ctx, "[Object] Removed %s", objectID)

	return nil
}
