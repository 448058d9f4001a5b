package infra

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tnqbao/gau-object-gallery/entity"
)

// ObjectProvider is the blob backend behind BlobStore.
type ObjectProvider interface {
	PutObject(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, name string) error
	PublicURL(name string) string
}

type BlobStore struct {
	provider ObjectProvider
	logger   *LoggerClient
	now      func() time.Time
}

func NewBlobStore(provider ObjectProvider, logger *LoggerClient) *BlobStore {
	return &BlobStore{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores body as "<unix-millis>-<base name>" and returns its public URL.
func (s *BlobStore) Upload(ctx context.Context, body io.Reader, size int64, contentType, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeObjectName(originalName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.provider.PutObject(ctx, name, body, size, contentType); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Storage] Failed to upload %s (%d bytes)", name, size)
		return "", fmt.Errorf("%w: upload %s: %v", entity.ErrStorage, name, err)
	}

	s.logger.InfoWithContextf(ctx, "[Storage] Uploaded %s (%d bytes)", name, size)
	return s.provider.PublicURL(name), nil
}

// Delete removes the blob referenced by rawURL. Failures are logged, never returned.
func (s *BlobStore) Delete(ctx context.Context, rawURL string) {
	name, ok := ObjectNameFromURL(rawURL)
	if !ok {
		s.logger.WarningWithContextf(ctx, "[Storage] Cannot derive object name from url %q, skipping delete", rawURL)
		return
	}

	if err := s.provider.RemoveObject(ctx, name); err != nil {
		s.logger.WarningWithContextf(ctx, "[Storage] Failed to delete %s: %v", name, err)
		return
	}

	s.logger.InfoWithContextf(ctx, "[Storage] Deleted %s", name)
}

// ObjectNameFromURL returns the decoded last path segment of rawURL.
func ObjectNameFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "", false
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", false
	}
	return name, true
}

func sanitizeObjectName(originalName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." || name == "" {
		return "file"
	}
	return name
}
