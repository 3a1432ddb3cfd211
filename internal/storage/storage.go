package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aeeconecta/aee-service/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
	ErrNotAnImage     = errors.New("file is not an image")
)

// ObjectStore stores photos in named buckets.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Remove(ctx context.Context, bucket, path string) error
	EnsureBuckets(ctx context.Context, buckets ...string) error
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal:
		return NewLocalStore(cfg.StorageRoot), nil
	case config.StorageS3:
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// embeddableImages are the formats the Word documents can place on a page.
var embeddableImages = []string{"image/png", "image/jpeg", "image/gif"}

// DetectImage sniffs data and returns its content type and file extension.
// Only png, jpeg and gif are accepted.
func DetectImage(data []byte) (contentType, ext string, err error) {
	mtype := mimetype.Detect(data)
	for _, allowed := range embeddableImages {
		if mtype.Is(allowed) {
			return allowed, mtype.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mtype.String())
}

// LessonPhotoName names a lesson photo aula_<YYYYmmddHHMMSS>_<8 hex><ext>.
func LessonPhotoName(now time.Time, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("aula_%s_%s%s", now.Format("20060102150405"), suffix, ext)
}

// ProfilePhotoName names the profile photo of a student.
func ProfilePhotoName(registro, ext string) string {
	return fmt.Sprintf("aluno_%s%s", sanitize(registro), ext)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
