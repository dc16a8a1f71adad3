package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"noteshelf/config"

	"github.com/google/uuid"
)

// RefPrefix is the public path under which stored blobs are served.
const RefPrefix = "/uploads/"

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("invalid blob reference")
)

type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore keeps uploaded files. Put returns a reference of the form
// /uploads/<key> which Get and Delete accept. The content type reported by
// Get comes from the key extension and the data, never from the uploader.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, ref string) (Blob, error)
	Delete(ctx context.Context, ref string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case config.StorageLocal:
		return NewLocalStore(cfg.UploadDir)
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// NewKey derives a collision free key that keeps the original extension.
func NewKey(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// KeyFromRef validates ref and returns its key.
func KeyFromRef(ref string) (string, error) {
	key := strings.TrimPrefix(ref, RefPrefix)
	if key == ref && strings.Contains(ref, "/") {
		return "", ErrInvalidRef
	}
	if !keyPattern.MatchString(key) || strings.Contains(key, "..") {
		return "", ErrInvalidRef
	}
	return key, nil
}

func refForKey(key string) string {
	return path.Join(RefPrefix, key)
}

func contentTypeFor(key string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

var inlineTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// InlineSafe reports whether a blob of this content type may be rendered by
// the browser on the API origin. Anything else is served as a download.
func InlineSafe(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return inlineTypes[mediaType]
}
