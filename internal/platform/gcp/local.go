package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

// localBucketService keeps blobs under <root>/<category>/<key> for
// development and tests. It has no public URLs; the API streams the bytes.
type localBucketService struct {
	log  *logger.Logger
	root string
}

func NewLocalBucketService(log *logger.Logger, root string) (BucketService, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingLocalDir, Mode: string(ObjectStorageModeLocal)}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	serviceLog := log.With("service", "BucketService")
	serviceLog.Info("Object storage initialized", "mode", ObjectStorageModeLocal, "dir", abs)
	return &localBucketService{log: serviceLog, root: abs}, nil
}

func (s *localBucketService) Mode() ObjectStorageMode { return ObjectStorageModeLocal }

func (s *localBucketService) path(category BucketCategory, key string) (string, error) {
	switch category {
	case BucketCategoryQRCode, BucketCategoryPassCard:
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, string(category), clean), nil
}

func (s *localBucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	p, err := s.path(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close object: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

func (s *localBucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	p, err := s.path(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *localBucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	p, err := s.path(category, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object %q: %w", key, err)
	}
	return f, nil
}

func (s *localBucketService) GetPublicURL(BucketCategory, string) string { return "" }
