package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryQRCode   BucketCategory = "qr_code"
	BucketCategoryPassCard BucketCategory = "pass_card"
)

// ErrObjectNotFound is returned by DownloadFile when the key is absent.
var ErrObjectNotFound = errors.New("object not found")

type bucketConfig struct {
	name      string
	cdnDomain string
}

// BucketService stores derived blobs (QR images, pass cards).
type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetPublicURL(category BucketCategory, key string) string
	Mode() ObjectStorageMode
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	qrBucket      bucketConfig
	cardBucket    bucketConfig
	publicBaseURL string
}

// NewBucketService resolves the backend from env and returns either the GCS
// service or the local disk service.
func NewBucketService(log *logger.Logger) (BucketService, error) {
	storageCfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	if storageCfg.Mode == ObjectStorageModeLocal {
		return NewLocalBucketService(log, storageCfg.LocalDir)
	}
	return NewBucketServiceWithConfig(log, storageCfg)
}

func NewBucketServiceWithConfig(log *logger.Logger, storageCfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if storageCfg.Mode == ObjectStorageModeLocal {
		return NewLocalBucketService(log, storageCfg.LocalDir)
	}
	serviceLog := log.With("service", "BucketService")

	qrBucketName := strings.TrimSpace(os.Getenv("QR_GCS_BUCKET_NAME"))
	if qrBucketName == "" {
		return nil, fmt.Errorf("missing env var QR_GCS_BUCKET_NAME")
	}
	cardBucketName := strings.TrimSpace(os.Getenv("CARD_GCS_BUCKET_NAME"))
	if cardBucketName == "" {
		cardBucketName = qrBucketName
	}
	cdn := strings.TrimSpace(os.Getenv("QR_CDN_DOMAIN"))

	publicBaseURL, publicBaseSource, err := resolveObjectStoragePublicBaseURL(storageCfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	stClient, err := newStorageClientForMode(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
		"qr_bucket", qrBucketName,
		"card_bucket", cardBucketName,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		storageMode:   storageCfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"),
		qrBucket:      bucketConfig{name: qrBucketName, cdnDomain: cdn},
		cardBucket:    bucketConfig{name: cardBucketName, cdnDomain: cdn},
		publicBaseURL: publicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func resolveObjectStoragePublicBaseURL(storageCfg ObjectStorageConfig) (baseURL string, source string, err error) {
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL"))
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf(
				"invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443",
				raw,
			)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}

	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}

	return "", "gcs_default", nil
}

func (bs *bucketService) Mode() ObjectStorageMode { return bs.storageMode }

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryQRCode:
		return bs.qrBucket, nil
	case BucketCategoryPassCard:
		return bs.cardBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctxOrBackground(dbc.Ctx), 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctxOrBackground(dbc.Ctx), 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.storageMode == ObjectStorageModeGCSEmulator {
		if u := bs.emulatorObjectMediaURL(cfg.name, key, true); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) emulatorObjectMediaURL(bucket, key string, public bool) string {
	base := ""
	if public {
		base = strings.TrimRight(strings.TrimSpace(bs.publicBaseURL), "/")
	}
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(bs.emulatorHost), "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		base,
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}

// The reader's context must outlive this call, so cancel runs on Close.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctxOrBackground(ctx), 2*time.Minute)

	if bs.storageMode == ObjectStorageModeGCSEmulator && bs.emulatorHost != "" {
		req, err := http.NewRequestWithContext(ctx2, http.MethodGet, bs.emulatorObjectMediaURL(cfg.name, key, false), nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed creating emulator download request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed emulator download request: %w", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			_ = resp.Body.Close()
			cancel()
			return nil, ErrObjectNotFound
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			_ = resp.Body.Close()
			cancel()
			return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return &readCloserWithCancel{ReadCloser: resp.Body, cancel: cancel}, nil
	}

	r, err := bs.storageClient.Bucket(cfg.name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
