package gcp

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

var (
	testLogOnce sync.Once
	testLog     *logger.Logger
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	testLogOnce.Do(func() {
		l, err := logger.New("test")
		if err != nil {
			t.Fatalf("logger.New: %v", err)
		}
		testLog = l
	})
	return testLog
}

func TestResolveObjectStoragePublicBaseURL(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")
	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS})
	if err != nil || baseURL != "" || source != "gcs_default" {
		t.Fatalf("gcs default: base=%q source=%q err=%v", baseURL, source, err)
	}

	baseURL, source, err = resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:         ObjectStorageModeGCSEmulator,
		EmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil || baseURL != "http://fake-gcs:4443" || source != "storage_emulator_host" {
		t.Fatalf("emulator fallback: base=%q source=%q err=%v", baseURL, source, err)
	}

	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "localhost:4443")
	if _, _, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{Mode: ObjectStorageModeGCS}); err == nil {
		t.Fatalf("expected error for relative public base url")
	}
}

func TestGetPublicURL(t *testing.T) {
	bs := &bucketService{qrBucket: bucketConfig{name: "qr-bucket"}}
	if got, want := bs.GetPublicURL(BucketCategoryQRCode, "/assets/a.png"), "https://storage.googleapis.com/qr-bucket/assets/a.png"; got != want {
		t.Fatalf("default: want=%q got=%q", want, got)
	}

	bs = &bucketService{cardBucket: bucketConfig{name: "card-bucket", cdnDomain: "cdn.example.com"}}
	if got, want := bs.GetPublicURL(BucketCategoryPassCard, "passes/p.png"), "https://cdn.example.com/passes/p.png"; got != want {
		t.Fatalf("cdn: want=%q got=%q", want, got)
	}

	bs = &bucketService{
		storageMode:  ObjectStorageModeGCSEmulator,
		emulatorHost: "http://fake-gcs:4443",
		qrBucket:     bucketConfig{name: "qr-bucket"},
	}
	want := "http://fake-gcs:4443/storage/v1/b/qr-bucket/o/passes%2Fp.png?alt=media"
	if got := bs.GetPublicURL(BucketCategoryQRCode, "passes/p.png"); got != want {
		t.Fatalf("emulator: want=%q got=%q", want, got)
	}

	if got := contentTypeForKey("passes/p.PNG"); got != "image/png" {
		t.Fatalf("contentTypeForKey: got=%q", got)
	}
}

func TestLocalBucketServiceLifecycle(t *testing.T) {
	svc, err := NewLocalBucketService(newTestLogger(t), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBucketService: %v", err)
	}
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	if err := svc.UploadFile(dbc, BucketCategoryQRCode, "assets/ASSET202600001.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	rc, err := svc.DownloadFile(ctx, BucketCategoryQRCode, "assets/ASSET202600001.png")
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "png-bytes" {
		t.Fatalf("DownloadFile: got %q", body)
	}

	if err := svc.DeleteFile(dbc, BucketCategoryQRCode, "assets/ASSET202600001.png"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := svc.DownloadFile(ctx, BucketCategoryQRCode, "assets/ASSET202600001.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("DownloadFile after delete: want ErrObjectNotFound got %v", err)
	}
	if err := svc.DeleteFile(dbc, BucketCategoryQRCode, "assets/ASSET202600001.png"); err != nil {
		t.Fatalf("DeleteFile twice should be a no-op: %v", err)
	}

	if err := svc.UploadFile(dbc, BucketCategoryQRCode, "../escape.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for key escaping the root")
	}
	if err := svc.UploadFile(dbc, BucketCategory("avatar"), "a.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
