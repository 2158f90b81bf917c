package gcp

import (
	"testing"
)

func TestResolveObjectStorageConfigFromEnvDefaultLocal(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("QR_GCS_BUCKET_NAME", "")
	t.Setenv("STORAGE_LOCAL_DIR", "")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeLocal, cfg.Mode)
	}
	if cfg.LocalDir == "" {
		t.Fatalf("local dir should default when unset")
	}
}

func TestResolveObjectStorageConfigFromEnvDefaultGCSWhenBucketSet(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("QR_GCS_BUCKET_NAME", "nishad-passes")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveObjectStorageConfigFromEnvExplicitGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "gcs")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
}

func TestResolveObjectStorageConfigFromEnvCompatibilityFallback(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=true got=false")
	}
	if got := cfg.ModeSource(); got != "compatibility_fallback" {
		t.Fatalf("ModeSource: want=%q got=%q", "compatibility_fallback", got)
	}
}

func TestResolveObjectStorageConfigFromEnvInvalidMode(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "s3")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	_, err := ResolveObjectStorageConfigFromEnv()
	if err == nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: expected error, got nil")
	}
}

func TestResolveObjectStorageConfigFromEnvEmulatorHostErrors(t *testing.T) {
	for _, host := range []string{"", "fake-gcs:4443"} {
		t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")
		t.Setenv("STORAGE_EMULATOR_HOST", host)

		if _, err := ResolveObjectStorageConfigFromEnv(); err == nil {
			t.Fatalf("host=%q: expected error, got nil", host)
		}
	}
}
