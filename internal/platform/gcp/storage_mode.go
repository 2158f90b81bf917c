package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	ObjectStorageModeLocal       ObjectStorageMode = "local"
)

type ObjectStorageConfig struct {
	Mode                  ObjectStorageMode
	EmulatorHost          string
	LocalDir              string
	CompatibilityFallback bool
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	switch mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeLocal:
		return true
	default:
		return false
	}
}

func IsEmulatorObjectStorageMode(mode ObjectStorageMode) bool {
	return mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return IsEmulatorObjectStorageMode(cfg.Mode)
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorMissingLocalDir     ObjectStorageConfigErrorCode = "missing_local_dir"
)

type ObjectStorageConfigError struct {
	Code         ObjectStorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)",
			e.Mode,
			ObjectStorageModeGCS,
			ObjectStorageModeGCSEmulator,
			ObjectStorageModeLocal,
		)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf(
			"OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set",
			ObjectStorageModeGCSEmulator,
		)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf(
			"invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443",
			e.EmulatorHost,
		)
	case ObjectStorageConfigErrorMissingLocalDir:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_LOCAL_DIR to be set", ObjectStorageModeLocal)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveObjectStorageConfigFromEnv picks the storage backend. With no
// OBJECT_STORAGE_MODE it falls back to the emulator when STORAGE_EMULATOR_HOST
// is set, to GCS when QR_GCS_BUCKET_NAME is set, and to local disk otherwise.
func ResolveObjectStorageConfigFromEnv() (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		EmulatorHost: strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
		LocalDir:     strings.TrimSpace(os.Getenv("STORAGE_LOCAL_DIR")),
	}

	rawMode := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	mode := ObjectStorageMode(strings.ToLower(rawMode))

	switch mode {
	case "":
		switch {
		case cfg.EmulatorHost != "":
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		case strings.TrimSpace(os.Getenv("QR_GCS_BUCKET_NAME")) != "":
			cfg.Mode = ObjectStorageModeGCS
		default:
			cfg.Mode = ObjectStorageModeLocal
		}
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeLocal:
		cfg.Mode = mode
	default:
		return cfg, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: rawMode,
		}
	}

	if cfg.Mode == ObjectStorageModeLocal && cfg.LocalDir == "" {
		cfg.LocalDir = "./data/blobs"
	}

	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !IsSupportedObjectStorageMode(cfg.Mode) {
		return &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(cfg.Mode),
		}
	}
	if cfg.Mode == ObjectStorageModeLocal {
		if strings.TrimSpace(cfg.LocalDir) == "" {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingLocalDir, Mode: string(cfg.Mode)}
		}
		return nil
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}

	if cfg.EmulatorHost == "" {
		return &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorMissingEmulatorHost,
			Mode: string(cfg.Mode),
		}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return &ObjectStorageConfigError{
			Code:         ObjectStorageConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}

	return nil
}
