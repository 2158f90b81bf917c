package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/nishad-backend/internal/platform/gcp"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

var (
	resolveObjectStorageConfig = gcp.ResolveObjectStorageConfigFromEnv
	newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingLocalDir     StorageProviderBootstrapErrorCode = "missing_local_dir"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService picks where QR codes and pass cards are stored:
// local disk, GCS, or the GCS emulator.
func resolveBucketService(log *logger.Logger) (gcp.BucketService, error) {
	storageCfg, err := resolveObjectStorageConfig()
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"local_dir", storageCfg.LocalDir,
	)

	bucket, err := newBucketServiceWithConfig(log, storageCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	mode := string(storageCfg.Mode)
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
			if cfgErr.Mode != "" {
				mode = cfgErr.Mode
			}
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case gcp.ObjectStorageConfigErrorMissingLocalDir:
			code = StorageProviderBootstrapErrorMissingLocalDir
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
