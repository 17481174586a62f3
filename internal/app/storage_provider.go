package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

var newFileStore = filestore.New

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorInvalidPublicBase   StorageProviderBootstrapErrorCode = "invalid_public_base_url"
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
		return "file store bootstrap failed"
	}
	return fmt.Sprintf(
		"file store bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
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

func resolveFileStore(ctx context.Context, log *logger.Logger, cfg filestore.Config) (filestore.FileStore, error) {
	log.Info(
		"Selecting file store",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"compatibility_fallback", cfg.CompatibilityFallback,
		"emulator_host", cfg.EmulatorHost,
	)

	store, err := newFileStore(ctx, log, cfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"File store bootstrap failed",
			"mode", cfg.Mode,
			"mode_source", cfg.ModeSource(),
			"emulator_host", cfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

var configErrorCodes = map[filestore.ConfigErrorCode]StorageProviderBootstrapErrorCode{
	filestore.ConfigErrorInvalidMode:         StorageProviderBootstrapErrorInvalidMode,
	filestore.ConfigErrorMissingBucket:       StorageProviderBootstrapErrorMissingBucket,
	filestore.ConfigErrorMissingEmulatorHost: StorageProviderBootstrapErrorMissingEmulatorHost,
	filestore.ConfigErrorInvalidEmulatorHost: StorageProviderBootstrapErrorInvalidEmulatorHost,
	filestore.ConfigErrorInvalidPublicBase:   StorageProviderBootstrapErrorInvalidPublicBase,
}

func classifyStorageProviderBootstrapError(cfg filestore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *filestore.ConfigError
	if errors.As(err, &cfgErr) {
		if mapped, ok := configErrorCodes[cfgErr.Code]; ok {
			code = mapped
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
