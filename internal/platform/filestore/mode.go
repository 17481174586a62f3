package filestore

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode                  Mode
	Root                  string
	MediaURL              string
	Bucket                string
	CDNDomain             string
	EmulatorHost          string
	PublicBaseURL         string
	CompatibilityFallback bool
}

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeLocal, ModeGCS, ModeGCSEmulator:
		return true
	default:
		return false
	}
}

func (cfg Config) IsEmulatorMode() bool { return cfg.Mode == ModeGCSEmulator }

func (cfg Config) IsObjectStorage() bool { return cfg.Mode == ModeGCS || cfg.Mode == ModeGCSEmulator }

func (cfg Config) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
	ConfigErrorInvalidPublicBase   ConfigErrorCode = "invalid_public_base_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid file store config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid FILE_STORE_MODE=%q (allowed: %q, %q, %q)", e.Value, ModeLocal, ModeGCS, ModeGCSEmulator)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("FILE_STORE_MODE=%q requires MATERIALS_GCS_BUCKET_NAME to be set", e.Value)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("FILE_STORE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid FILE_STORE_PUBLIC_BASE_URL=%q; expected absolute URL", e.Value)
	default:
		return "invalid file store config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ConfigFromEnv reads FILE_STORE_MODE and its companions. An unset mode
// falls back to the emulator when STORAGE_EMULATOR_HOST is present, otherwise
// to local disk. The result is checked by ValidateConfig when the store is
// opened.
func ConfigFromEnv() Config {
	cfg := Config{
		Mode:          Mode(strings.ToLower(strings.TrimSpace(os.Getenv("FILE_STORE_MODE")))),
		Root:          envOr("MEDIA_ROOT", "media"),
		MediaURL:      envOr("MEDIA_URL", "/media/"),
		Bucket:        strings.TrimSpace(os.Getenv("MATERIALS_GCS_BUCKET_NAME")),
		CDNDomain:     strings.TrimSpace(os.Getenv("MATERIALS_CDN_DOMAIN")),
		EmulatorHost:  strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
		PublicBaseURL: strings.TrimSpace(os.Getenv("FILE_STORE_PUBLIC_BASE_URL")),
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
		if cfg.EmulatorHost != "" {
			cfg.Mode = ModeGCSEmulator
			cfg.CompatibilityFallback = true
		}
	}
	return cfg
}

func ValidateConfig(cfg Config) error {
	if !IsSupportedMode(cfg.Mode) {
		return &ConfigError{Code: ConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
	if cfg.PublicBaseURL != "" && !isAbsoluteURL(cfg.PublicBaseURL) {
		return &ConfigError{Code: ConfigErrorInvalidPublicBase, Value: cfg.PublicBaseURL}
	}
	if !cfg.IsObjectStorage() {
		return nil
	}
	if cfg.Bucket == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Value: string(cfg.Mode)}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ConfigError{Code: ConfigErrorMissingEmulatorHost}
	}
	if !isAbsoluteURL(cfg.EmulatorHost) {
		_, err := url.Parse(cfg.EmulatorHost)
		return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Value: cfg.EmulatorHost, Cause: err}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
