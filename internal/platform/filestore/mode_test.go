package filestore

import (
	"errors"
	"testing"
)

func TestConfigFromEnvDefaultLocal(t *testing.T) {
	t.Setenv("FILE_STORE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("MEDIA_ROOT", "")
	t.Setenv("MEDIA_URL", "")

	cfg := ConfigFromEnv()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Fatalf("mode: want=%q got=%q", ModeLocal, cfg.Mode)
	}
	if cfg.Root != "media" || cfg.MediaURL != "/media/" {
		t.Fatalf("defaults: root=%q media_url=%q", cfg.Root, cfg.MediaURL)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestConfigFromEnvCompatibilityFallback(t *testing.T) {
	t.Setenv("FILE_STORE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	t.Setenv("MATERIALS_GCS_BUCKET_NAME", "materials")

	cfg := ConfigFromEnv()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
	if cfg.Mode != ModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=true got=false")
	}
	if got := cfg.ModeSource(); got != "compatibility_fallback" {
		t.Fatalf("ModeSource: got=%q", got)
	}
}

func TestConfigFromEnvGCSRequiresBucket(t *testing.T) {
	t.Setenv("FILE_STORE_MODE", "gcs")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("MATERIALS_GCS_BUCKET_NAME", "")

	err := ValidateConfig(ConfigFromEnv())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorMissingBucket {
		t.Fatalf("expected missing bucket error, got %v", err)
	}
}

func TestConfigFromEnvInvalidMode(t *testing.T) {
	t.Setenv("FILE_STORE_MODE", "s3")

	err := ValidateConfig(ConfigFromEnv())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorInvalidMode {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestValidateConfigEmulatorHost(t *testing.T) {
	err := ValidateConfig(Config{Mode: ModeGCSEmulator, Bucket: "b"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorMissingEmulatorHost {
		t.Fatalf("expected missing emulator host, got %v", err)
	}
	err = ValidateConfig(Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"})
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorInvalidEmulatorHost {
		t.Fatalf("expected invalid emulator host, got %v", err)
	}
	if err := ValidateConfig(Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "http://fake-gcs:4443"}); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestModeHelpers(t *testing.T) {
	if !IsSupportedMode(ModeLocal) || !IsSupportedMode(ModeGCS) || !IsSupportedMode(ModeGCSEmulator) {
		t.Fatalf("known modes should be supported")
	}
	if IsSupportedMode(Mode("invalid")) {
		t.Fatalf("invalid mode should not be supported")
	}
	if (Config{Mode: ModeLocal}).IsObjectStorage() {
		t.Fatalf("local mode is not object storage")
	}
	if !(Config{Mode: ModeGCS}).IsObjectStorage() {
		t.Fatalf("gcs mode is object storage")
	}
}
