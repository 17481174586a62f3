package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &filestore.ConfigError{Code: filestore.ConfigErrorInvalidMode, Value: "s3"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", &filestore.ConfigError{Code: filestore.ConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{"missing emulator host", &filestore.ConfigError{Code: filestore.ConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", &filestore.ConfigError{Code: filestore.ConfigErrorInvalidEmulatorHost, Value: "fake-gcs:4443"}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"wrapped", errors.Join(errors.New("validate"), &filestore.ConfigError{Code: filestore.ConfigErrorInvalidPublicBase}), StorageProviderBootstrapErrorInvalidPublicBase},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(filestore.Config{Mode: filestore.ModeGCS}, tc.err)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not preserved: %v", err)
			}
		})
	}
}

func TestResolveFileStoreInvalidMode(t *testing.T) {
	log := newTestLogger(t)
	_, err := resolveFileStore(context.Background(), log, filestore.Config{Mode: "s3"})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, got, err)
	}
}

func TestResolveFileStoreMissingEmulatorHost(t *testing.T) {
	log := newTestLogger(t)
	_, err := resolveFileStore(context.Background(), log, filestore.Config{
		Mode:   filestore.ModeGCSEmulator,
		Bucket: "materials",
	})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorMissingEmulatorHost, got, err)
	}
}

func TestResolveFileStoreLocal(t *testing.T) {
	log := newTestLogger(t)
	root := t.TempDir()
	store, err := resolveFileStore(context.Background(), log, filestore.Config{
		Mode:     filestore.ModeLocal,
		Root:     root,
		MediaURL: "/media/",
	})
	if err != nil {
		t.Fatalf("resolveFileStore: %v", err)
	}
	if store.Mode() != filestore.ModeLocal {
		t.Fatalf("mode: want=%q got=%q", filestore.ModeLocal, store.Mode())
	}
}

func TestResolveFileStorePassesConfig(t *testing.T) {
	log := newTestLogger(t)
	orig := newFileStore
	t.Cleanup(func() { newFileStore = orig })

	var captured filestore.Config
	newFileStore = func(_ context.Context, _ *logger.Logger, cfg filestore.Config) (filestore.FileStore, error) {
		captured = cfg
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err := resolveFileStore(context.Background(), log, filestore.Config{
		Mode:         filestore.ModeGCSEmulator,
		Bucket:       "materials",
		EmulatorHost: "http://fake-gcs:4443",
	})
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, got)
	}
	if captured.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", captured.EmulatorHost)
	}
}
