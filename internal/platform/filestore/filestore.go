package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// ErrNotExist is returned (wrapped) when a key has no object behind it.
var ErrNotExist = errors.New("file does not exist")

// FileStore holds uploaded catalog files under slash-separated keys such as
// "uploads/dataset_<id>/spectrum.csv".
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the base names of the files directly under dir, sorted.
	// A missing dir lists as empty.
	List(ctx context.Context, dir string) ([]string, error)
	DeletePrefix(ctx context.Context, dir string) error
	URL(key string) string
	Mode() Mode
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (FileStore, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate file store config: %w", err)
	}
	switch cfg.Mode {
	case ModeLocal:
		return NewLocal(log, cfg.Root, cfg.MediaURL)
	case ModeGCS, ModeGCSEmulator:
		return NewGCS(ctx, log, cfg)
	default:
		return nil, &ConfigError{Code: ConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
}

// CleanKey normalizes key and rejects anything escaping the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, `\`, "/"))
	if k == "" {
		return "", fmt.Errorf("empty file key")
	}
	if strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("absolute file key %q", key)
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." {
			return "", fmt.Errorf("file key %q escapes the store", key)
		}
	}
	k = path.Clean(k)
	if k == "." {
		return "", fmt.Errorf("empty file key")
	}
	return k, nil
}

// Join builds a key from a directory and a client-supplied file name; only the
// base name of name is kept.
func Join(dir, name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	return strings.TrimRight(dir, "/") + "/" + base
}
