package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// Upload is a submitted file. Open may be called more than once.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// BytesUpload wraps an in-memory file.
func BytesUpload(name string, data []byte) Upload {
	return Upload{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func (u Upload) baseName() string {
	return path.Base(strings.ReplaceAll(strings.TrimSpace(u.Name), `\`, "/"))
}

// entryPrefix is the file-name stem shared by the legacy entry files of one
// phase and system.
func entryPrefix(phase, organic, inorganic string) string {
	return fmt.Sprintf("%s_%s_%s", phase, organic, inorganic)
}

func atomicPositionsKey(phase, organic, inorganic string) string {
	return "uploads/" + entryPrefix(phase, organic, inorganic) + "_apos.in"
}

func photoluminescencePrefix(phase, organic, inorganic string) string {
	return entryPrefix(phase, organic, inorganic) + "_pl"
}

// fileSaver writes uploads after the owning rows have committed. Failures are
// logged and returned by name; nothing is rolled back.
type fileSaver struct {
	store   filestore.FileStore
	log     *logger.Logger
	metrics *observability.Metrics
}

func (fs fileSaver) save(ctx context.Context, key string, u Upload) error {
	if u.Open == nil {
		return fmt.Errorf("upload %q has no content", u.Name)
	}
	rc, err := u.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", u.Name, err)
	}
	defer rc.Close()
	return fs.store.Save(ctx, key, rc)
}

// saveAll stores each upload as dir/<base name> and returns the names that
// could not be written.
func (fs fileSaver) saveAll(ctx context.Context, dir string, uploads []Upload) []string {
	var failed []string
	for _, u := range uploads {
		key := filestore.Join(dir, u.baseName())
		if err := fs.save(ctx, key, u); err != nil {
			fs.log.Error("Failed to save uploaded file", "key", key, "error", err)
			failed = append(failed, u.baseName())
		}
	}
	if len(failed) > 0 {
		fs.metrics.AddFileSaveFailures(len(failed))
	}
	return failed
}

func (fs fileSaver) saveAs(ctx context.Context, key string, u Upload) []string {
	if err := fs.save(ctx, key, u); err != nil {
		fs.log.Error("Failed to save uploaded file", "key", key, "error", err)
		fs.metrics.AddFileSaveFailures(1)
		return []string{u.baseName()}
	}
	return nil
}

// failedFilesText is appended to a success message when some files were lost.
func failedFilesText(failed []string) string {
	if len(failed) == 0 {
		return ""
	}
	return " The following files could not be saved: " + strings.Join(failed, ", ") + "."
}
