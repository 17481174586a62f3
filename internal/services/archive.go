package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

const (
	contentTypeZip  = "application/x-zip-compressed"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeAims = "text/fhi-aims; charset=utf-8"
	contentTypePNG  = "image/png"
)

// Download is a generated attachment.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// archive builds a zip in memory with every member under one directory.
type archive struct {
	buf      bytes.Buffer
	zw       *zip.Writer
	dir      string
	modified time.Time
	names    map[string]bool
}

func newArchive(dir string, modified time.Time) *archive {
	a := &archive{dir: dir, modified: modified, names: map[string]bool{}}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

func (a *archive) add(name string, r io.Reader) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     path.Join(a.dir, name),
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	a.names[name] = true
	return nil
}

func (a *archive) addBytes(name string, data []byte) error {
	return a.add(name, bytes.NewReader(data))
}

// addStored copies key from the store. A missing object is skipped and
// reported as false.
func (a *archive) addStored(ctx context.Context, store filestore.FileStore, log *logger.Logger, key string) (bool, error) {
	name := path.Base(key)
	if a.names[name] {
		return false, nil
	}
	rc, err := store.Open(ctx, key)
	if errors.Is(err, filestore.ErrNotExist) {
		log.Warn("Archive member missing, skipping", "key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()
	if err := a.add(name, rc); err != nil {
		return false, fmt.Errorf("archive %s: %w", key, err)
	}
	return true, nil
}

func (a *archive) bytes() ([]byte, error) {
	if err := a.zw.Close(); err != nil {
		return nil, err
	}
	return a.buf.Bytes(), nil
}
