package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/materials-backend/internal/platform/logger"
)

func newTestLocal(t *testing.T) (FileStore, string) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	root := t.TempDir()
	fs, err := NewLocal(log, root, "/media/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return fs, root
}

func TestLocalSaveOpenListDelete(t *testing.T) {
	ctx := context.Background()
	fs, root := newTestLocal(t)

	if err := fs.Save(ctx, "uploads/dataset_1/b.txt", strings.NewReader("bee")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(ctx, "uploads/dataset_1/a.txt", strings.NewReader("ay")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(ctx, "uploads/dataset_1/a.txt", strings.NewReader("ay2")); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	rc, err := fs.Open(ctx, "uploads/dataset_1/a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "ay2" {
		t.Fatalf("content: got=%q", body)
	}

	names, err := fs.List(ctx, "uploads/dataset_1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "a.txt,b.txt" {
		t.Fatalf("names: got=%v", names)
	}

	ok, err := fs.Exists(ctx, "uploads/dataset_1/b.txt")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	if err := fs.DeletePrefix(ctx, "uploads/dataset_1"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", "dataset_1")); !os.IsNotExist(err) {
		t.Fatalf("folder should be gone, stat err=%v", err)
	}
	names, err = fs.List(ctx, "uploads/dataset_1")
	if err != nil || len(names) != 0 {
		t.Fatalf("List after delete: names=%v err=%v", names, err)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	fs, _ := newTestLocal(t)
	_, err := fs.Open(context.Background(), "uploads/nope.txt")
	if !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	ok, err := fs.Exists(context.Background(), "uploads/nope.txt")
	if err != nil || ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	fs, _ := newTestLocal(t)
	for _, key := range []string{"", "/etc/passwd", "../x", "uploads/../../x"} {
		if err := fs.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("Save(%q) should fail", key)
		}
	}
}

func TestLocalURL(t *testing.T) {
	fs, _ := newTestLocal(t)
	if got := fs.URL("uploads/dataset_1/a.txt"); got != "/media/uploads/dataset_1/a.txt" {
		t.Fatalf("URL: got=%q", got)
	}
	if fs.Mode() != ModeLocal {
		t.Fatalf("Mode: got=%q", fs.Mode())
	}
}

func TestJoinKeepsBaseName(t *testing.T) {
	if got := Join("uploads/dataset_1/", `..\..\evil.txt`); got != "uploads/dataset_1/evil.txt" {
		t.Fatalf("Join: got=%q", got)
	}
}
