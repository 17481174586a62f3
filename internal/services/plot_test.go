package services

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
)

func TestDatasetImage(t *testing.T) {
	f := newIngestFixture(t)
	res, err := f.ingest(t, f.baseForm, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc := NewPlotService(f.log, f.data, nil, nil)
	dl, err := svc.DatasetImage(f.ctx, res.DatasetID)
	if err != nil {
		t.Fatalf("DatasetImage: %v", err)
	}
	if dl.ContentType != "image/png" {
		t.Fatalf("unexpected content type %s", dl.ContentType)
	}
	img, err := png.Decode(bytes.NewReader(dl.Body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != plotWidth || b.Dy() != plotHeight {
		t.Fatalf("unexpected size %v", b)
	}

	if _, err := svc.DatasetImage(f.ctx, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBoundsPadsFlatSeries(t *testing.T) {
	lo, hi := bounds([]float64{2, 2})
	if !(lo < 2 && hi > 2) {
		t.Fatalf("flat series not padded: %v %v", lo, hi)
	}
	lo, hi = bounds(nil)
	if lo != 0 || hi != 1 {
		t.Fatalf("empty bounds %v %v", lo, hi)
	}
}

func TestLoadPlotFontMissingFile(t *testing.T) {
	if _, err := LoadPlotFont(t.TempDir()+"/missing.ttf", 12); err == nil {
		t.Fatalf("expected error for missing font")
	}
}
