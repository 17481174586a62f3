package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

const (
	plotWidth  = 640
	plotHeight = 480
	plotMargin = 64.0
	plotTicks  = 5
)

var (
	plotLineColor = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	plotAxisColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

type PlotService interface {
	// DatasetImage draws the first series of the dataset as a PNG line plot
	// with markers. Single-valued datasets are drawn against point index.
	DatasetImage(ctx context.Context, id uuid.UUID) (*Download, error)
}

type plotService struct {
	log      *logger.Logger
	datasets repos.DatasetRepo
	face     font.Face
	metrics  *observability.Metrics
}

// NewPlotService uses face for every label; a nil face falls back to the
// built-in 7x13 bitmap font.
func NewPlotService(log *logger.Logger, datasets repos.DatasetRepo, face font.Face, metrics *observability.Metrics) PlotService {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &plotService{
		log:      log.With("service", "PlotService"),
		datasets: datasets,
		face:     face,
		metrics:  metrics,
	}
}

// LoadPlotFont parses a TrueType font file for plot labels.
func LoadPlotFont(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func (s *plotService) DatasetImage(ctx context.Context, id uuid.UUID) (*Download, error) {
	ds, err := s.datasets.GetWithSeries(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		s.metrics.ObserveDownload("dataset_image", "error", 0)
		return nil, err
	}
	if ds == nil {
		s.metrics.ObserveDownload("dataset_image", "not_found", 0)
		return nil, notFound("dataset", id)
	}
	xs, ys := seriesPoints(ds)
	var buf bytes.Buffer
	if err := s.render(&buf, ds, xs, ys); err != nil {
		s.metrics.ObserveDownload("dataset_image", "error", 0)
		return nil, err
	}
	s.metrics.ObserveDownload("dataset_image", "ok", buf.Len())
	return &Download{Filename: "image.png", ContentType: contentTypePNG, Body: buf.Bytes()}, nil
}

func seriesPoints(ds *types.Dataset) (xs, ys []float64) {
	if len(ds.Dataseries) == 0 {
		return nil, nil
	}
	paired := ds.Paired()
	for i, dp := range ds.Dataseries[0].Datapoints {
		y, _ := dp.Value(catalog.QualifierPrimary)
		x := float64(i + 1)
		if paired {
			x, _ = dp.Value(catalog.QualifierSecondary)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

func axisLabel(p *types.Property, u *types.Unit) string {
	if p == nil {
		return ""
	}
	if u == nil {
		return p.Name
	}
	return p.Name + ", " + u.Label
}

// bounds returns a non-empty [lo, hi] around vals padded by 5%.
func bounds(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 1
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.05, 0.5)
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func (s *plotService) render(buf *bytes.Buffer, ds *types.Dataset, xs, ys []float64) error {
	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(s.face)

	left, top := plotMargin, plotMargin*0.75
	right, bottom := float64(plotWidth)-plotMargin*0.5, float64(plotHeight)-plotMargin
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	px := func(v float64) float64 { return left + (v-xlo)/(xhi-xlo)*(right-left) }
	py := func(v float64) float64 { return bottom - (v-ylo)/(yhi-ylo)*(bottom-top) }

	dc.SetColor(plotAxisColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, right-left, bottom-top)
	dc.Stroke()
	for i := 0; i <= plotTicks; i++ {
		xv := xlo + (xhi-xlo)*float64(i)/plotTicks
		yv := ylo + (yhi-ylo)*float64(i)/plotTicks
		dc.DrawLine(px(xv), bottom, px(xv), bottom+4)
		dc.DrawLine(left-4, py(yv), left, py(yv))
		dc.Stroke()
		dc.DrawStringAnchored(tickLabel(xv), px(xv), bottom+8, 0.5, 1)
		dc.DrawStringAnchored(tickLabel(yv), left-8, py(yv), 1, 0.35)
	}

	dc.DrawStringAnchored(ds.Label, float64(plotWidth)/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored(xAxisLabel(ds), (left+right)/2, float64(plotHeight)-plotMargin*0.3, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), plotMargin*0.25, (top+bottom)/2)
	dc.DrawStringAnchored(axisLabel(ds.PrimaryProperty, ds.PrimaryUnit), plotMargin*0.25, (top+bottom)/2, 0.5, 0.5)
	dc.Pop()

	dc.SetColor(plotLineColor)
	dc.SetLineWidth(0.5)
	for i := range xs {
		if i == 0 {
			dc.MoveTo(px(xs[i]), py(ys[i]))
			continue
		}
		dc.LineTo(px(xs[i]), py(ys[i]))
	}
	dc.Stroke()
	for i := range xs {
		dc.DrawCircle(px(xs[i]), py(ys[i]), 3)
		dc.Fill()
	}

	if err := dc.EncodePNG(buf); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func xAxisLabel(ds *types.Dataset) string {
	if !ds.Paired() {
		return "data point"
	}
	return axisLabel(ds.SecondaryProperty, ds.SecondaryUnit)
}

func tickLabel(v float64) string {
	s := fmt.Sprintf("%.3g", v)
	if strings.Contains(s, "e") {
		return fmt.Sprintf("%.2e", v)
	}
	return s
}
