package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/observability"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// DownloadKind selects one of the entry downloads.
type DownloadKind string

const (
	DownloadAtomicPositions    DownloadKind = "atomic_positions"
	DownloadAllAtomicPositions DownloadKind = "all_atomic_positions"
	DownloadExcitonEmission    DownloadKind = "exciton_emission"
	DownloadSynthesis          DownloadKind = "synthesis"
	DownloadBandGap            DownloadKind = "band_gap"
	DownloadBandStructure      DownloadKind = "band_structure"
	DownloadInputFiles         DownloadKind = "input_files"
)

type ExportService interface {
	// EntryDownload renders one entry as a text file or zip archive. For
	// DownloadAllAtomicPositions id names the system.
	EntryDownload(ctx context.Context, kind DownloadKind, id uuid.UUID) (*Download, error)
	DatasetFiles(ctx context.Context, id uuid.UUID) (*Download, error)
	DatasetData(ctx context.Context, id uuid.UUID) (*Download, error)
}

type exportService struct {
	log      *logger.Logger
	systems  repos.SystemRepo
	entries  repos.EntryRepo
	datasets repos.DatasetRepo
	store    filestore.FileStore
	metrics  *observability.Metrics
	clock    Clock
}

func NewExportService(
	log *logger.Logger,
	systems repos.SystemRepo,
	entries repos.EntryRepo,
	datasets repos.DatasetRepo,
	store filestore.FileStore,
	metrics *observability.Metrics,
	clock Clock,
) ExportService {
	return &exportService{
		log:      log.With("service", "ExportService"),
		systems:  systems,
		entries:  entries,
		datasets: datasets,
		store:    store,
		metrics:  metrics,
		clock:    clock,
	}
}

func (s *exportService) EntryDownload(ctx context.Context, kind DownloadKind, id uuid.UUID) (*Download, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var (
		dl  *Download
		err error
	)
	switch kind {
	case DownloadAtomicPositions:
		dl, err = s.atomicPositions(dbc, id)
	case DownloadAllAtomicPositions:
		dl, err = s.allAtomicPositions(dbc, id)
	case DownloadExcitonEmission:
		dl, err = s.excitonEmission(dbc, id)
	case DownloadSynthesis:
		dl, err = s.synthesis(dbc, id)
	case DownloadBandGap:
		dl, err = s.bandGap(dbc, id)
	case DownloadBandStructure:
		dl, err = s.bandStructure(dbc, id)
	case DownloadInputFiles:
		dl, err = s.inputFiles(dbc, id)
	default:
		err = fmt.Errorf("download kind %q: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	s.observe(string(kind), dl, err)
	return dl, err
}

func (s *exportService) observe(kind string, dl *Download, err error) {
	switch {
	case err == nil:
		s.metrics.ObserveDownload(kind, "ok", len(dl.Body))
	case errors.Is(err, pkgerrors.ErrNotFound):
		s.metrics.ObserveDownload(kind, "not_found", 0)
	default:
		s.metrics.ObserveDownload(kind, "error", 0)
	}
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, pkgerrors.ErrNotFound)
}

func phaseName(p *types.Phase) string {
	if p == nil {
		return ""
	}
	return p.Phase
}

func (s *exportService) atomicPositions(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	ap, err := s.entries.GetAtomicPositions(dbc, id)
	if err != nil {
		return nil, err
	}
	if ap == nil || ap.System == nil {
		return nil, notFound("atomic positions", id)
	}
	sys, phase := ap.System, phaseName(ap.Phase)
	var b strings.Builder
	writeDownloadHeader(&b, headerOf(sys, ap.Phase, ap.Publication, ap.Temperature), headerStyle{banner: true, systemLine: true})
	writeLattice(&b, ap)
	if err := s.copyLines(dbc.Ctx, &b, atomicPositionsKey(phase, sys.Organic, sys.Inorganic)); err != nil {
		return nil, err
	}
	return &Download{
		Filename:    entryPrefix(phase, sys.Organic, sys.Inorganic) + "_" + string(DownloadAtomicPositions) + ".in",
		ContentType: contentTypeAims,
		Body:        []byte(b.String()),
	}, nil
}

// copyLines appends the stored file line by line, or the placeholder line
// when the file was never uploaded.
func (s *exportService) copyLines(ctx context.Context, b *strings.Builder, key string) error {
	rc, err := s.store.Open(ctx, key)
	if errors.Is(err, filestore.ErrNotExist) {
		b.WriteString(missingAposLine)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		b.WriteString(strings.TrimSuffix(sc.Text(), "\r"))
		b.WriteString("\n")
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return nil
}

func (s *exportService) allAtomicPositions(dbc dbctx.Context, systemID uuid.UUID) (*Download, error) {
	sys, err := s.systems.GetByID(dbc, systemID)
	if err != nil {
		return nil, err
	}
	if sys == nil {
		return nil, notFound("system", systemID)
	}
	list, err := s.entries.ListAtomicPositions(dbc, systemID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("atomic positions for system %s: %w", systemID, pkgerrors.ErrNotFound)
	}
	var b strings.Builder
	writeSystemBanner(&b, sys.CompoundName)
	for _, ap := range list {
		writeDownloadHeader(&b, headerOf(sys, ap.Phase, ap.Publication, ap.Temperature), headerStyle{})
		writeLattice(&b, ap)
	}
	last := phaseName(list[len(list)-1].Phase)
	return &Download{
		Filename:    entryPrefix(last, sys.Organic, sys.Inorganic) + "_ALL.in",
		ContentType: contentTypeAims,
		Body:        []byte(b.String()),
	}, nil
}

func (s *exportService) excitonEmission(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	ee, err := s.entries.GetExcitonEmission(dbc, id)
	if err != nil {
		return nil, err
	}
	if ee == nil || ee.System == nil {
		return nil, notFound("exciton emission", id)
	}
	sys := ee.System
	prefix := photoluminescencePrefix(phaseName(ee.Phase), sys.Organic, sys.Inorganic)

	var meta strings.Builder
	writeMetaHeader(&meta, databaseBanner, headerOf(sys, ee.Phase, ee.Publication, ee.Temperature))
	meta.WriteString("\n#Exciton Emission Peak: ")
	meta.WriteString(pythonFloat(ee.ExcitonEmission))

	a := newArchive(prefix, s.clock.now())
	if err := a.addBytes(prefix+".txt", []byte(meta.String())); err != nil {
		return nil, err
	}
	for _, ext := range []string{".csv", ".html"} {
		if _, err := a.addStored(dbc.Ctx, s.store, s.log, "uploads/"+prefix+ext); err != nil {
			return nil, err
		}
	}
	return s.zipDownload(a, prefix)
}

func (s *exportService) synthesis(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	syn, err := s.entries.GetSynthesis(dbc, id)
	if err != nil {
		return nil, err
	}
	if syn == nil || syn.System == nil {
		return nil, notFound("synthesis method", id)
	}
	sys := syn.System
	var b strings.Builder
	writeMetaHeader(&b, databaseBanner, headerOf(sys, syn.Phase, syn.Publication, syn.Temperature))
	writeSynthesisSections(&b, syn)
	return &Download{
		Filename:    entryPrefix(phaseName(syn.Phase), sys.Organic, sys.Inorganic) + "_syn.txt",
		ContentType: contentTypeText,
		Body:        []byte(b.String()),
	}, nil
}

func (s *exportService) loadBandStructure(dbc dbctx.Context, id uuid.UUID) (*types.BandStructure, error) {
	bs, err := s.entries.GetBandStructure(dbc, id)
	if err != nil {
		return nil, err
	}
	if bs == nil || bs.System == nil {
		return nil, notFound("band structure", id)
	}
	if bs.FolderLocation == "" {
		bs.FolderLocation = catalog.BandStructureFolder(phaseName(bs.Phase), bs.System.Organic, bs.System.Inorganic, bs.ID)
	}
	return bs, nil
}

func (s *exportService) bandGap(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	bs, err := s.loadBandStructure(dbc, id)
	if err != nil {
		return nil, err
	}
	sys := bs.System
	var b strings.Builder
	writeBandGap(&b, bs.BandGap)
	writeDownloadHeader(&b, headerOf(sys, bs.Phase, bs.Publication, bs.Temperature), headerStyle{systemLine: true})
	return &Download{
		Filename:    entryPrefix(phaseName(bs.Phase), sys.Organic, sys.Inorganic) + "_bg.txt",
		ContentType: contentTypeText,
		Body:        []byte(b.String()),
	}, nil
}

func (s *exportService) bandStructure(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	bs, err := s.loadBandStructure(dbc, id)
	if err != nil {
		return nil, err
	}
	sys := bs.System
	folder := bs.FolderLocation
	prefix := fmt.Sprintf("%s_%s", entryPrefix(phaseName(bs.Phase), sys.Organic, sys.Inorganic), bs.ID) + "_bs"

	var meta strings.Builder
	writeMetaHeader(&meta, databaseBannerASCII, headerOf(sys, bs.Phase, bs.Publication, bs.Temperature))

	dir := path.Base(folder)
	a := newArchive(dir, s.clock.now())
	if err := a.addBytes(prefix+".txt", []byte(meta.String())); err != nil {
		return nil, err
	}
	for _, img := range []string{prefix + "_full.png", prefix + "_min.png"} {
		if _, err := a.addStored(dbc.Ctx, s.store, s.log, filestore.Join(folder, img)); err != nil {
			return nil, err
		}
	}
	names, err := s.store.List(dbc.Ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	for _, name := range names {
		switch path.Ext(name) {
		case ".in", ".out", ".txt":
		default:
			continue
		}
		if _, err := a.addStored(dbc.Ctx, s.store, s.log, filestore.Join(folder, name)); err != nil {
			return nil, err
		}
	}
	return s.zipDownload(a, dir)
}

func (s *exportService) inputFiles(dbc dbctx.Context, id uuid.UUID) (*Download, error) {
	bs, err := s.loadBandStructure(dbc, id)
	if err != nil {
		return nil, err
	}
	dir := path.Base(bs.FolderLocation)
	a := newArchive(dir, s.clock.now())
	for _, name := range []string{"control.in", "geometry.in"} {
		if _, err := a.addStored(dbc.Ctx, s.store, s.log, filestore.Join(bs.FolderLocation, name)); err != nil {
			return nil, err
		}
	}
	return s.zipDownload(a, dir)
}

func (s *exportService) zipDownload(a *archive, name string) (*Download, error) {
	body, err := a.bytes()
	if err != nil {
		return nil, fmt.Errorf("close archive %s: %w", name, err)
	}
	return &Download{Filename: name + ".zip", ContentType: contentTypeZip, Body: body}, nil
}

// DatasetFiles zips every file stored for the dataset under "files/".
func (s *exportService) DatasetFiles(ctx context.Context, id uuid.UUID) (*Download, error) {
	dl, err := s.datasetFiles(ctx, id)
	s.observe("dataset_files", dl, err)
	return dl, err
}

func (s *exportService) datasetFiles(ctx context.Context, id uuid.UUID) (*Download, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ds, err := s.datasets.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, notFound("dataset", id)
	}
	dir := ds.UploadDir()
	names, err := s.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	a := newArchive("files", s.clock.now())
	for _, name := range names {
		if _, err := a.addStored(ctx, s.store, s.log, filestore.Join(dir, name)); err != nil {
			return nil, err
		}
	}
	return s.zipDownload(a, "files")
}

// DatasetData renders the first series as "x y" lines, or bare "y" lines
// when the dataset has no secondary property.
func (s *exportService) DatasetData(ctx context.Context, id uuid.UUID) (*Download, error) {
	dl, err := s.datasetData(ctx, id)
	s.observe("dataset_data", dl, err)
	return dl, err
}

func (s *exportService) datasetData(ctx context.Context, id uuid.UUID) (*Download, error) {
	ds, err := s.datasets.GetWithSeries(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, notFound("dataset", id)
	}
	var b strings.Builder
	if len(ds.Dataseries) > 0 {
		paired := ds.Paired()
		for _, dp := range ds.Dataseries[0].Datapoints {
			y, _ := dp.Value(catalog.QualifierPrimary)
			if paired {
				x, _ := dp.Value(catalog.QualifierSecondary)
				b.WriteString(pythonFloat(x) + " ")
			}
			b.WriteString(pythonFloat(y) + "\n")
		}
	}
	return &Download{Filename: "data.txt", ContentType: contentTypeText, Body: []byte(b.String())}, nil
}
