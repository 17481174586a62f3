package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/observability"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// EntryInput holds the references every legacy entry carries.
type EntryInput struct {
	SystemID          uuid.UUID
	PublicationID     uuid.UUID
	PhaseID           uuid.UUID
	SynthesisMethodID *uuid.UUID
	Temperature       string
}

type AtomicPositionsInput struct {
	EntryInput
	A, B, C            string
	Alpha, Beta, Gamma string
	Volume, Z          string
	// File is stored as the system's atomic positions input file.
	File               *Upload
}

type ExcitonEmissionInput struct {
	EntryInput
	Peak string
	// Files are stored under the photoluminescence prefix keeping their extension.
	Files []Upload
}

type SynthesisInput struct {
	EntryInput
	SynthesisMethod   string
	StartingMaterials string
	Remarks           string
	Product           string
}

type BandStructureInput struct {
	EntryInput
	BandGap    string
	Files      []Upload
	ControlIn  *Upload
	GeometryIn *Upload
}

type MaterialPropertyInput struct {
	EntryInput
	Property string
	Value    string
}

// EntryUpdate carries the new values of one entry; only the field matching
// the entry kind is read. Uploaded files are not replaced by an update.
type EntryUpdate struct {
	AtomicPositions  *AtomicPositionsInput
	ExcitonEmission  *ExcitonEmissionInput
	Synthesis        *SynthesisInput
	BandStructure    *BandStructureInput
	MaterialProperty *MaterialPropertyInput
}

func (u EntryUpdate) base(kind catalog.EntryKind) (EntryInput, bool) {
	switch {
	case kind == catalog.EntryAtomicPositions && u.AtomicPositions != nil:
		return u.AtomicPositions.EntryInput, true
	case kind == catalog.EntryExcitonEmission && u.ExcitonEmission != nil:
		return u.ExcitonEmission.EntryInput, true
	case kind == catalog.EntrySynthesis && u.Synthesis != nil:
		return u.Synthesis.EntryInput, true
	case kind == catalog.EntryBandStructure && u.BandStructure != nil:
		return u.BandStructure.EntryInput, true
	case kind == catalog.EntryMaterialProperty && u.MaterialProperty != nil:
		return u.MaterialProperty.EntryInput, true
	}
	return EntryInput{}, false
}

type EntryResult struct {
	ID          uuid.UUID
	Kind        catalog.EntryKind
	FailedFiles []string
}

func (r *EntryResult) Text() string {
	return TextSaveSuccess + failedFilesText(r.FailedFiles)
}

// SystemEntries lists one entry kind for a system.
type SystemEntries struct {
	System             *types.System               `json:"system"`
	Kind               catalog.EntryKind           `json:"kind"`
	AtomicPositions    []*types.AtomicPositions    `json:"atomic_positions,omitempty"`
	ExcitonEmission    []*types.ExcitonEmission    `json:"exciton_emission,omitempty"`
	Synthesis          []*types.SynthesisMethodOld `json:"synthesis,omitempty"`
	BandStructures     []*types.BandStructure      `json:"band_structures,omitempty"`
	MaterialProperties []*types.MaterialProperty   `json:"material_properties,omitempty"`
}

// SystemOverview is the detail page of a system reached from an exciton
// emission search hit.
type SystemOverview struct {
	System          *types.System             `json:"system"`
	ExcitonEmission *types.ExcitonEmission    `json:"exciton_emission"`
	AtomicPositions *types.AtomicPositions    `json:"atomic_positions"`
	Synthesis       *types.SynthesisMethodOld `json:"synthesis"`
	BandStructure   *types.BandStructure      `json:"band_structure"`
}

type OverviewIDs struct {
	AtomicPositions uuid.UUID
	Synthesis       uuid.UUID
	ExcitonEmission uuid.UUID
	BandStructure   uuid.UUID
}

type EntryService interface {
	AddAtomicPositions(ctx context.Context, actor Actor, in AtomicPositionsInput) (*EntryResult, error)
	AddExcitonEmission(ctx context.Context, actor Actor, in ExcitonEmissionInput) (*EntryResult, error)
	AddSynthesis(ctx context.Context, actor Actor, in SynthesisInput) (*EntryResult, error)
	AddBandStructure(ctx context.Context, actor Actor, in BandStructureInput) (*EntryResult, error)
	AddMaterialProperty(ctx context.Context, actor Actor, in MaterialPropertyInput) (*EntryResult, error)

	ListEntries(ctx context.Context, systemID uuid.UUID, kind catalog.EntryKind) (*SystemEntries, error)
	Overview(ctx context.Context, systemID uuid.UUID, ids OverviewIDs) (*SystemOverview, error)
	UpdateEntry(ctx context.Context, actor Actor, kind catalog.EntryKind, id uuid.UUID, in EntryUpdate) (*EntryResult, error)
	DeleteEntry(ctx context.Context, actor Actor, kind catalog.EntryKind, id uuid.UUID) error
}

type entryService struct {
	db        *gorm.DB
	log       *logger.Logger
	systems   repos.SystemRepo
	pubs      repos.PublicationRepo
	vocab     repos.VocabularyRepo
	entries   repos.EntryRepo
	events    repos.EventRepo
	store     filestore.FileStore
	files     fileSaver
	publisher publisher
	metrics   *observability.Metrics
	clock     Clock
}

func NewEntryService(
	db *gorm.DB,
	log *logger.Logger,
	systems repos.SystemRepo,
	pubs repos.PublicationRepo,
	vocab repos.VocabularyRepo,
	entries repos.EntryRepo,
	events repos.EventRepo,
	store filestore.FileStore,
	bus eventbus.Bus,
	metrics *observability.Metrics,
	clock Clock,
) EntryService {
	serviceLog := log.With("service", "EntryService")
	return &entryService{
		db:        db,
		log:       serviceLog,
		systems:   systems,
		pubs:      pubs,
		vocab:     vocab,
		entries:   entries,
		events:    events,
		store:     store,
		files:     fileSaver{store: store, log: serviceLog, metrics: metrics},
		publisher: publisher{bus: bus, log: serviceLog, metrics: metrics},
		metrics:   metrics,
		clock:     clock,
	}
}

// CorrectTemperature drops a trailing unit letter from a temperature typed
// into a form ("300 K" becomes "300").
func CorrectTemperature(t string) string {
	t = clean(t)
	if strings.HasSuffix(t, "K") || strings.HasSuffix(t, "C") {
		return strings.TrimSpace(t[:len(t)-1])
	}
	return t
}

const unknownTemperatureRank = 9999999

// TemperatureRank orders entries by their free-text temperature: the whole
// value when it is an integer, else its first run of digits, else last.
func TemperatureRank(t string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
		return n
	}
	run := ""
	for _, c := range t {
		if c >= '0' && c <= '9' {
			run += string(c)
			continue
		}
		if run != "" {
			break
		}
	}
	if run == "" {
		return unknownTemperatureRank
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return unknownTemperatureRank
	}
	return n
}

// refs are the rows an entry points at, loaded inside the write transaction.
type refs struct {
	system *types.System
	phase  *types.Phase
}

func (s *entryService) resolveRefs(dbc dbctx.Context, in EntryInput) (*refs, error) {
	if in.SystemID == uuid.Nil {
		return nil, invalid(KindMissingReference, "system")
	}
	if in.PublicationID == uuid.Nil {
		return nil, invalid(KindMissingReference, "publication")
	}
	sys, err := s.systems.GetByID(dbc, in.SystemID)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	if sys == nil {
		return nil, invalid(KindMissingReference, "system")
	}
	pub, err := s.pubs.GetByID(dbc, in.PublicationID)
	if err != nil {
		return nil, fmt.Errorf("load publication: %w", err)
	}
	if pub == nil {
		return nil, invalid(KindMissingReference, "publication")
	}
	phase, err := s.vocab.GetPhaseByID(dbc, in.PhaseID)
	if err != nil {
		return nil, fmt.Errorf("load phase: %w", err)
	}
	if phase == nil {
		return nil, invalid(KindMissingReference, "phase")
	}
	return &refs{system: sys, phase: phase}, nil
}

// synthesisRef keeps a related synthesis id only when it names a stored row.
func (s *entryService) synthesisRef(dbc dbctx.Context, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	row, err := s.entries.GetSynthesis(dbc, *id)
	if err != nil {
		return nil, fmt.Errorf("load synthesis method: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return &row.ID, nil
}

// create runs build inside one transaction together with the audit event and
// publishes the event once committed.
func (s *entryService) create(
	ctx context.Context,
	actor Actor,
	kind catalog.EntryKind,
	in EntryInput,
	build func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error),
) (uuid.UUID, *refs, error) {
	var (
		id  uuid.UUID
		r   *refs
		evt *types.CatalogEvent
	)
	now := s.clock.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		if r, err = s.resolveRefs(dbc, in); err != nil {
			return err
		}
		if id, err = build(dbc, r, catalog.Attributed(actor.UserID, now)); err != nil {
			return err
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventEntryCreated,
			SubjectID: id,
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{"kind": string(kind), "system_id": r.system.ID.String()}),
			CreatedAt: now,
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		s.metrics.IncSubmission(string(kind), outcomeOf(err))
		return uuid.Nil, nil, err
	}
	s.metrics.IncSubmission(string(kind), "success")
	s.publisher.publish(ctx, evt)
	return id, r, nil
}

func outcomeOf(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, ErrLoginRequired):
		return "unauthorized"
	default:
		return "error"
	}
}

func (s *entryService) AddAtomicPositions(ctx context.Context, actor Actor, in AtomicPositionsInput) (*EntryResult, error) {
	id, r, err := s.create(ctx, actor, catalog.EntryAtomicPositions, in.EntryInput, func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error) {
		syn, err := s.synthesisRef(dbc, in.SynthesisMethodID)
		if err != nil {
			return uuid.Nil, err
		}
		row := &types.AtomicPositions{
			SystemID:          r.system.ID,
			PublicationID:     in.PublicationID,
			PhaseID:           r.phase.ID,
			SynthesisMethodID: syn,
			Temperature:       CorrectTemperature(in.Temperature),
			A:                 clean(in.A),
			B:                 clean(in.B),
			C:                 clean(in.C),
			Alpha:             clean(in.Alpha),
			Beta:              clean(in.Beta),
			Gamma:             clean(in.Gamma),
			Volume:            clean(in.Volume),
			Z:                 clean(in.Z),
			Attribution:       attr,
		}
		if err := s.entries.Create(dbc, row); err != nil {
			return uuid.Nil, fmt.Errorf("create atomic positions: %w", err)
		}
		return row.ID, nil
	})
	if err != nil {
		return nil, err
	}
	res := &EntryResult{ID: id, Kind: catalog.EntryAtomicPositions}
	if in.File != nil {
		key := atomicPositionsKey(r.phase.Phase, r.system.Organic, r.system.Inorganic)
		res.FailedFiles = s.files.saveAs(ctx, key, *in.File)
	}
	return res, nil
}

func (s *entryService) AddExcitonEmission(ctx context.Context, actor Actor, in ExcitonEmissionInput) (*EntryResult, error) {
	peak, err := strconv.ParseFloat(clean(in.Peak), 64)
	if err != nil {
		return nil, invalid(KindInvalidNumber, "exciton_emission")
	}
	id, r, err := s.create(ctx, actor, catalog.EntryExcitonEmission, in.EntryInput, func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error) {
		syn, err := s.synthesisRef(dbc, in.SynthesisMethodID)
		if err != nil {
			return uuid.Nil, err
		}
		row := &types.ExcitonEmission{
			SystemID:          r.system.ID,
			PublicationID:     in.PublicationID,
			PhaseID:           r.phase.ID,
			SynthesisMethodID: syn,
			// Exciton temperatures are stored as typed.
			Temperature:     clean(in.Temperature),
			ExcitonEmission: peak,
			Attribution:     attr,
		}
		if err := s.entries.Create(dbc, row); err != nil {
			return uuid.Nil, fmt.Errorf("create exciton emission: %w", err)
		}
		return row.ID, nil
	})
	if err != nil {
		return nil, err
	}
	res := &EntryResult{ID: id, Kind: catalog.EntryExcitonEmission}
	prefix := photoluminescencePrefix(r.phase.Phase, r.system.Organic, r.system.Inorganic)
	for _, f := range in.Files {
		ext := strings.ToLower(path.Ext(f.baseName()))
		res.FailedFiles = append(res.FailedFiles, s.files.saveAs(ctx, "uploads/"+prefix+ext, f)...)
	}
	return res, nil
}

func (s *entryService) AddSynthesis(ctx context.Context, actor Actor, in SynthesisInput) (*EntryResult, error) {
	id, _, err := s.create(ctx, actor, catalog.EntrySynthesis, in.EntryInput, func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error) {
		row := &types.SynthesisMethodOld{
			SystemID:          r.system.ID,
			PublicationID:     in.PublicationID,
			PhaseID:           r.phase.ID,
			Temperature:       CorrectTemperature(in.Temperature),
			SynthesisMethod:   clean(in.SynthesisMethod),
			StartingMaterials: clean(in.StartingMaterials),
			Remarks:           clean(in.Remarks),
			Product:           clean(in.Product),
			Attribution:       attr,
		}
		if err := s.entries.Create(dbc, row); err != nil {
			return uuid.Nil, fmt.Errorf("create synthesis method: %w", err)
		}
		return row.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return &EntryResult{ID: id, Kind: catalog.EntrySynthesis}, nil
}

// AddBandStructure stores the row first so its id can name the folder that
// receives the calculation files.
func (s *entryService) AddBandStructure(ctx context.Context, actor Actor, in BandStructureInput) (*EntryResult, error) {
	var folder string
	id, _, err := s.create(ctx, actor, catalog.EntryBandStructure, in.EntryInput, func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error) {
		syn, err := s.synthesisRef(dbc, in.SynthesisMethodID)
		if err != nil {
			return uuid.Nil, err
		}
		row := &types.BandStructure{
			SystemID:          r.system.ID,
			PublicationID:     in.PublicationID,
			PhaseID:           r.phase.ID,
			SynthesisMethodID: syn,
			Temperature:       CorrectTemperature(in.Temperature),
			BandGap:           clean(in.BandGap),
			Attribution:       attr,
		}
		if err := s.entries.Create(dbc, row); err != nil {
			return uuid.Nil, fmt.Errorf("create band structure: %w", err)
		}
		folder = catalog.BandStructureFolder(r.phase.Phase, r.system.Organic, r.system.Inorganic, row.ID)
		if err := s.entries.SetBandStructureFolder(dbc, row.ID, folder); err != nil {
			return uuid.Nil, fmt.Errorf("set band structure folder: %w", err)
		}
		return row.ID, nil
	})
	if err != nil {
		return nil, err
	}
	uploads := append([]Upload{}, in.Files...)
	for _, u := range []*Upload{in.ControlIn, in.GeometryIn} {
		if u != nil {
			uploads = append(uploads, *u)
		}
	}
	return &EntryResult{
		ID:          id,
		Kind:        catalog.EntryBandStructure,
		FailedFiles: s.files.saveAll(ctx, folder, uploads),
	}, nil
}

func (s *entryService) AddMaterialProperty(ctx context.Context, actor Actor, in MaterialPropertyInput) (*EntryResult, error) {
	if clean(in.Property) == "" {
		return nil, invalid(KindMissingField, "property")
	}
	id, _, err := s.create(ctx, actor, catalog.EntryMaterialProperty, in.EntryInput, func(dbc dbctx.Context, r *refs, attr types.Attribution) (uuid.UUID, error) {
		row := &types.MaterialProperty{
			SystemID:      r.system.ID,
			PublicationID: in.PublicationID,
			PhaseID:       r.phase.ID,
			Temperature:   CorrectTemperature(in.Temperature),
			Property:      clean(in.Property),
			Value:         clean(in.Value),
			Attribution:   attr,
		}
		if err := s.entries.Create(dbc, row); err != nil {
			return uuid.Nil, fmt.Errorf("create material property: %w", err)
		}
		return row.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return &EntryResult{ID: id, Kind: catalog.EntryMaterialProperty}, nil
}

func (s *entryService) ListEntries(ctx context.Context, systemID uuid.UUID, kind catalog.EntryKind) (*SystemEntries, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("entry kind %q: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	sys, err := s.systems.GetByID(dbc, systemID)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	if sys == nil {
		return nil, fmt.Errorf("system %s: %w", systemID, pkgerrors.ErrNotFound)
	}
	out := &SystemEntries{System: sys, Kind: kind}
	switch kind {
	case catalog.EntryAtomicPositions:
		out.AtomicPositions, err = s.entries.ListAtomicPositions(dbc, systemID)
		sort.SliceStable(out.AtomicPositions, func(i, j int) bool {
			return TemperatureRank(out.AtomicPositions[i].Temperature) < TemperatureRank(out.AtomicPositions[j].Temperature)
		})
	case catalog.EntryExcitonEmission:
		out.ExcitonEmission, err = s.entries.ListExcitonEmission(dbc, systemID)
	case catalog.EntrySynthesis:
		out.Synthesis, err = s.entries.ListSynthesis(dbc, systemID)
	case catalog.EntryBandStructure:
		out.BandStructures, err = s.entries.ListBandStructures(dbc, systemID)
	case catalog.EntryMaterialProperty:
		out.MaterialProperties, err = s.entries.ListMaterialProperties(dbc, systemID)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return out, nil
}

// Overview loads the requested entries of a system. Only the exciton emission
// is mandatory; the others resolve to nil when the system has none of that kind.
func (s *entryService) Overview(ctx context.Context, systemID uuid.UUID, ids OverviewIDs) (*SystemOverview, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sys, err := s.systems.GetByID(dbc, systemID)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	if sys == nil {
		return nil, fmt.Errorf("system %s: %w", systemID, pkgerrors.ErrNotFound)
	}
	ee, err := s.entries.GetExcitonEmission(dbc, ids.ExcitonEmission)
	if err != nil {
		return nil, fmt.Errorf("load exciton emission: %w", err)
	}
	if ee == nil || ee.SystemID != systemID {
		return nil, fmt.Errorf("exciton emission %s: %w", ids.ExcitonEmission, pkgerrors.ErrNotFound)
	}
	out := &SystemOverview{System: sys, ExcitonEmission: ee}
	if out.AtomicPositions, err = s.entries.GetAtomicPositions(dbc, ids.AtomicPositions); err != nil {
		return nil, err
	}
	if out.Synthesis, err = s.entries.GetSynthesis(dbc, ids.Synthesis); err != nil {
		return nil, err
	}
	if out.BandStructure, err = s.entries.GetBandStructure(dbc, ids.BandStructure); err != nil {
		return nil, err
	}
	if out.AtomicPositions != nil && out.AtomicPositions.SystemID != systemID {
		out.AtomicPositions = nil
	}
	if out.Synthesis != nil && out.Synthesis.SystemID != systemID {
		out.Synthesis = nil
	}
	if out.BandStructure != nil && out.BandStructure.SystemID != systemID {
		out.BandStructure = nil
	}
	return out, nil
}

// UpdateEntry rewrites the fields of an existing entry with the same rules
// its Add operation applies. The band structure folder keeps its name.
func (s *entryService) UpdateEntry(ctx context.Context, actor Actor, kind catalog.EntryKind, id uuid.UUID, in EntryUpdate) (*EntryResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("entry kind %q: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	base, ok := in.base(kind)
	if !ok {
		return nil, fmt.Errorf("update carries no %s values: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	var peak float64
	switch kind {
	case catalog.EntryExcitonEmission:
		v, err := strconv.ParseFloat(clean(in.ExcitonEmission.Peak), 64)
		if err != nil {
			return nil, invalid(KindInvalidNumber, "exciton_emission")
		}
		peak = v
	case catalog.EntryMaterialProperty:
		if clean(in.MaterialProperty.Property) == "" {
			return nil, invalid(KindMissingField, "property")
		}
	}

	var evt *types.CatalogEvent
	now := s.clock.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		r, err := s.resolveRefs(dbc, base)
		if err != nil {
			return err
		}
		row, err := s.loadForUpdate(dbc, kind, id)
		if err != nil {
			return err
		}
		switch e := row.(type) {
		case *types.AtomicPositions:
			p := in.AtomicPositions
			if e.SynthesisMethodID, err = s.synthesisRef(dbc, p.SynthesisMethodID); err != nil {
				return err
			}
			e.SystemID, e.PublicationID, e.PhaseID = r.system.ID, base.PublicationID, r.phase.ID
			e.Temperature = CorrectTemperature(p.Temperature)
			e.A, e.B, e.C = clean(p.A), clean(p.B), clean(p.C)
			e.Alpha, e.Beta, e.Gamma = clean(p.Alpha), clean(p.Beta), clean(p.Gamma)
			e.Volume, e.Z = clean(p.Volume), clean(p.Z)
			e.Touch(actor.UserID, now)
		case *types.ExcitonEmission:
			if e.SynthesisMethodID, err = s.synthesisRef(dbc, in.ExcitonEmission.SynthesisMethodID); err != nil {
				return err
			}
			e.SystemID, e.PublicationID, e.PhaseID = r.system.ID, base.PublicationID, r.phase.ID
			e.Temperature = clean(in.ExcitonEmission.Temperature)
			e.ExcitonEmission = peak
			e.Touch(actor.UserID, now)
		case *types.SynthesisMethodOld:
			p := in.Synthesis
			e.SystemID, e.PublicationID, e.PhaseID = r.system.ID, base.PublicationID, r.phase.ID
			e.Temperature = CorrectTemperature(p.Temperature)
			e.SynthesisMethod = clean(p.SynthesisMethod)
			e.StartingMaterials = clean(p.StartingMaterials)
			e.Remarks = clean(p.Remarks)
			e.Product = clean(p.Product)
			e.Touch(actor.UserID, now)
		case *types.BandStructure:
			if e.SynthesisMethodID, err = s.synthesisRef(dbc, in.BandStructure.SynthesisMethodID); err != nil {
				return err
			}
			e.SystemID, e.PublicationID, e.PhaseID = r.system.ID, base.PublicationID, r.phase.ID
			e.Temperature = CorrectTemperature(in.BandStructure.Temperature)
			e.BandGap = clean(in.BandStructure.BandGap)
			e.Touch(actor.UserID, now)
		case *types.MaterialProperty:
			p := in.MaterialProperty
			e.SystemID, e.PublicationID, e.PhaseID = r.system.ID, base.PublicationID, r.phase.ID
			e.Temperature = CorrectTemperature(p.Temperature)
			e.Property = clean(p.Property)
			e.Value = clean(p.Value)
			e.Touch(actor.UserID, now)
		}
		if err := s.entries.Update(dbc, row); err != nil {
			return fmt.Errorf("update %s: %w", kind, err)
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventEntryUpdated,
			SubjectID: id,
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{"kind": string(kind), "system_id": r.system.ID.String()}),
			CreatedAt: now,
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.publish(ctx, evt)
	return &EntryResult{ID: id, Kind: kind}, nil
}

// loadForUpdate returns the stored row of kind without its preloaded
// associations, or a not found error.
func (s *entryService) loadForUpdate(dbc dbctx.Context, kind catalog.EntryKind, id uuid.UUID) (any, error) {
	var (
		row     any
		missing bool
		err     error
	)
	switch kind {
	case catalog.EntryAtomicPositions:
		var e *types.AtomicPositions
		if e, err = s.entries.GetAtomicPositions(dbc, id); e != nil {
			e.System, e.Publication, e.Phase = nil, nil, nil
		}
		row, missing = e, e == nil
	case catalog.EntryExcitonEmission:
		var e *types.ExcitonEmission
		if e, err = s.entries.GetExcitonEmission(dbc, id); e != nil {
			e.System, e.Publication, e.Phase = nil, nil, nil
		}
		row, missing = e, e == nil
	case catalog.EntrySynthesis:
		var e *types.SynthesisMethodOld
		if e, err = s.entries.GetSynthesis(dbc, id); e != nil {
			e.System, e.Publication, e.Phase = nil, nil, nil
		}
		row, missing = e, e == nil
	case catalog.EntryBandStructure:
		var e *types.BandStructure
		if e, err = s.entries.GetBandStructure(dbc, id); e != nil {
			e.System, e.Publication, e.Phase = nil, nil, nil
		}
		row, missing = e, e == nil
	case catalog.EntryMaterialProperty:
		var e *types.MaterialProperty
		if e, err = s.entries.GetMaterialProperty(dbc, id); e != nil {
			e.System, e.Publication, e.Phase = nil, nil, nil
		}
		row, missing = e, e == nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	if missing {
		return nil, notFound(string(kind), id)
	}
	return row, nil
}

func (s *entryService) DeleteEntry(ctx context.Context, actor Actor, kind catalog.EntryKind, id uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("entry kind %q: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	var (
		folder string
		evt    *types.CatalogEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if kind == catalog.EntryBandStructure {
			bs, err := s.entries.GetBandStructure(dbc, id)
			if err != nil {
				return fmt.Errorf("load band structure: %w", err)
			}
			if bs != nil {
				folder = bs.FolderLocation
			}
		}
		if err := s.entries.Delete(dbc, kind, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s %s: %w", kind, id, pkgerrors.ErrNotFound)
			}
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventEntryDeleted,
			SubjectID: id,
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{"kind": string(kind)}),
			CreatedAt: s.clock.now(),
		}
		_, err := s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		return err
	}
	if folder != "" {
		if err := s.store.DeletePrefix(ctx, folder); err != nil {
			s.log.Warn("Failed to remove band structure files", "folder", folder, "error", err)
		}
	}
	s.publisher.publish(ctx, evt)
	return nil
}
