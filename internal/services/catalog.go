package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type SystemInput struct {
	CompoundName string `json:"compound_name" form:"compound_name"`
	Formula      string `json:"formula" form:"formula"`
	Group        string `json:"group" form:"group"`
	Organic      string `json:"organic" form:"organic"`
	Inorganic    string `json:"inorganic" form:"inorganic"`
	Description  string `json:"description" form:"description"`
}

func (in SystemInput) normalized() SystemInput {
	return SystemInput{
		CompoundName: clean(in.CompoundName),
		Formula:      clean(in.Formula),
		Group:        clean(in.Group),
		Organic:      clean(in.Organic),
		Inorganic:    clean(in.Inorganic),
		Description:  clean(in.Description),
	}
}

type AuthorInput struct {
	FirstName   string `json:"first_name" form:"first_name"`
	LastName    string `json:"last_name" form:"last_name"`
	Institution string `json:"institution" form:"institution"`
}

type PublicationInput struct {
	Title      string        `json:"title"`
	Journal    string        `json:"journal"`
	Volume     string        `json:"vol"`
	PagesStart string        `json:"pages_start"`
	PagesEnd   string        `json:"pages_end"`
	Year       string        `json:"year"`
	DOIISBN    string        `json:"doi_isbn"`
	Authors    []AuthorInput `json:"authors"`
}

// FormOptions feeds the dataset entry form.
type FormOptions struct {
	Publications   []*types.Publication `json:"publications"`
	Systems        []*types.System      `json:"systems"`
	Properties     []*types.Property    `json:"properties"`
	Units          []*types.Unit        `json:"units"`
	Phases         []*types.Phase       `json:"phases"`
	SpaceGroups    []*types.SpaceGroup  `json:"space_groups"`
	SampleTypes    []catalog.Choice     `json:"sample_types"`
	CrystalSystems []catalog.Choice     `json:"crystal_systems"`
}

func PropertyAddedText(name string) string {
	return `New property "` + name + `" successfully added to the database!`
}

func UnitAddedText(label string) string {
	return `New unit "` + label + `" successfully added to the database!`
}

func PhaseAddedText(phase string) string {
	return `New phase "` + phase + `" successfully added to the database!`
}

// CatalogService manages the reference entities contributors pick from:
// systems, publications with their authors, and the vocabulary tables.
type CatalogService interface {
	AddSystem(ctx context.Context, actor Actor, in SystemInput) (*types.System, error)
	UpdateSystem(ctx context.Context, actor Actor, id uuid.UUID, in SystemInput) (*types.System, error)
	GetSystem(ctx context.Context, id uuid.UUID) (*types.System, error)
	SearchSystems(ctx context.Context, text string) ([]*types.System, error)

	AddAuthor(ctx context.Context, actor Actor, in AuthorInput) (*types.Author, error)
	SearchAuthors(ctx context.Context, text string) ([]*types.Author, error)

	AddPublication(ctx context.Context, actor Actor, in PublicationInput) (*types.Publication, error)
	GetPublication(ctx context.Context, id uuid.UUID) (*types.Publication, error)
	SearchPublications(ctx context.Context, text string) ([]*types.Publication, error)

	AddProperty(ctx context.Context, actor Actor, name string) (*types.Property, error)
	AddUnit(ctx context.Context, actor Actor, label string) (*types.Unit, error)
	AddPhase(ctx context.Context, actor Actor, phase string) (*types.Phase, error)
	AddTag(ctx context.Context, actor Actor, tag string) (*types.Tag, error)
	FormOptions(ctx context.Context) (*FormOptions, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	systems    repos.SystemRepo
	pubs       repos.PublicationRepo
	authors    repos.AuthorRepo
	vocab      repos.VocabularyRepo
	events     repos.EventRepo
	choices    *vocabulary.Vocabulary
	clock      Clock
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	systems repos.SystemRepo,
	pubs repos.PublicationRepo,
	authors repos.AuthorRepo,
	vocab repos.VocabularyRepo,
	events repos.EventRepo,
	choices *vocabulary.Vocabulary,
	clock Clock,
) CatalogService {
	return &catalogService{
		db:      db,
		log:     log.With("service", "CatalogService"),
		systems: systems,
		pubs:    pubs,
		authors: authors,
		vocab:   vocab,
		events:  events,
		choices: choices,
		clock:   clock,
	}
}

func (s *catalogService) AddSystem(ctx context.Context, actor Actor, in SystemInput) (*types.System, error) {
	in = in.normalized()
	if in.CompoundName == "" {
		return nil, invalid(KindMissingField, "compound_name")
	}
	if in.Formula == "" {
		return nil, invalid(KindMissingField, "formula")
	}
	row := &types.System{
		CompoundName: in.CompoundName,
		Formula:      in.Formula,
		Group:        in.Group,
		Organic:      in.Organic,
		Inorganic:    in.Inorganic,
		Description:  in.Description,
		Attribution:  catalog.Attributed(actor.UserID, s.clock.now()),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := s.systems.ExistsByNameOrFormula(dbc, in.CompoundName, in.Formula)
		if err != nil {
			return fmt.Errorf("check system: %w", err)
		}
		if exists {
			return &ValidationError{Kind: KindDuplicate, Field: "compound_name", Msg: TextSystemExists}
		}
		if _, err := s.systems.Create(dbc, []*types.System{row}); err != nil {
			return fmt.Errorf("create system: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("System added", "system_id", row.ID, "actor_id", actor.UserID)
	return row, nil
}

func (s *catalogService) UpdateSystem(ctx context.Context, actor Actor, id uuid.UUID, in SystemInput) (*types.System, error) {
	in = in.normalized()
	if in.CompoundName == "" || in.Formula == "" {
		return nil, invalid(KindMissingField, "compound_name")
	}
	var out *types.System
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.systems.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load system: %w", err)
		}
		if row == nil {
			return fmt.Errorf("system %s: %w", id, pkgerrors.ErrNotFound)
		}
		row.CompoundName = in.CompoundName
		row.Formula = in.Formula
		row.Group = in.Group
		row.Organic = in.Organic
		row.Inorganic = in.Inorganic
		row.Description = in.Description
		row.Touch(actor.UserID, s.clock.now())
		if err := s.systems.Update(dbc, row); err != nil {
			return fmt.Errorf("update system: %w", err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) GetSystem(ctx context.Context, id uuid.UUID) (*types.System, error) {
	row, err := s.systems.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("system %s: %w", id, pkgerrors.ErrNotFound)
	}
	return row, nil
}

func (s *catalogService) SearchSystems(ctx context.Context, text string) ([]*types.System, error) {
	return s.systems.Search(dbctx.Context{Ctx: ctx}, clean(text))
}

func (s *catalogService) AddAuthor(ctx context.Context, actor Actor, in AuthorInput) (*types.Author, error) {
	first, last, inst := clean(in.FirstName), clean(in.LastName), clean(in.Institution)
	if first == "" || last == "" || inst == "" {
		return nil, invalid(KindMissingField, "author")
	}
	row := &types.Author{
		FirstName:   first,
		LastName:    last,
		Institution: inst,
		Attribution: catalog.Attributed(actor.UserID, s.clock.now()),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := s.authors.ExistsLike(dbc, first, last, inst)
		if err != nil {
			return fmt.Errorf("check author: %w", err)
		}
		if exists {
			return &ValidationError{Kind: KindDuplicate, Field: "author", Msg: TextAuthorExists}
		}
		_, err = s.authors.Create(dbc, []*types.Author{row})
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *catalogService) SearchAuthors(ctx context.Context, text string) ([]*types.Author, error) {
	return s.authors.Search(dbctx.Context{Ctx: ctx}, clean(text))
}

// AddPublication stores a publication and links its authors, reusing any
// author already present under the same names and institution.
func (s *catalogService) AddPublication(ctx context.Context, actor Actor, in PublicationInput) (*types.Publication, error) {
	for _, a := range in.Authors {
		if clean(a.FirstName) == "" || clean(a.LastName) == "" || clean(a.Institution) == "" {
			return nil, &ValidationError{Kind: KindIncomplete, Field: "authors", Msg: TextAuthorsIncomplete}
		}
	}
	if clean(in.Title) == "" {
		return nil, invalid(KindMissingField, "title")
	}
	now := s.clock.now()
	pub := &types.Publication{
		Title:       clean(in.Title),
		Journal:     clean(in.Journal),
		Volume:      clean(in.Volume),
		PagesStart:  clean(in.PagesStart),
		PagesEnd:    clean(in.PagesEnd),
		Year:        clean(in.Year),
		DOIISBN:     clean(in.DOIISBN),
		AuthorCount: len(in.Authors),
		Attribution: catalog.Attributed(actor.UserID, now),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		dup, err := s.pubs.ExistsByDOI(dbc, pub.DOIISBN)
		if err != nil {
			return fmt.Errorf("check doi: %w", err)
		}
		if dup {
			return &ValidationError{Kind: KindDuplicate, Field: "doi_isbn", Msg: TextPublicationExists}
		}
		if _, err := s.pubs.Create(dbc, []*types.Publication{pub}); err != nil {
			return fmt.Errorf("create publication: %w", err)
		}
		linked := make([]*types.Author, 0, len(in.Authors))
		for _, a := range in.Authors {
			first, last, inst := clean(a.FirstName), clean(a.LastName), clean(a.Institution)
			existing, err := s.authors.FindExact(dbc, first, last, inst)
			if err != nil {
				return fmt.Errorf("lookup author: %w", err)
			}
			if existing == nil {
				existing = &types.Author{
					FirstName:   first,
					LastName:    last,
					Institution: inst,
					Attribution: catalog.Attributed(actor.UserID, now),
				}
				if _, err := s.authors.Create(dbc, []*types.Author{existing}); err != nil {
					return fmt.Errorf("create author: %w", err)
				}
			}
			linked = append(linked, existing)
		}
		return s.pubs.AttachAuthors(dbc, pub, linked)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Publication added", "publication_id", pub.ID, "authors", len(in.Authors))
	return pub, nil
}

func (s *catalogService) GetPublication(ctx context.Context, id uuid.UUID) (*types.Publication, error) {
	row, err := s.pubs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load publication: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("publication %s: %w", id, pkgerrors.ErrNotFound)
	}
	return row, nil
}

// SearchPublications looks at authors first and falls back to title and
// journal only when no author matches.
func (s *catalogService) SearchPublications(ctx context.Context, text string) ([]*types.Publication, error) {
	dbc := dbctx.Context{Ctx: ctx}
	text = clean(text)
	byAuthor, err := s.pubs.SearchByAuthor(dbc, text)
	if err != nil {
		return nil, err
	}
	if len(byAuthor) > 0 {
		return byAuthor, nil
	}
	return s.pubs.SearchByTitleOrJournal(dbc, text)
}

func (s *catalogService) AddProperty(ctx context.Context, actor Actor, name string) (*types.Property, error) {
	name = clean(name)
	if name == "" {
		return nil, invalid(KindMissingField, "property-name")
	}
	row := &types.Property{Name: name, Attribution: catalog.Attributed(actor.UserID, s.clock.now())}
	err := s.createVocabulary(ctx, actor, row.Name, func(dbc dbctx.Context) (bool, error) {
		return s.vocab.PropertyNameExists(dbc, name)
	}, func(dbc dbctx.Context) error {
		return s.vocab.CreateProperty(dbc, row)
	}, func() uuid.UUID { return row.ID })
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *catalogService) AddUnit(ctx context.Context, actor Actor, label string) (*types.Unit, error) {
	label = clean(label)
	if label == "" {
		return nil, invalid(KindMissingField, "unit-label")
	}
	row := &types.Unit{Label: label, Attribution: catalog.Attributed(actor.UserID, s.clock.now())}
	err := s.createVocabulary(ctx, actor, row.Label, func(dbc dbctx.Context) (bool, error) {
		return s.vocab.UnitLabelExists(dbc, label)
	}, func(dbc dbctx.Context) error {
		return s.vocab.CreateUnit(dbc, row)
	}, func() uuid.UUID { return row.ID })
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *catalogService) AddPhase(ctx context.Context, actor Actor, phase string) (*types.Phase, error) {
	phase = clean(phase)
	if phase == "" {
		return nil, invalid(KindMissingField, "phase")
	}
	row := &types.Phase{Phase: phase, Attribution: catalog.Attributed(actor.UserID, s.clock.now())}
	err := s.createVocabulary(ctx, actor, row.Phase, func(dbc dbctx.Context) (bool, error) {
		existing, err := s.vocab.GetPhaseByName(dbc, phase)
		return existing != nil, err
	}, func(dbc dbctx.Context) error {
		return s.vocab.CreatePhase(dbc, row)
	}, func() uuid.UUID { return row.ID })
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *catalogService) AddTag(ctx context.Context, actor Actor, tag string) (*types.Tag, error) {
	tag = clean(tag)
	if tag == "" {
		return nil, invalid(KindMissingField, "tag")
	}
	row := &types.Tag{Tag: tag, Attribution: catalog.Attributed(actor.UserID, s.clock.now())}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := s.vocab.TagExists(dbc, tag)
		if err != nil {
			return fmt.Errorf("check tag: %w", err)
		}
		if exists {
			return &ValidationError{Kind: KindDuplicate, Field: "tag", Msg: TextTagExists}
		}
		return s.vocab.CreateTag(dbc, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// createVocabulary runs the duplicate check and insert for one lookup row in a
// single transaction and records a vocabulary event.
func (s *catalogService) createVocabulary(
	ctx context.Context,
	actor Actor,
	label string,
	exists func(dbctx.Context) (bool, error),
	create func(dbctx.Context) error,
	id func() uuid.UUID,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		dup, err := exists(dbc)
		if err != nil {
			return fmt.Errorf("check %q: %w", label, err)
		}
		if dup {
			return &ValidationError{
				Kind:  KindDuplicate,
				Field: label,
				Msg:   fmt.Sprintf(`Failed to submit, "%s" is already in database.`, label),
			}
		}
		if err := create(dbc); err != nil {
			return fmt.Errorf("create %q: %w", label, err)
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{{
			Kind:      catalog.EventVocabularyCreated,
			SubjectID: id(),
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{"label": label}),
			CreatedAt: s.clock.now(),
		}})
		return err
	})
}

func (s *catalogService) FormOptions(ctx context.Context) (*FormOptions, error) {
	dbc := dbctx.Context{Ctx: ctx}
	out := &FormOptions{}
	var err error
	if out.Publications, err = s.pubs.ListByYear(dbc); err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	if out.Systems, err = s.systems.Search(dbc, ""); err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	if out.Properties, err = s.vocab.ListProperties(dbc); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	if out.Units, err = s.vocab.ListUnits(dbc); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	if out.Phases, err = s.vocab.ListPhases(dbc); err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	if out.SpaceGroups, err = s.vocab.ListSpaceGroups(dbc); err != nil {
		return nil, fmt.Errorf("list space groups: %w", err)
	}
	if s.choices != nil {
		out.SampleTypes = s.choices.SampleTypes
		out.CrystalSystems = s.choices.CrystalSystems
	}
	return out, nil
}
