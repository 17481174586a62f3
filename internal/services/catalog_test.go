package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	types "github.com/yungbote/materials-backend/internal/domain"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func TestAddSystemRejectsDuplicateNameOrFormula(t *testing.T) {
	h := newHarness(t)
	sys, err := h.catalog.AddSystem(h.ctx, h.actor, SystemInput{
		CompoundName: " Methylammonium lead iodide ",
		Formula:      "CH3NH3PbI3",
		Organic:      "CH3NH3",
		Inorganic:    "PbI3",
	})
	if err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	if sys.CompoundName != "Methylammonium lead iodide" {
		t.Fatalf("name not trimmed: %q", sys.CompoundName)
	}
	if sys.CreatedByID != h.actor.UserID || !sys.CreatedAt.Equal(testutil.Now) {
		t.Fatalf("attribution not stamped: %+v", sys.Attribution)
	}

	_, err = h.catalog.AddSystem(h.ctx, h.actor, SystemInput{CompoundName: "other", Formula: "ch3nh3pbi3"})
	if got := validationMsg(t, err); got != "Failed to submit, system is already in database." {
		t.Fatalf("unexpected message: %q", got)
	}
	_, err = h.catalog.AddSystem(h.ctx, h.actor, SystemInput{CompoundName: "METHYLAMMONIUM LEAD IODIDE", Formula: "X"})
	if got := validationMsg(t, err); got != TextSystemExists {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestAddSystemRequiresNameAndFormula(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.AddSystem(h.ctx, h.actor, SystemInput{Formula: "X"})
	if got := validationMsg(t, err); got != TextFixErrors {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUpdateAndGetSystem(t *testing.T) {
	h := newHarness(t)
	sys := h.seedSystem(t, "a", "b", "c", "d")
	updated, err := h.catalog.UpdateSystem(h.ctx, h.actor, sys.ID, SystemInput{CompoundName: "a2", Formula: "b", Description: "desc"})
	if err != nil {
		t.Fatalf("UpdateSystem: %v", err)
	}
	if updated.CompoundName != "a2" || updated.Description != "desc" {
		t.Fatalf("unexpected row: %+v", updated)
	}
	if _, err := h.catalog.GetSystem(h.ctx, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddAuthorDuplicate(t *testing.T) {
	h := newHarness(t)
	if _, err := h.catalog.AddAuthor(h.ctx, h.actor, AuthorInput{FirstName: "Volker", LastName: "Blum", Institution: "Duke University"}); err != nil {
		t.Fatalf("AddAuthor: %v", err)
	}
	_, err := h.catalog.AddAuthor(h.ctx, h.actor, AuthorInput{FirstName: "volker", LastName: "BLUM", Institution: "Duke"})
	if got := validationMsg(t, err); got != TextAuthorExists {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestAddPublicationLinksAndReusesAuthors(t *testing.T) {
	h := newHarness(t)
	existing, err := h.catalog.AddAuthor(h.ctx, h.actor, AuthorInput{FirstName: "Volker", LastName: "Blum", Institution: "Duke University"})
	if err != nil {
		t.Fatalf("AddAuthor: %v", err)
	}
	pub, err := h.catalog.AddPublication(h.ctx, h.actor, PublicationInput{
		Title:   "Hybrid perovskites",
		Journal: "Phys. Rev. B",
		Year:    "2018",
		DOIISBN: "10.1/abc",
		Authors: []AuthorInput{
			{FirstName: "Volker", LastName: "Blum", Institution: "Duke University"},
			{FirstName: "David", LastName: "Mitzi", Institution: "Duke University"},
		},
	})
	if err != nil {
		t.Fatalf("AddPublication: %v", err)
	}
	if pub.AuthorCount != 2 {
		t.Fatalf("author_count=%d", pub.AuthorCount)
	}
	got, err := h.pubs.GetByID(dbctx.Context{Ctx: h.ctx}, pub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Authors) != 2 {
		t.Fatalf("expected 2 linked authors, got %d", len(got.Authors))
	}
	reused := false
	for _, a := range got.Authors {
		if a.ID == existing.ID {
			reused = true
		}
	}
	if !reused {
		t.Fatalf("existing author was not reused")
	}
	var count int64
	if err := h.db.Model(&types.Author{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 author rows, got %d", count)
	}

	_, err = h.catalog.AddPublication(h.ctx, h.actor, PublicationInput{Title: "again", DOIISBN: "10.1/abc"})
	if msg := validationMsg(t, err); msg != TextPublicationExists {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestAddPublicationIncompleteAuthor(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.AddPublication(h.ctx, h.actor, PublicationInput{
		Title:   "t",
		Authors: []AuthorInput{{FirstName: "A", LastName: "", Institution: "X"}},
	})
	if msg := validationMsg(t, err); msg != "Failed to submit, author information is incomplete." {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestAddPublicationAllowsRepeatedEmptyDOI(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 2; i++ {
		if _, err := h.catalog.AddPublication(h.ctx, h.actor, PublicationInput{Title: "no doi"}); err != nil {
			t.Fatalf("AddPublication #%d: %v", i, err)
		}
	}
}

func TestSearchPublicationsPrefersAuthors(t *testing.T) {
	h := newHarness(t)
	byAuthor := h.seedPublication(t, "Unrelated title", "10.1/a", [2]string{"Volker", "Blum"})
	h.seedPublication(t, "Blum and friends", "10.1/b")

	got, err := h.catalog.SearchPublications(h.ctx, "blum")
	if err != nil {
		t.Fatalf("SearchPublications: %v", err)
	}
	if len(got) != 1 || got[0].ID != byAuthor.ID {
		t.Fatalf("expected author match only, got %+v", got)
	}

	got, err = h.catalog.SearchPublications(h.ctx, "friends")
	if err != nil {
		t.Fatalf("SearchPublications: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Blum and friends" {
		t.Fatalf("expected title fallback, got %+v", got)
	}
}

func TestAddVocabularyRows(t *testing.T) {
	h := newHarness(t)
	prop, err := h.catalog.AddProperty(h.ctx, h.actor, "band gap")
	if err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	if PropertyAddedText(prop.Name) != `New property "band gap" successfully added to the database!` {
		t.Fatalf("unexpected text: %s", PropertyAddedText(prop.Name))
	}
	if _, err := h.catalog.AddProperty(h.ctx, h.actor, "band gap"); err == nil {
		t.Fatalf("expected duplicate property error")
	}
	if _, err := h.catalog.AddUnit(h.ctx, h.actor, "eV"); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	if _, err := h.catalog.AddPhase(h.ctx, h.actor, "cubic"); err != nil {
		t.Fatalf("AddPhase: %v", err)
	}
	if _, err := h.catalog.AddTag(h.ctx, h.actor, "perovskite"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	_, err = h.catalog.AddTag(h.ctx, h.actor, "Perovskite")
	if msg := validationMsg(t, err); msg != TextTagExists {
		t.Fatalf("unexpected message: %q", msg)
	}

	evts, err := h.events.ListRecent(dbctx.Context{Ctx: h.ctx}, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(evts) != 3 {
		t.Fatalf("expected 3 vocabulary events, got %d", len(evts))
	}

	opts, err := h.catalog.FormOptions(h.ctx)
	if err != nil {
		t.Fatalf("FormOptions: %v", err)
	}
	if len(opts.Properties) != 1 || len(opts.Units) != 1 || len(opts.Phases) != 1 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if len(opts.SampleTypes) == 0 || len(opts.CrystalSystems) == 0 {
		t.Fatalf("choices missing")
	}
}

func TestAddUnitNonASCIIDuplicateIsValidationFailure(t *testing.T) {
	h := newHarness(t)
	if _, err := h.catalog.AddUnit(h.ctx, h.actor, "Å"); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	_, err := h.catalog.AddUnit(h.ctx, h.actor, " Å ")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != KindDuplicate {
		t.Fatalf("want duplicate ValidationError, got %T %v", err, err)
	}
	if _, err := h.catalog.AddProperty(h.ctx, h.actor, "Énergie de liaison"); err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	_, err = h.catalog.AddProperty(h.ctx, h.actor, "Énergie de liaison")
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for non-ASCII property, got %T %v", err, err)
	}
}
