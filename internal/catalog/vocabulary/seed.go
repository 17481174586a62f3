package vocabulary

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

// Store is the subset of the vocabulary repository seeding needs.
type Store interface {
	CreateProperty(dbc dbctx.Context, row *types.Property) error
	CreateUnit(dbc dbctx.Context, row *types.Unit) error
	CreatePhase(dbc dbctx.Context, row *types.Phase) error
	GetPhaseByName(dbc dbctx.Context, phase string) (*types.Phase, error)
	PropertyNameExists(dbc dbctx.Context, name string) (bool, error)
	UnitLabelExists(dbc dbctx.Context, label string) (bool, error)
}

type SeedResult struct {
	Phases     int
	Properties int
	Units      int
}

// Seed inserts the rows of v that are not present yet. Running it twice is a no-op.
func Seed(dbc dbctx.Context, store Store, v *Vocabulary, actor uuid.UUID, now time.Time) (SeedResult, error) {
	var res SeedResult
	attr := catalog.Attributed(actor, now)
	for _, name := range v.Phases {
		existing, err := store.GetPhaseByName(dbc, name)
		if err != nil {
			return res, fmt.Errorf("lookup phase %q: %w", name, err)
		}
		if existing != nil {
			continue
		}
		if err := store.CreatePhase(dbc, &types.Phase{Phase: name, Attribution: attr}); err != nil {
			return res, fmt.Errorf("create phase %q: %w", name, err)
		}
		res.Phases++
	}
	for _, name := range v.Properties {
		ok, err := store.PropertyNameExists(dbc, name)
		if err != nil {
			return res, fmt.Errorf("lookup property %q: %w", name, err)
		}
		if ok {
			continue
		}
		if err := store.CreateProperty(dbc, &types.Property{Name: name, Attribution: attr}); err != nil {
			return res, fmt.Errorf("create property %q: %w", name, err)
		}
		res.Properties++
	}
	for _, label := range v.Units {
		ok, err := store.UnitLabelExists(dbc, label)
		if err != nil {
			return res, fmt.Errorf("lookup unit %q: %w", label, err)
		}
		if ok {
			continue
		}
		if err := store.CreateUnit(dbc, &types.Unit{Label: label, Attribution: attr}); err != nil {
			return res, fmt.Errorf("create unit %q: %w", label, err)
		}
		res.Units++
	}
	return res, nil
}
