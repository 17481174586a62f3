package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
)

// Now is the fixed instant stamped on seeded rows.
var Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func attribution(actor uuid.UUID) catalog.Attribution {
	return catalog.Attributed(actor, Now)
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		CreatedAt: Now,
		UpdatedAt: Now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSystem(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, name, formula, organic, inorganic string) *types.System {
	tb.Helper()
	s := &types.System{
		CompoundName: name,
		Formula:      formula,
		Group:        formula,
		Organic:      organic,
		Inorganic:    inorganic,
		Attribution:  attribution(actor),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed system: %v", err)
	}
	return s
}

// SeedPublication creates a publication with one author per name pair.
func SeedPublication(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, title, doi string, authors ...[2]string) *types.Publication {
	tb.Helper()
	p := &types.Publication{
		Title:       title,
		Journal:     "J. Chem. Phys.",
		Volume:      "12",
		PagesStart:  "100",
		Year:        "2019",
		DOIISBN:     doi,
		AuthorCount: len(authors),
		Attribution: attribution(actor),
	}
	for _, a := range authors {
		p.Authors = append(p.Authors, types.Author{
			FirstName:   a[0],
			LastName:    a[1],
			Institution: "Duke University",
			Attribution: attribution(actor),
		})
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed publication: %v", err)
	}
	return p
}

func SeedPhase(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, phase string) *types.Phase {
	tb.Helper()
	p := &types.Phase{Phase: phase, Attribution: attribution(actor)}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed phase: %v", err)
	}
	return p
}

func SeedProperty(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, name string) *types.Property {
	tb.Helper()
	p := &types.Property{Name: name, Attribution: attribution(actor)}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed property: %v", err)
	}
	return p
}

func SeedUnit(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, label string) *types.Unit {
	tb.Helper()
	u := &types.Unit{Label: label, Attribution: attribution(actor)}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed unit: %v", err)
	}
	return u
}

func SeedExcitonEmission(tb testing.TB, ctx context.Context, tx *gorm.DB, actor uuid.UUID, sys *types.System, pub *types.Publication, phase *types.Phase, peak float64) *types.ExcitonEmission {
	tb.Helper()
	e := &types.ExcitonEmission{
		SystemID:        sys.ID,
		PublicationID:   pub.ID,
		PhaseID:         phase.ID,
		Temperature:     "300",
		ExcitonEmission: peak,
		Attribution:     attribution(actor),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed exciton emission: %v", err)
	}
	return e
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
