package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a client-side id before insert.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *System) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
func (p *Publication) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (a *Author) BeforeCreate(tx *gorm.DB) error { ensureID(&a.ID); return nil }
func (p *Phase) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (p *Property) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (u *Unit) BeforeCreate(tx *gorm.DB) error { ensureID(&u.ID); return nil }
func (t *Tag) BeforeCreate(tx *gorm.DB) error { ensureID(&t.ID); return nil }
func (s *SpaceGroup) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
func (d *Dataset) BeforeCreate(tx *gorm.DB) error { ensureID(&d.ID); return nil }
func (d *Dataseries) BeforeCreate(tx *gorm.DB) error { ensureID(&d.ID); return nil }
func (d *Datapoint) BeforeCreate(tx *gorm.DB) error { ensureID(&d.ID); return nil }
func (n *NumericalValue) BeforeCreate(tx *gorm.DB) error { ensureID(&n.ID); return nil }
func (n *NumericalValueFixed) BeforeCreate(tx *gorm.DB) error { ensureID(&n.ID); return nil }
func (s *SynthesisMethod) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
func (e *ExperimentalDetails) BeforeCreate(tx *gorm.DB) error { ensureID(&e.ID); return nil }
func (c *ComputationalDetails) BeforeCreate(tx *gorm.DB) error { ensureID(&c.ID); return nil }
func (c *Comment) BeforeCreate(tx *gorm.DB) error { ensureID(&c.ID); return nil }
func (a *AtomicPositions) BeforeCreate(tx *gorm.DB) error { ensureID(&a.ID); return nil }
func (e *ExcitonEmission) BeforeCreate(tx *gorm.DB) error { ensureID(&e.ID); return nil }
func (s *SynthesisMethodOld) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
func (b *BandStructure) BeforeCreate(tx *gorm.DB) error { ensureID(&b.ID); return nil }
func (m *MaterialProperty) BeforeCreate(tx *gorm.DB) error { ensureID(&m.ID); return nil }
func (c *CatalogEvent) BeforeCreate(tx *gorm.DB) error { ensureID(&c.ID); return nil }
