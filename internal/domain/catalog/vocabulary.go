package catalog

import "github.com/google/uuid"

type Phase struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phase string    `gorm:"not null;uniqueIndex;column:phase" json:"phase"`
	Attribution
}

func (Phase) TableName() string { return "phase" }

// Property is a physical quantity such as "band gap".
type Property struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex;size:60;column:name" json:"name"`
	Attribution
}

func (Property) TableName() string { return "property" }

type Unit struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Label string    `gorm:"not null;uniqueIndex;size:20;column:label" json:"label"`
	Attribution
}

func (Unit) TableName() string { return "unit" }

type Tag struct {
	ID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tag string    `gorm:"not null;uniqueIndex;column:tag" json:"tag"`
	Attribution
}

func (Tag) TableName() string { return "tag" }

type SpaceGroup struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Value string    `gorm:"not null;size:20;column:value" json:"value"`
	Attribution
}

func (SpaceGroup) TableName() string { return "space_group" }

// Choice is a coded option offered by the data-entry form.
type Choice struct {
	Code  int    `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}
