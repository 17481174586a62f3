package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Entry kinds predating the dataset model. Each row is attached to a system
// and a publication, carries a phase and a free-text temperature.

type AtomicPositions struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SystemID          uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System            *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID     uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication       *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`
	PhaseID           uuid.UUID    `gorm:"type:uuid;not null;column:phase_id" json:"phase_id"`
	Phase             *Phase       `gorm:"foreignKey:PhaseID;references:ID" json:"phase,omitempty"`
	SynthesisMethodID *uuid.UUID   `gorm:"type:uuid;column:synthesis_method_id" json:"synthesis_method_id,omitempty"`

	Temperature string `gorm:"column:temperature" json:"temperature"`
	A           string `gorm:"column:a" json:"a"`
	B           string `gorm:"column:b" json:"b"`
	C           string `gorm:"column:c" json:"c"`
	Alpha       string `gorm:"column:alpha" json:"alpha"`
	Beta        string `gorm:"column:beta" json:"beta"`
	Gamma       string `gorm:"column:gamma" json:"gamma"`
	Volume      string `gorm:"column:volume" json:"volume"`
	Z           string `gorm:"column:z" json:"z"`
	Attribution
}

func (AtomicPositions) TableName() string { return "atomic_positions" }

type ExcitonEmission struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SystemID          uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System            *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID     uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication       *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`
	PhaseID           uuid.UUID    `gorm:"type:uuid;not null;column:phase_id" json:"phase_id"`
	Phase             *Phase       `gorm:"foreignKey:PhaseID;references:ID" json:"phase,omitempty"`
	SynthesisMethodID *uuid.UUID   `gorm:"type:uuid;column:synthesis_method_id" json:"synthesis_method_id,omitempty"`

	Temperature     string  `gorm:"column:temperature" json:"temperature"`
	ExcitonEmission float64 `gorm:"not null;index;column:exciton_emission" json:"exciton_emission"`
	Attribution
}

func (ExcitonEmission) TableName() string { return "exciton_emission" }

type SynthesisMethodOld struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SystemID      uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System        *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication   *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`
	PhaseID       uuid.UUID    `gorm:"type:uuid;not null;column:phase_id" json:"phase_id"`
	Phase         *Phase       `gorm:"foreignKey:PhaseID;references:ID" json:"phase,omitempty"`

	Temperature       string `gorm:"column:temperature" json:"temperature"`
	SynthesisMethod   string `gorm:"column:synthesis_method;type:text" json:"synthesis_method"`
	StartingMaterials string `gorm:"column:starting_materials;type:text" json:"starting_materials"`
	Remarks           string `gorm:"column:remarks;type:text" json:"remarks"`
	Product           string `gorm:"column:product;type:text" json:"product"`
	Attribution
}

func (SynthesisMethodOld) TableName() string { return "synthesis_method_old" }

type BandStructure struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SystemID          uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System            *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID     uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication       *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`
	PhaseID           uuid.UUID    `gorm:"type:uuid;not null;column:phase_id" json:"phase_id"`
	Phase             *Phase       `gorm:"foreignKey:PhaseID;references:ID" json:"phase,omitempty"`
	SynthesisMethodID *uuid.UUID   `gorm:"type:uuid;column:synthesis_method_id" json:"synthesis_method_id,omitempty"`

	Temperature    string `gorm:"column:temperature" json:"temperature"`
	BandGap        string `gorm:"column:band_gap" json:"band_gap"`
	FolderLocation string `gorm:"column:folder_location" json:"folder_location"`
	Plotted        bool   `gorm:"not null;default:false;column:plotted" json:"plotted"`
	Attribution
}

func (BandStructure) TableName() string { return "band_structure" }

// BandStructureFolder is the file-store prefix holding one band structure's files.
func BandStructureFolder(phase, organic, inorganic string, id uuid.UUID) string {
	return fmt.Sprintf("uploads/%s_%s_%s_%s_bs", phase, organic, inorganic, id)
}

type MaterialProperty struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SystemID      uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System        *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication   *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`
	PhaseID       uuid.UUID    `gorm:"type:uuid;not null;column:phase_id" json:"phase_id"`
	Phase         *Phase       `gorm:"foreignKey:PhaseID;references:ID" json:"phase,omitempty"`

	Temperature string `gorm:"column:temperature" json:"temperature"`
	Property    string `gorm:"column:property" json:"property"`
	Value       string `gorm:"column:value" json:"value"`
	Attribution
}

func (MaterialProperty) TableName() string { return "material_property" }

// EntryKind names one of the legacy entry tables.
type EntryKind string

const (
	EntryAtomicPositions  EntryKind = "atomic_positions"
	EntryExcitonEmission  EntryKind = "exciton_emission"
	EntrySynthesis        EntryKind = "synthesis"
	EntryBandStructure    EntryKind = "band_structure"
	EntryMaterialProperty EntryKind = "material_prop"
)

func (k EntryKind) Table() string {
	switch k {
	case EntryAtomicPositions:
		return AtomicPositions{}.TableName()
	case EntryExcitonEmission:
		return ExcitonEmission{}.TableName()
	case EntrySynthesis:
		return SynthesisMethodOld{}.TableName()
	case EntryBandStructure:
		return BandStructure{}.TableName()
	case EntryMaterialProperty:
		return MaterialProperty{}.TableName()
	}
	return ""
}

func (k EntryKind) Valid() bool { return k.Table() != "" }
