package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

type Dataset struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Label string    `gorm:"column:label" json:"label"`

	SystemID      uuid.UUID    `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System        *System      `gorm:"foreignKey:SystemID;references:ID" json:"system,omitempty"`
	PublicationID uuid.UUID    `gorm:"type:uuid;not null;index;column:publication_id" json:"publication_id"`
	Publication   *Publication `gorm:"foreignKey:PublicationID;references:ID" json:"publication,omitempty"`

	PrimaryPropertyID   *uuid.UUID `gorm:"type:uuid;column:primary_property_id" json:"primary_property_id,omitempty"`
	PrimaryProperty     *Property  `gorm:"foreignKey:PrimaryPropertyID;references:ID" json:"primary_property,omitempty"`
	PrimaryUnitID       *uuid.UUID `gorm:"type:uuid;column:primary_unit_id" json:"primary_unit_id,omitempty"`
	PrimaryUnit         *Unit      `gorm:"foreignKey:PrimaryUnitID;references:ID" json:"primary_unit,omitempty"`
	SecondaryPropertyID *uuid.UUID `gorm:"type:uuid;column:secondary_property_id" json:"secondary_property_id,omitempty"`
	SecondaryProperty   *Property  `gorm:"foreignKey:SecondaryPropertyID;references:ID" json:"secondary_property,omitempty"`
	SecondaryUnitID     *uuid.UUID `gorm:"type:uuid;column:secondary_unit_id" json:"secondary_unit_id,omitempty"`
	SecondaryUnit       *Unit      `gorm:"foreignKey:SecondaryUnitID;references:ID" json:"secondary_unit,omitempty"`

	Visible        bool `gorm:"not null;default:false;column:visible" json:"visible"`
	Plotted        bool `gorm:"not null;default:false;column:plotted" json:"plotted"`
	Experimental   bool `gorm:"not null;default:false;column:experimental" json:"experimental"`
	HasFiles       bool `gorm:"not null;default:false;column:has_files" json:"has_files"`
	Dimensionality int  `gorm:"not null;default:2;column:dimensionality" json:"dimensionality"`
	SampleType     int  `gorm:"not null;default:0;column:sample_type" json:"sample_type"`
	CrystalSystem  int  `gorm:"not null;default:0;column:crystal_system" json:"crystal_system"`

	SpaceGroupID *uuid.UUID  `gorm:"type:uuid;column:space_group_id" json:"space_group_id,omitempty"`
	SpaceGroup   *SpaceGroup `gorm:"foreignKey:SpaceGroupID;references:ID" json:"space_group,omitempty"`

	Dataseries           []Dataseries          `gorm:"foreignKey:DatasetID" json:"dataseries,omitempty"`
	SynthesisMethod      *SynthesisMethod      `gorm:"foreignKey:DatasetID" json:"synthesis,omitempty"`
	ExperimentalDetails  *ExperimentalDetails  `gorm:"foreignKey:DatasetID" json:"experimental_details,omitempty"`
	ComputationalDetails *ComputationalDetails `gorm:"foreignKey:DatasetID" json:"computational_details,omitempty"`

	Attribution
}

func (Dataset) TableName() string { return "dataset" }

// Paired reports whether datapoints carry both an x (secondary) and a y (primary) value.
func (d *Dataset) Paired() bool {
	return d.PrimaryPropertyID != nil && d.SecondaryPropertyID != nil
}

// UploadDir is the file-store prefix owning this dataset's files.
func (d *Dataset) UploadDir() string {
	return DatasetUploadDir(d.ID)
}

func DatasetUploadDir(id uuid.UUID) string {
	return fmt.Sprintf("uploads/dataset_%s", id)
}

type Dataseries struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID   uuid.UUID             `gorm:"type:uuid;not null;index;column:dataset_id" json:"dataset_id"`
	Seq         int                   `gorm:"not null;default:0;column:seq" json:"seq"`
	Label       string                `gorm:"column:label" json:"label"`
	Datapoints  []Datapoint           `gorm:"foreignKey:DataseriesID" json:"datapoints,omitempty"`
	FixedValues []NumericalValueFixed `gorm:"foreignKey:DataseriesID" json:"fixed_values,omitempty"`
	Attribution
}

func (Dataseries) TableName() string { return "dataseries" }

type Datapoint struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DataseriesID uuid.UUID        `gorm:"type:uuid;not null;index;column:dataseries_id" json:"dataseries_id"`
	Seq          int              `gorm:"not null;column:seq" json:"seq"`
	Values       []NumericalValue `gorm:"foreignKey:DatapointID" json:"values,omitempty"`
	Attribution
}

func (Datapoint) TableName() string { return "datapoint" }

// Value returns the value carrying qualifier q, if present.
func (p *Datapoint) Value(q Qualifier) (float64, bool) {
	for _, v := range p.Values {
		if v.Qualifier == q {
			return v.Value, true
		}
	}
	return 0, false
}
