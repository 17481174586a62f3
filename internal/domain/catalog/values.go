package catalog

import "github.com/google/uuid"

// Qualifier marks a value as the dependent (primary, y) or independent (secondary, x) variable.
type Qualifier int

const (
	QualifierPrimary Qualifier = iota
	QualifierSecondary
)

func (q Qualifier) String() string {
	if q == QualifierSecondary {
		return "SECONDARY"
	}
	return "PRIMARY"
}

// ValueType tags the accuracy of a stored number.
type ValueType int

const (
	ValueAccurate ValueType = iota
	ValueApproximate
	ValueLowerBound
	ValueUpperBound
	ValueError
)

func (v ValueType) String() string {
	switch v {
	case ValueApproximate:
		return "APPROXIMATE"
	case ValueLowerBound:
		return "LOWER_BOUND"
	case ValueUpperBound:
		return "UPPER_BOUND"
	case ValueError:
		return "ERROR"
	default:
		return "ACCURATE"
	}
}

type NumericalValue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatapointID uuid.UUID `gorm:"type:uuid;not null;index;column:datapoint_id" json:"datapoint_id"`
	Qualifier   Qualifier `gorm:"not null;column:qualifier" json:"qualifier"`
	Value       float64   `gorm:"not null;column:value" json:"value"`
	ValueType   ValueType `gorm:"not null;default:0;column:value_type" json:"value_type"`
	Attribution
}

func (NumericalValue) TableName() string { return "numerical_value" }

// NumericalValueFixed is a property held constant across a whole dataseries.
type NumericalValueFixed struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DataseriesID uuid.UUID `gorm:"type:uuid;not null;index;column:dataseries_id" json:"dataseries_id"`
	PropertyID   uuid.UUID `gorm:"type:uuid;not null;column:property_id" json:"property_id"`
	Property     *Property `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`
	UnitID       uuid.UUID `gorm:"type:uuid;not null;column:unit_id" json:"unit_id"`
	Unit         *Unit     `gorm:"foreignKey:UnitID;references:ID" json:"unit,omitempty"`
	Value        float64   `gorm:"not null;column:value" json:"value"`
	ValueType    ValueType `gorm:"not null;default:0;column:value_type" json:"value_type"`
	Attribution
}

func (NumericalValueFixed) TableName() string { return "numerical_value_fixed" }
