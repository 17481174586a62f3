package catalog

import "github.com/google/uuid"

const (
	CommentOwnerSynthesis     = "synthesis"
	CommentOwnerExperimental  = "experimental"
	CommentOwnerComputational = "computational"
)

type SynthesisMethod struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:dataset_id" json:"dataset_id"`
	StartingMaterials string    `gorm:"column:starting_materials;type:text" json:"starting_materials"`
	Product           string    `gorm:"column:product;type:text" json:"product"`
	Description       string    `gorm:"column:description;type:text" json:"description"`
	Comments          []Comment `gorm:"polymorphic:Owner;polymorphicValue:synthesis" json:"comments,omitempty"`
	Attribution
}

func (SynthesisMethod) TableName() string { return "synthesis_method" }

type ExperimentalDetails struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:dataset_id" json:"dataset_id"`
	Method      string    `gorm:"column:method" json:"method"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Comments    []Comment `gorm:"polymorphic:Owner;polymorphicValue:experimental" json:"comments,omitempty"`
	Attribution
}

func (ExperimentalDetails) TableName() string { return "experimental_details" }

type ComputationalDetails struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DatasetID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:dataset_id" json:"dataset_id"`
	Code              string    `gorm:"column:code" json:"code"`
	LevelOfTheory     string    `gorm:"column:level_of_theory" json:"level_of_theory"`
	XCFunctional      string    `gorm:"column:xc_functional" json:"xc_functional"`
	KGrid             string    `gorm:"column:k_grid" json:"k_grid"`
	RelativityLevel   string    `gorm:"column:relativity_level" json:"relativity_level"`
	Basis             string    `gorm:"column:basis;type:text" json:"basis"`
	NumericalAccuracy string    `gorm:"column:numerical_accuracy;type:text" json:"numerical_accuracy"`
	Comments          []Comment `gorm:"polymorphic:Owner;polymorphicValue:computational" json:"comments,omitempty"`
	Attribution
}

func (ComputationalDetails) TableName() string { return "computational_details" }

// Comment hangs off one detail block, identified by OwnerType/OwnerID.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_owner,priority:2;column:owner_id" json:"owner_id"`
	OwnerType string    `gorm:"not null;index:idx_comment_owner,priority:1;column:owner_type" json:"owner_type"`
	Text      string    `gorm:"column:text;type:text" json:"text"`
	Attribution
}

func (Comment) TableName() string { return "comment" }
