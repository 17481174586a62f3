package catalog

import "github.com/google/uuid"

// System is a hybrid material: an organic and an inorganic component.
type System struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompoundName string    `gorm:"not null;index;column:compound_name" json:"compound_name"`
	Formula      string    `gorm:"not null;index;column:formula" json:"formula"`
	Group        string    `gorm:"column:group_name" json:"group"`
	Organic      string    `gorm:"column:organic;index" json:"organic"`
	Inorganic    string    `gorm:"column:inorganic;index" json:"inorganic"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	Tags         []Tag     `gorm:"many2many:system_tag;" json:"tags,omitempty"`
	Attribution
}

func (System) TableName() string { return "system" }
