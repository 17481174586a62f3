package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventDatasetCreated    = "dataset.created"
	EventDatasetDeleted    = "dataset.deleted"
	EventDatasetUpdated    = "dataset.updated"
	EventEntryCreated      = "entry.created"
	EventEntryDeleted      = "entry.deleted"
	EventEntryUpdated      = "entry.updated"
	EventVocabularyCreated = "vocabulary.created"
)

// CatalogEvent is an append-only audit row written in the same transaction
// as the change it describes.
type CatalogEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string         `gorm:"not null;index;column:kind" json:"kind"`
	SubjectID uuid.UUID      `gorm:"type:uuid;index;column:subject_id" json:"subject_id"`
	ActorID   uuid.UUID      `gorm:"type:uuid;column:actor_id" json:"actor_id"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (CatalogEvent) TableName() string { return "catalog_event" }
