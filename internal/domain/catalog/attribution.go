package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Attribution is embedded by every catalog row. Timestamps are set by the
// caller from an injected clock rather than by the database.
type Attribution struct {
	CreatedAt   time.Time `gorm:"not null;index;autoCreateTime:false" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	CreatedByID uuid.UUID `gorm:"type:uuid;index;column:created_by_id" json:"created_by_id"`
	UpdatedByID uuid.UUID `gorm:"type:uuid;column:updated_by_id" json:"updated_by_id"`
}

func Attributed(actor uuid.UUID, at time.Time) Attribution {
	return Attribution{CreatedAt: at, UpdatedAt: at, CreatedByID: actor, UpdatedByID: actor}
}

// Touch records a modification by actor at the given time.
func (a *Attribution) Touch(actor uuid.UUID, at time.Time) {
	a.UpdatedAt = at
	a.UpdatedByID = actor
}
