package domain

import (
	"github.com/yungbote/materials-backend/internal/domain/auth"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	System               = catalog.System
	Publication          = catalog.Publication
	Author               = catalog.Author
	Phase                = catalog.Phase
	Property             = catalog.Property
	Unit                 = catalog.Unit
	Tag                  = catalog.Tag
	SpaceGroup           = catalog.SpaceGroup
	Dataset              = catalog.Dataset
	Dataseries           = catalog.Dataseries
	Datapoint            = catalog.Datapoint
	NumericalValue       = catalog.NumericalValue
	NumericalValueFixed  = catalog.NumericalValueFixed
	SynthesisMethod      = catalog.SynthesisMethod
	ExperimentalDetails  = catalog.ExperimentalDetails
	ComputationalDetails = catalog.ComputationalDetails
	Comment              = catalog.Comment
	AtomicPositions      = catalog.AtomicPositions
	ExcitonEmission      = catalog.ExcitonEmission
	SynthesisMethodOld   = catalog.SynthesisMethodOld
	BandStructure        = catalog.BandStructure
	MaterialProperty     = catalog.MaterialProperty
	CatalogEvent         = catalog.CatalogEvent
	Attribution          = catalog.Attribution
)

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return append([]any{&User{}, &UserToken{}}, catalog.Models()...)
}
