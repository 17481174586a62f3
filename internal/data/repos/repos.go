package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/data/repos/auth"
	"github.com/yungbote/materials-backend/internal/data/repos/catalog"
	"github.com/yungbote/materials-backend/internal/data/repos/user"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type SystemRepo = catalog.SystemRepo
type PublicationRepo = catalog.PublicationRepo
type AuthorRepo = catalog.AuthorRepo
type VocabularyRepo = catalog.VocabularyRepo
type DatasetRepo = catalog.DatasetRepo
type EntryRepo = catalog.EntryRepo
type EventRepo = catalog.EventRepo

type EntryIDs = catalog.EntryIDs
type SystemField = catalog.SystemField

const (
	SystemFieldFormula   = catalog.SystemFieldFormula
	SystemFieldOrganic   = catalog.SystemFieldOrganic
	SystemFieldInorganic = catalog.SystemFieldInorganic
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewSystemRepo(db *gorm.DB, baseLog *logger.Logger) SystemRepo {
	return catalog.NewSystemRepo(db, baseLog)
}
func NewPublicationRepo(db *gorm.DB, baseLog *logger.Logger) PublicationRepo {
	return catalog.NewPublicationRepo(db, baseLog)
}
func NewAuthorRepo(db *gorm.DB, baseLog *logger.Logger) AuthorRepo {
	return catalog.NewAuthorRepo(db, baseLog)
}
func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return catalog.NewVocabularyRepo(db, baseLog)
}
func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return catalog.NewDatasetRepo(db, baseLog)
}
func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return catalog.NewEntryRepo(db, baseLog)
}
func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return catalog.NewEventRepo(db, baseLog)
}
