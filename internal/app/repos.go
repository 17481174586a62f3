package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/data/repos"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	UserToken   repos.UserTokenRepo
	System      repos.SystemRepo
	Publication repos.PublicationRepo
	Author      repos.AuthorRepo
	Vocabulary  repos.VocabularyRepo
	Dataset     repos.DatasetRepo
	Entry       repos.EntryRepo
	Event       repos.EventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		UserToken:   repos.NewUserTokenRepo(db, log),
		System:      repos.NewSystemRepo(db, log),
		Publication: repos.NewPublicationRepo(db, log),
		Author:      repos.NewAuthorRepo(db, log),
		Vocabulary:  repos.NewVocabularyRepo(db, log),
		Dataset:     repos.NewDatasetRepo(db, log),
		Entry:       repos.NewEntryRepo(db, log),
		Event:       repos.NewEventRepo(db, log),
	}
}
