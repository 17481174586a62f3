package catalog

import "github.com/google/uuid"

type Publication struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Journal     string    `gorm:"column:journal" json:"journal"`
	Volume      string    `gorm:"column:volume" json:"volume"`
	PagesStart  string    `gorm:"column:pages_start" json:"pages_start"`
	PagesEnd    string    `gorm:"column:pages_end" json:"pages_end"`
	Year        string    `gorm:"column:year" json:"year"`
	DOIISBN     string    `gorm:"column:doi_isbn;index" json:"doi_isbn"`
	AuthorCount int       `gorm:"not null;default:0;column:author_count" json:"author_count"`
	Authors     []Author  `gorm:"many2many:publication_author;" json:"authors,omitempty"`
	Attribution
}

func (Publication) TableName() string { return "publication" }

type Author struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string        `gorm:"not null;column:first_name" json:"first_name"`
	LastName     string        `gorm:"not null;index;column:last_name" json:"last_name"`
	Institution  string        `gorm:"column:institution" json:"institution"`
	Publications []Publication `gorm:"many2many:publication_author;" json:"publications,omitempty"`
	Attribution
}

func (Author) TableName() string { return "author" }
