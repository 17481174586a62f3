package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type PublicationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Publication) ([]*types.Publication, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Publication, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Publication, error)
	ExistsByDOI(dbc dbctx.Context, doi string) (bool, error)
	AttachAuthors(dbc dbctx.Context, pub *types.Publication, authors []*types.Author) error

	ListByYear(dbc dbctx.Context) ([]*types.Publication, error)
	SearchByAuthor(dbc dbctx.Context, text string) ([]*types.Publication, error)
	SearchByTitleOrJournal(dbc dbctx.Context, text string) ([]*types.Publication, error)
}

type publicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPublicationRepo(db *gorm.DB, baseLog *logger.Logger) PublicationRepo {
	return &publicationRepo{db: db, log: baseLog.With("repo", "PublicationRepo")}
}

func (r *publicationRepo) Create(dbc dbctx.Context, rows []*types.Publication) ([]*types.Publication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Publication{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *publicationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Publication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Publication
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Authors", func(db *gorm.DB) *gorm.DB { return db.Order("author.created_at ASC").Order("author.last_name ASC") }).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *publicationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Publication, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ExistsByDOI is false for an empty doi; blank identifiers never collide.
func (r *publicationRepo) ExistsByDOI(dbc dbctx.Context, doi string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Publication{}).
		Where("doi_isbn = ?", doi).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *publicationRepo) AttachAuthors(dbc dbctx.Context, pub *types.Publication, authors []*types.Author) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if pub == nil || len(authors) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(pub).Association("Authors").Append(authors)
}

func (r *publicationRepo) ListByYear(dbc dbctx.Context) ([]*types.Publication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Publication
	if err := t.WithContext(dbc.Ctx).Order("year ASC").Order("title ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByAuthor matches publications with an author whose first name, last
// name or institution contains text.
func (r *publicationRepo) SearchByAuthor(dbc dbctx.Context, text string) ([]*types.Publication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	pat := containsPattern(text)
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Table("publication_author AS pa").
		Distinct("pa.publication_id").
		Joins("JOIN author a ON a.id = pa.author_id").
		Where(icontains("a.first_name")+" OR "+icontains("a.last_name")+" OR "+icontains("a.institution"), pat, pat, pat).
		Pluck("pa.publication_id", &ids).Error; err != nil {
		return nil, err
	}
	var out []*types.Publication
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Order("year ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *publicationRepo) SearchByTitleOrJournal(dbc dbctx.Context, text string) ([]*types.Publication, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	pat := containsPattern(text)
	var out []*types.Publication
	if err := t.WithContext(dbc.Ctx).
		Where(icontains("title")+" OR "+icontains("journal"), pat, pat).
		Order("year ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type AuthorRepo interface {
	Create(dbc dbctx.Context, rows []*types.Author) ([]*types.Author, error)
	// FindExact matches first name, last name and institution case-insensitively.
	FindExact(dbc dbctx.Context, firstName, lastName, institution string) (*types.Author, error)
	// ExistsLike is the duplicate check used when adding a standalone author:
	// exact names, institution contained.
	ExistsLike(dbc dbctx.Context, firstName, lastName, institution string) (bool, error)
	Search(dbc dbctx.Context, text string) ([]*types.Author, error)
}

type authorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthorRepo(db *gorm.DB, baseLog *logger.Logger) AuthorRepo {
	return &authorRepo{db: db, log: baseLog.With("repo", "AuthorRepo")}
}

func (r *authorRepo) Create(dbc dbctx.Context, rows []*types.Author) ([]*types.Author, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Author{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *authorRepo) FindExact(dbc dbctx.Context, firstName, lastName, institution string) (*types.Author, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Author
	if err := t.WithContext(dbc.Ctx).
		Where(iexact("first_name")+" AND "+iexact("last_name")+" AND "+iexact("institution"),
			norm(firstName), norm(lastName), norm(institution)).
		Order("created_at ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *authorRepo) ExistsLike(dbc dbctx.Context, firstName, lastName, institution string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Author{}).
		Where(iexact("first_name")+" AND "+iexact("last_name")+" AND "+icontains("institution"),
			norm(firstName), norm(lastName), containsPattern(institution)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *authorRepo) Search(dbc dbctx.Context, text string) ([]*types.Author, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	pat := containsPattern(text)
	var out []*types.Author
	if err := t.WithContext(dbc.Ctx).
		Where(icontains("first_name")+" OR "+icontains("last_name")+" OR "+icontains("institution"), pat, pat, pat).
		Order("last_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
