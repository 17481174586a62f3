package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// DatasetDataPath and DatasetImagePath are the public routes serving a
// dataset's data.txt and plot.
func DatasetDataPath(id uuid.UUID) string {
	return fmt.Sprintf("/api/datasets/%s/data.txt", id)
}

func DatasetImagePath(id uuid.UUID) string {
	return fmt.Sprintf("/api/datasets/%s/image.png", id)
}

// PublicationReport is the key-value description of a publication's datasets
// in the layout Qresp (http://qresp.org/) reads.
type PublicationReport struct {
	Info        ReportInfo      `json:"info"`
	Reference   ReportReference `json:"reference"`
	PIs         []ReportPerson  `json:"PIs"`
	Collections []string        `json:"collections"`
	Charts      []ReportChart   `json:"charts"`
}

type ReportInfo struct {
	DownloadPath       string         `json:"downloadPath"`
	FileServerPath     string         `json:"fileServerPath"`
	FolderAbsolutePath string         `json:"folderAbsolutePath"`
	InsertedBy         ReportInserter `json:"insertedBy"`
	IsPublic           string         `json:"isPublic"`
	NotebookFile       string         `json:"notebookFile"`
	NotebookPath       string         `json:"notebookPath"`
	ServerPath         string         `json:"serverPath"`
	TimeStamp          string         `json:"timeStamp"`
}

type ReportInserter struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
}

type ReportReference struct {
	Journal ReportJournal  `json:"journal"`
	Authors []ReportPerson `json:"authors"`
}

type ReportJournal struct {
	AbbrevName        string `json:"abbrevName"`
	FullName          string `json:"fullName"`
	Kind              string `json:"kind"`
	Page              string `json:"page"`
	PublishedAbstract string `json:"publishedAbstract"`
	PublishedDate     string `json:"publishedDate"`
	ReceivedDate      string `json:"receivedDate"`
	Title             string `json:"title"`
	Volume            string `json:"volume"`
	Year              string `json:"year"`
}

type ReportPerson struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type ReportChart struct {
	Caption      string   `json:"caption"`
	Files        []string `json:"files"`
	ID           string   `json:"id"`
	ImageFile    string   `json:"imageFile"`
	Kind         string   `json:"kind"`
	NotebookFile string   `json:"notebookFile"`
	Number       int      `json:"number"`
	Properties   []string `json:"properties"`
}

const reportTimeLayout = "2006-01-02 15:04:05"

type ReportService interface {
	PublicationReport(ctx context.Context, publicationID uuid.UUID, host string) (*PublicationReport, error)
}

type reportService struct {
	log      *logger.Logger
	pubs     repos.PublicationRepo
	datasets repos.DatasetRepo
	store    filestore.FileStore
	metrics  *observability.Metrics
}

func NewReportService(log *logger.Logger, pubs repos.PublicationRepo, datasets repos.DatasetRepo, store filestore.FileStore, metrics *observability.Metrics) ReportService {
	return &reportService{
		log:      log.With("service", "ReportService"),
		pubs:     pubs,
		datasets: datasets,
		store:    store,
		metrics:  metrics,
	}
}

func (s *reportService) PublicationReport(ctx context.Context, publicationID uuid.UUID, host string) (*PublicationReport, error) {
	dbc := dbctx.Context{Ctx: ctx}
	pub, err := s.pubs.GetByID(dbc, publicationID)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		s.metrics.ObserveDownload("publication_report", "not_found", 0)
		return nil, notFound("publication", publicationID)
	}
	out := &PublicationReport{
		Info: ReportInfo{
			DownloadPath: host,
			IsPublic:     "true",
			ServerPath:   host,
			TimeStamp:    pub.CreatedAt.UTC().Format(reportTimeLayout),
		},
		Reference: ReportReference{
			Journal: ReportJournal{
				AbbrevName: pub.Journal,
				FullName:   pub.Journal,
				Kind:       "journal",
				Page:       pub.PagesStart,
				Title:      pub.Title,
				Volume:     pub.Volume,
				Year:       pub.Year,
			},
			Authors: make([]ReportPerson, 0, len(pub.Authors)),
		},
		PIs:         []ReportPerson{{}},
		Collections: []string{""},
		Charts:      []ReportChart{},
	}
	for _, a := range pub.Authors {
		out.Reference.Authors = append(out.Reference.Authors, ReportPerson{FirstName: a.FirstName, LastName: a.LastName})
	}

	list, err := s.datasets.ListByPublication(dbc, publicationID)
	if err != nil {
		return nil, err
	}
	for i, ds := range list {
		chart := ReportChart{
			Caption:    ds.Label,
			Files:      []string{DatasetDataPath(ds.ID)},
			ImageFile:  DatasetImagePath(ds.ID),
			Kind:       "table",
			Number:     i + 1,
			Properties: []string{},
		}
		if ds.Plotted {
			chart.Kind = "figure"
		}
		if ds.SecondaryProperty != nil {
			chart.Properties = append(chart.Properties, ds.SecondaryProperty.Name)
		}
		if ds.PrimaryProperty != nil {
			chart.Properties = append(chart.Properties, ds.PrimaryProperty.Name)
		}
		dir := ds.UploadDir()
		names, err := s.store.List(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, name := range names {
			chart.Files = append(chart.Files, s.store.URL(filestore.Join(dir, name)))
		}
		out.Charts = append(out.Charts, chart)
	}
	s.metrics.ObserveDownload("publication_report", "ok", len(out.Charts))
	return out, nil
}
