package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/observability"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/pkg/rangeparse"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type SearchTerm string

const (
	SearchFormula         SearchTerm = "formula"
	SearchOrganic         SearchTerm = "organic"
	SearchInorganic       SearchTerm = "inorganic"
	SearchExcitonEmission SearchTerm = "exciton_emission"
	SearchAuthor          SearchTerm = "author"
)

// SearchTerms are offered by the search form in display order.
var SearchTerms = []struct {
	Term  SearchTerm `json:"term"`
	Label string     `json:"label"`
}{
	{SearchFormula, "Formula"},
	{SearchOrganic, "Organic Component"},
	{SearchInorganic, "Inorganic Component"},
	{SearchExcitonEmission, "Exciton Emission"},
	{SearchAuthor, "Author"},
}

// ExcitonHit is one exciton emission row matched by a range search, with the
// first related entry of each other kind (uuid.Nil when there is none).
type ExcitonHit struct {
	CompoundName      string    `json:"compound_name"`
	CommonFormula     string    `json:"common_formula"`
	ChemicalFormula   string    `json:"chemical_formula"`
	ExcitonEmission   string    `json:"ee"`
	SystemID          uuid.UUID `json:"sys_id"`
	ExcitonEmissionID uuid.UUID `json:"ee_id"`
	SynthesisID       uuid.UUID `json:"syn_id"`
	AtomicPositionsID uuid.UUID `json:"apos_id"`
	BandStructureID   uuid.UUID `json:"bs_id"`
}

type SearchResult struct {
	Term    SearchTerm      `json:"search_term"`
	Systems []*types.System `json:"systems"`
	Hits    []ExcitonHit    `json:"systems_info"`
	// Range is the canonical filter applied to an exciton search, empty when none.
	Range string `json:"range,omitempty"`
}

type SearchService interface {
	Search(ctx context.Context, term SearchTerm, text string) (*SearchResult, error)
}

type searchService struct {
	log     *logger.Logger
	systems repos.SystemRepo
	entries repos.EntryRepo
	metrics *observability.Metrics
}

func NewSearchService(log *logger.Logger, systems repos.SystemRepo, entries repos.EntryRepo, metrics *observability.Metrics) SearchService {
	return &searchService{
		log:     log.With("service", "SearchService"),
		systems: systems,
		entries: entries,
		metrics: metrics,
	}
}

func (s *searchService) Search(ctx context.Context, term SearchTerm, text string) (*SearchResult, error) {
	if term == "" {
		term = SearchFormula
	}
	text = clean(text)
	dbc := dbctx.Context{Ctx: ctx}
	out := &SearchResult{Term: term, Systems: []*types.System{}, Hits: []ExcitonHit{}}
	var err error
	switch term {
	case SearchFormula:
		out.Systems, err = s.systems.SearchField(dbc, repos.SystemFieldFormula, text)
	case SearchOrganic:
		out.Systems, err = s.systems.SearchField(dbc, repos.SystemFieldOrganic, text)
	case SearchInorganic:
		out.Systems, err = s.systems.SearchField(dbc, repos.SystemFieldInorganic, text)
	case SearchAuthor:
		out.Systems, err = s.systems.SearchByAuthorLastNames(dbc, strings.Fields(text))
	case SearchExcitonEmission:
		err = s.excitonHits(dbc, text, out)
	default:
		return nil, fmt.Errorf("search term %q: %w", term, pkgerrors.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", term, err)
	}
	s.metrics.IncSearch(string(term), out.Range != "")
	return out, nil
}

// excitonHits filters on the peak value when text parses as a range and lists
// every exciton emission otherwise.
func (s *searchService) excitonHits(dbc dbctx.Context, text string, out *SearchResult) error {
	q, ok := rangeparse.Parse(text)
	if ok {
		out.Range = q.String()
	} else {
		q = rangeparse.Query{}
	}
	rows, err := s.entries.SearchExcitonEmission(dbc, q)
	if err != nil {
		return err
	}
	firsts := map[uuid.UUID]repos.EntryIDs{}
	for _, ee := range rows {
		ids, seen := firsts[ee.SystemID]
		if !seen {
			if ids, err = s.entries.FirstIDs(dbc, ee.SystemID); err != nil {
				return err
			}
			firsts[ee.SystemID] = ids
		}
		hit := ExcitonHit{
			ExcitonEmission:   pythonFloat(ee.ExcitonEmission),
			SystemID:          ee.SystemID,
			ExcitonEmissionID: ee.ID,
			SynthesisID:       ids.Synthesis,
			AtomicPositionsID: ids.AtomicPositions,
			BandStructureID:   ids.BandStructure,
		}
		if ee.System != nil {
			hit.CompoundName = ee.System.CompoundName
			hit.CommonFormula = ee.System.Group
			hit.ChemicalFormula = ee.System.Formula
		}
		out.Hits = append(out.Hits, hit)
	}
	return nil
}

// pythonFloat renders a float the way the catalog has always displayed peak
// values: the shortest round-tripping digits, ".0" on integral values, and
// exponent form ("1e-07", "1e+16") once the decimal exponent is below -4 or
// at least 16.
func pythonFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
