package catalog

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/platform/analysis"
)

// RemoteSearcher looks medicines up in the analysis backend dataset.
type RemoteSearcher interface {
	SearchMedicines(ctx context.Context, q string) ([]analysis.MedicineHit, error)
}

type Service struct {
	index  *Index
	remote RemoteSearcher
	logger zerolog.Logger
}

func NewService(index *Index, logger zerolog.Logger) *Service {
	if index == nil {
		index = NewIndex(DefaultMedicines())
	}
	return &Service{index: index, logger: logger}
}

// SetRemote makes Search ask r first. A nil r searches the local index only.
func (s *Service) SetRemote(r RemoteSearcher) {
	s.remote = r
}

// Search returns suggestions for q. The remote dataset is preferred; any
// remote failure or an empty remote answer falls back to the local index
// without surfacing an error.
func (s *Service) Search(ctx context.Context, q string) SearchResult {
	q = strings.TrimSpace(q)
	res := SearchResult{Query: q, Source: SourceLocal, Results: []Match{}, Custom: Custom(q)}
	if utf8.RuneCountInString(q) < MinQueryLength {
		return res
	}

	if s.remote != nil {
		hits, err := s.remote.SearchMedicines(ctx, q)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", q).Msg("remote medicine search failed, using local catalog")
		} else if matches := fromHits(hits); len(matches) > 0 {
			res.Source = SourceRemote
			res.Results = matches
			return res
		}
	}

	if local := s.index.Search(q, DefaultLimit); len(local) > 0 {
		res.Results = local
	}
	return res
}

// Options returns the common picker values.
func (s *Service) Options() Options {
	return CommonOptions()
}

// Custom wraps a typed name that should be accepted as is.
func Custom(name string) Medicine {
	return Medicine{ID: "custom", Name: strings.TrimSpace(name), Type: TypeCustom}
}

func fromHits(hits []analysis.MedicineHit) []Match {
	if len(hits) > DefaultLimit {
		hits = hits[:DefaultLimit]
	}
	out := make([]Match, 0, len(hits))
	for i, h := range hits {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			continue
		}
		out = append(out, Match{Medicine: Medicine{
			ID:           "remote-" + strconv.Itoa(i+1),
			Name:         name,
			Category:     h.Category,
			Strength:     h.Strength,
			Manufacturer: h.Manufacturer,
		}})
	}
	return out
}
