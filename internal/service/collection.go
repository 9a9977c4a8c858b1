package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/pvp"
	"pokedex-tracker/internal/rankings"
	"pokedex-tracker/internal/search"
	"pokedex-tracker/internal/storage"
	"pokedex-tracker/internal/teams"

	"github.com/rs/zerolog"
)

// ErrNotFound covers a missing upload or a raw upload whose enriched
// companion never landed.
var ErrNotFound = fmt.Errorf("file not found")

// QueryOptions carries the optional view parameters of a collection read.
type QueryOptions struct {
	Search    string
	OrderBy   string
	OrderDir  string
	Unique    bool
	PvP       bool
	League    domain.League
	Category  string
	BestTeams bool
}

// QueryResult is the response shape of a collection read: the (possibly
// filtered and annotated) records plus composed teams when requested.
type QueryResult struct {
	Count   int                `json:"count"`
	Records []domain.PvPRecord `json:"pokemons"`
	Teams   []domain.Team      `json:"teams,omitempty"`
}

type CollectionService struct {
	store    *storage.Store
	tables   *rankings.Store
	matcher  *pvp.Matcher
	composer *teams.Composer
	logger   zerolog.Logger
}

func NewCollectionService(store *storage.Store, tables *rankings.Store, matcher *pvp.Matcher, composer *teams.Composer, logger zerolog.Logger) *CollectionService {
	return &CollectionService{
		store:    store,
		tables:   tables,
		matcher:  matcher,
		composer: composer,
		logger:   logger,
	}
}

// Query loads one enriched collection and applies the requested view:
// pvp annotation first, then search, then unique collapsing, then sorting,
// then team composition over whatever survived the filters.
func (s *CollectionService) Query(ctx context.Context, userID, fileID string, opts QueryOptions) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := s.store.ReadEnriched(userID, fileID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	var enriched []domain.EnrichedRecord
	if err := json.Unmarshal(body, &enriched); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}

	var records []domain.PvPRecord
	idx := s.tables.Current()
	if opts.PvP {
		if !opts.League.Valid() {
			return nil, fmt.Errorf("unknown league %q", opts.League)
		}
		category := strings.ToLower(opts.Category)
		if category == "" {
			category = rankings.CategoryOverall
		}
		opts.Category = category
		records = s.matcher.Match(enriched, opts.League, category, idx)
	} else {
		records = make([]domain.PvPRecord, len(enriched))
		for i := range enriched {
			records[i].EnrichedRecord = enriched[i]
		}
	}

	records = search.Filter(records, opts.Search)
	if opts.Unique {
		records = search.Unique(records)
	}
	sortRecords(records, opts.OrderBy, opts.OrderDir)

	result := &QueryResult{Count: len(records), Records: records}
	if result.Records == nil {
		result.Records = []domain.PvPRecord{}
	}

	if opts.PvP && opts.BestTeams {
		result.Teams = s.composer.Compose(records, opts.League, opts.Category, idx)
	}

	return result, nil
}

// Categories lists the ranking categories currently loaded.
func (s *CollectionService) Categories() []string {
	return s.tables.Current().Categories()
}

// sortRecords orders records in place. The sort is stable so records that
// compare equal keep their snapshot order; unknown keys leave the order
// untouched. pvp_rank puts unranked records last regardless of direction.
func sortRecords(records []domain.PvPRecord, orderBy, orderDir string) {
	desc := strings.EqualFold(orderDir, "desc")

	var less func(a, b *domain.PvPRecord) bool
	switch strings.ToLower(orderBy) {
	case "name":
		less = func(a, b *domain.PvPRecord) bool { return a.Name < b.Name }
	case "number":
		less = func(a, b *domain.PvPRecord) bool { return a.Number < b.Number }
	case "cp":
		less = func(a, b *domain.PvPRecord) bool { return a.CP < b.CP }
	case "hp":
		less = func(a, b *domain.PvPRecord) bool { return a.HP < b.HP }
	case "iv":
		less = func(a, b *domain.PvPRecord) bool { return a.IVPercent < b.IVPercent }
	case "attack":
		less = func(a, b *domain.PvPRecord) bool { return a.Attack < b.Attack }
	case "defence":
		less = func(a, b *domain.PvPRecord) bool { return a.Defence < b.Defence }
	case "stamina":
		less = func(a, b *domain.PvPRecord) bool { return a.Stamina < b.Stamina }
	case "height":
		less = func(a, b *domain.PvPRecord) bool { return a.Height < b.Height }
	case "weight":
		less = func(a, b *domain.PvPRecord) bool { return a.Weight < b.Weight }
	case "captured_at":
		less = func(a, b *domain.PvPRecord) bool { return a.CapturedAt < b.CapturedAt }
	case "pvp_rank":
		sort.SliceStable(records, func(i, j int) bool {
			a, b := &records[i], &records[j]
			if (a.PvPFields == nil) != (b.PvPFields == nil) {
				return a.PvPFields != nil
			}
			if a.PvPFields == nil {
				return false
			}
			if desc {
				return a.Rank > b.Rank
			}
			return a.Rank < b.Rank
		})
		return
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}
