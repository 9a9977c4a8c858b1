// Package rankings loads the externally-sourced competitive ranking tables
// and serves lookups by (league, category, species). Tables live under
// <dataDir>/pvp/<category>/rankings-<cap>.json and are refreshed out of
// band; the Store swaps in a freshly built Index on reload so concurrent
// readers always see a consistent snapshot.
package rankings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const (
	PvPDirName      = "pvp"
	CategoryOverall = "overall"
)

type table struct {
	entries   []*domain.RankingEntry
	bySpecies map[string]*domain.RankingEntry
	names     map[string]string
}

// Index is an immutable snapshot of all loaded ranking tables.
type Index struct {
	tables     map[domain.League]map[string]*table
	categories []string
}

// Store hands out the current Index and accepts replacements on refresh.
type Store struct {
	mu     sync.RWMutex
	index  *Index
	cfg    *config.Config
	logger zerolog.Logger
}

func NewStore(cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	s := &Store{cfg: cfg, logger: logger.With().Str("component", "rankings").Logger()}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active index snapshot.
func (s *Store) Current() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Reload rebuilds the index from disk and swaps it in atomically.
func (s *Store) Reload() error {
	idx, err := Load(s.cfg.DataDir, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	s.logger.Info().Strs("categories", idx.categories).Msg("ranking tables loaded")
	return nil
}

type rankingRow struct {
	SpeciesID   string `json:"speciesId"`
	SpeciesName string `json:"speciesName"`
	Rating      int    `json:"rating"`
	IVs         struct {
		Atk int `json:"atk"`
		Def int `json:"def"`
		Sta int `json:"sta"`
	} `json:"ivs"`
	Matchups []domain.Matchup `json:"matchups"`
	Counters []domain.Matchup `json:"counters"`
}

// Load scans the pvp directory for category subdirectories and builds an
// index over every readable table. A missing category or league file is
// simply absent; a table with out-of-range stat values is rejected and
// logged, never installed.
func Load(dataDir string, logger zerolog.Logger) (*Index, error) {
	idx := &Index{tables: map[domain.League]map[string]*table{
		domain.LeagueGreat:  {},
		domain.LeagueUltra:  {},
		domain.LeagueMaster: {},
	}}

	pvpDir := filepath.Join(dataDir, PvPDirName)
	catSet := map[string]bool{CategoryOverall: true}

	dirEntries, err := os.ReadDir(pvpDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read pvp dir: %w", err)
	}
	for _, de := range dirEntries {
		if de.IsDir() && !strings.HasPrefix(de.Name(), ".") {
			catSet[strings.ToLower(de.Name())] = true
		}
	}

	for cat := range catSet {
		for _, league := range []domain.League{domain.LeagueGreat, domain.LeagueUltra, domain.LeagueMaster} {
			path := filepath.Join(pvpDir, cat, fmt.Sprintf("rankings-%d.json", league.CPCap()))
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			t, err := parseTable(raw)
			if err != nil {
				logger.Error().Err(err).Str("category", cat).Str("league", string(league)).Msg("rejecting ranking table")
				continue
			}
			idx.tables[league][cat] = t
		}
	}

	idx.categories = make([]string, 0, len(catSet))
	for cat := range catSet {
		idx.categories = append(idx.categories, cat)
	}
	sort.Strings(idx.categories)

	return idx, nil
}

// parseTable decodes one ranking file. Rank is derived from list order
// (1-based); duplicate species keep their best (lowest) rank.
func parseTable(raw []byte) (*table, error) {
	var rows []rankingRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode ranking table: %w", err)
	}

	t := &table{
		bySpecies: make(map[string]*domain.RankingEntry, len(rows)),
		names:     make(map[string]string, len(rows)),
	}

	rank := 0
	for _, row := range rows {
		if row.SpeciesID == "" {
			continue
		}
		if outOfRange(row.IVs.Atk) || outOfRange(row.IVs.Def) || outOfRange(row.IVs.Sta) {
			return nil, fmt.Errorf("entry %q has out-of-range ideal stats %d/%d/%d",
				row.SpeciesID, row.IVs.Atk, row.IVs.Def, row.IVs.Sta)
		}
		rank++

		if _, dup := t.bySpecies[row.SpeciesID]; dup {
			continue
		}

		name := row.SpeciesName
		if name == "" {
			name = strings.ReplaceAll(row.SpeciesID, "_", " ")
		}

		entry := &domain.RankingEntry{
			SpeciesID:    row.SpeciesID,
			SpeciesName:  name,
			Rating:       row.Rating,
			Rank:         rank,
			IdealAttack:  row.IVs.Atk,
			IdealDefence: row.IVs.Def,
			IdealStamina: row.IVs.Sta,
			Matchups:     row.Matchups,
			Counters:     row.Counters,
		}
		t.entries = append(t.entries, entry)
		t.bySpecies[row.SpeciesID] = entry

		t.names[row.SpeciesID] = name
		if base, ok := strings.CutSuffix(row.SpeciesID, "_shadow"); ok {
			if _, seen := t.names[base]; !seen {
				t.names[base] = name
			}
		}
	}

	return t, nil
}

func outOfRange(iv int) bool {
	return iv < constants.IVMin || iv > constants.IVMax
}

// Categories returns the data-driven category list, "overall" included.
func (i *Index) Categories() []string { return i.categories }

// HasTable reports whether a table is loaded for the league/category pair.
func (i *Index) HasTable(league domain.League, category string) bool {
	return i.table(league, category) != nil
}

func (i *Index) table(league domain.League, category string) *table {
	byCat, ok := i.tables[league]
	if !ok {
		return nil
	}
	return byCat[strings.ToLower(category)]
}

// Lookup resolves a species id exactly within one league/category table.
func (i *Index) Lookup(league domain.League, category, speciesID string) (*domain.RankingEntry, bool) {
	t := i.table(league, category)
	if t == nil {
		return nil, false
	}
	e, ok := t.bySpecies[speciesID]
	return e, ok
}

// BestEntry resolves the first candidate key that matches the table,
// trying exact ids, then boundary-prefixed ids ("azumarill" matching
// "azumarill_shadow"), then loose prefixes, keeping the highest-rated hit
// at each level. Candidates are evaluated strictly in order: the priority
// of the fallback chain is the caller's, not the table's.
func (i *Index) BestEntry(league domain.League, category string, candidates []string) (*domain.RankingEntry, bool) {
	t := i.table(league, category)
	if t == nil {
		return nil, false
	}

	for _, prefix := range candidates {
		if prefix == "" {
			continue
		}
		if e, ok := t.bySpecies[prefix]; ok {
			return e, true
		}

		var boundary, loose *domain.RankingEntry
		for _, e := range t.entries {
			if strings.HasPrefix(e.SpeciesID, prefix+"_") {
				if boundary == nil || e.Rating > boundary.Rating {
					boundary = e
				}
			} else if strings.HasPrefix(e.SpeciesID, prefix) {
				if loose == nil || e.Rating > loose.Rating {
					loose = e
				}
			}
		}
		if boundary != nil {
			return boundary, true
		}
		if loose != nil {
			return loose, true
		}
	}

	return nil, false
}

// DisplayName maps a species id to its table display name, falling back to
// the shadow-stripped id and finally to a de-underscored id.
func (i *Index) DisplayName(league domain.League, category, speciesID string) string {
	t := i.table(league, category)
	if t != nil {
		if name, ok := t.names[speciesID]; ok {
			return name
		}
		base := strings.TrimSuffix(speciesID, "_shadow")
		if name, ok := t.names[base]; ok {
			return name
		}
	}
	return strings.ReplaceAll(speciesID, "_", " ")
}
