// Package pvp matches enriched records against competitive ranking tables
// and annotates each one with its ideal-spread comparison for a league.
package pvp

import (
	"math"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/master"
	"pokedex-tracker/internal/rankings"

	"github.com/rs/zerolog"
)

type Matcher struct {
	master *master.Index
	levels map[domain.League]float64
	logger zerolog.Logger
}

func NewMatcher(cfg *config.Config, masterIdx *master.Index, logger zerolog.Logger) *Matcher {
	return &Matcher{
		master: masterIdx,
		levels: map[domain.League]float64{
			domain.LeagueGreat:  cfg.GreatLeagueLevel,
			domain.LeagueUltra:  cfg.UltraLeagueLevel,
			domain.LeagueMaster: cfg.MasterLeagueLevel,
		},
		logger: logger.With().Str("component", "pvp").Logger(),
	}
}

// Match annotates every record for one league/category pair, preserving
// input order and count. A record that is over the league's CP cap, has no
// ranking entry, or cannot be priced (missing multiplier table) carries no
// pvp fields; it is never dropped.
func (m *Matcher) Match(records []domain.EnrichedRecord, league domain.League, category string, idx *rankings.Index) []domain.PvPRecord {
	out := make([]domain.PvPRecord, len(records))
	for i := range records {
		out[i].EnrichedRecord = records[i]
	}

	if !idx.HasTable(league, category) || !m.master.HasCPM() {
		return out
	}
	cpm := m.master.CPM(m.levels[league])

	for i := range records {
		rec := &records[i]
		if rec.CP > league.CPCap() {
			continue
		}

		candidates := rankings.PrefixCandidates(rec.Name, rec.Form, rec.Shadow)
		entry, ok := idx.BestEntry(league, category, candidates)
		if !ok {
			continue
		}

		out[i].PvPFields = &domain.PvPFields{
			Enabled:      true,
			League:       league,
			Category:     category,
			SpeciesID:    entry.SpeciesID,
			Rank:         entry.Rank,
			Rating:       entry.Rating,
			IdealAttack:  entry.IdealAttack,
			IdealDefence: entry.IdealDefence,
			IdealStamina: entry.IdealStamina,
			IdealCP:      idealCP(rec, entry, cpm),
			MeetsAttack:  rec.Attack == entry.IdealAttack,
			MeetsDefence: rec.Defence == entry.IdealDefence,
			MeetsStamina: rec.Stamina == entry.IdealStamina,
		}
	}

	return out
}

// idealCP prices the entry's ideal spread on this record's base stats at
// the league's configured level: floor(A * sqrt(D) * sqrt(S) / 10) with
// each effective stat as (base + ideal IV) * cpm, never below the 10 CP
// floor.
func idealCP(rec *domain.EnrichedRecord, entry *domain.RankingEntry, cpm float64) int {
	if cpm == 0 || rec.BaseAttack == 0 {
		return 0
	}

	atk := (float64(rec.BaseAttack) + float64(entry.IdealAttack)) * cpm
	def := (float64(rec.BaseDefence) + float64(entry.IdealDefence)) * cpm
	sta := (float64(rec.BaseStamina) + float64(entry.IdealStamina)) * cpm

	cp := int(math.Floor(atk * math.Sqrt(def) * math.Sqrt(sta) / 10))
	if cp < 10 {
		return 10
	}
	return cp
}
