package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pokedex-tracker/internal/api"
	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/rankings"

	"github.com/rs/zerolog"
)

// RefreshService mirrors the published ranking tables into the local data
// dir on a schedule and swaps the in-memory index afterwards. It is wired
// into the scheduler as a Job.
type RefreshService struct {
	client *api.RankingsClient
	tables *rankings.Store
	pvpDir string
	logger zerolog.Logger
}

func NewRefreshService(cfg *config.Config, client *api.RankingsClient, tables *rankings.Store, logger zerolog.Logger) *RefreshService {
	return &RefreshService{
		client: client,
		tables: tables,
		pvpDir: filepath.Join(cfg.DataDir, rankings.PvPDirName),
		logger: logger.With().Str("component", "refresh").Logger(),
	}
}

func (s *RefreshService) Name() string { return "rankings-refresh" }

// Run fetches every category/league table the index currently knows
// about. A single failed table is logged and skipped; the index reloads
// only when at least one table landed, so a full source outage leaves the
// previous snapshot serving.
func (s *RefreshService) Run(ctx context.Context) error {
	if !s.client.Enabled() {
		s.logger.Debug().Msg("no rankings source configured, skipping refresh")
		return nil
	}

	fetched := 0
	for _, category := range s.tables.Current().Categories() {
		for _, league := range []domain.League{domain.LeagueGreat, domain.LeagueUltra, domain.LeagueMaster} {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := s.client.FetchTable(ctx, category, league)
			if err != nil {
				s.logger.Warn().Err(err).Str("category", category).Str("league", string(league)).Msg("table fetch failed")
				continue
			}
			if err := s.writeTable(category, league, body); err != nil {
				s.logger.Error().Err(err).Str("category", category).Str("league", string(league)).Msg("table write failed")
				continue
			}
			fetched++
		}
	}

	if fetched == 0 {
		return fmt.Errorf("no ranking tables could be fetched")
	}

	s.logger.Info().Int("tables", fetched).Msg("ranking tables refreshed")
	return s.tables.Reload()
}

// writeTable lands a table via temp file plus rename so a reload never
// reads a half-written file.
func (s *RefreshService) writeTable(category string, league domain.League, body []byte) error {
	dir := filepath.Join(s.pvpDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, fmt.Sprintf("rankings-%d.json", league.CPCap()))
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
