package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath     string
	DataDir    string
	UploadsDir string
	ServerPort string
	LogLevel   string

	// RankingsBaseURL is the third-party source the refresh job pulls
	// league/category tables from. Empty disables the job; the index then
	// only sees whatever files already sit under DataDir.
	RankingsBaseURL string
	RefreshSchedule string

	// Tier boundaries over ivPercent, ascending. A record falls into the
	// highest bucket whose boundary it reaches; 100% is always the top
	// bucket. These are display conventions, kept as configuration.
	TierBoundaries []float64

	// Team composition knobs.
	TeamCandidatePool int // max candidates considered, by meta rank
	TeamBeamWidth     int // partial teams kept per beam level
	TeamMaxTeams      int // teams returned
	TeamSummaryTopN   int // strengths/weaknesses listed per team
	MatchupThreshold  int // rating at which a matchup counts as a strength
	CoverageThreshold int // rating at which a threat counts as covered

	// Per-league level the ideal-spread CP is priced at. Half levels are
	// allowed wherever the multiplier table covers them.
	GreatLeagueLevel  float64
	UltraLeagueLevel  float64
	MasterLeagueLevel float64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "pokedex.db"),
		DataDir:         getEnv("DATA_DIR", "data"),
		UploadsDir:      getEnv("UPLOADS_DIR", "uploads"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RankingsBaseURL: getEnv("RANKINGS_BASE_URL", ""),
		RefreshSchedule: getEnv("RANKINGS_REFRESH_SCHEDULE", "@every 24h"),

		// 0* is reserved for 0%, 4* for exactly 100%; the middle bands
		// follow the in-game appraisal cut-offs (23/45 and 37/45).
		TierBoundaries: []float64{0, 0.1, 51.1, 82.2, 100},

		TeamCandidatePool: getEnvInt("TEAM_CANDIDATE_POOL", 30),
		TeamBeamWidth:     getEnvInt("TEAM_BEAM_WIDTH", 48),
		TeamMaxTeams:      getEnvInt("TEAM_MAX_TEAMS", 3),
		TeamSummaryTopN:   getEnvInt("TEAM_SUMMARY_TOP_N", 8),
		MatchupThreshold:  getEnvInt("TEAM_MATCHUP_THRESHOLD", 550),
		CoverageThreshold: getEnvInt("TEAM_COVERAGE_THRESHOLD", 550),

		GreatLeagueLevel:  getEnvFloat("GREAT_LEAGUE_LEVEL", 50),
		UltraLeagueLevel:  getEnvFloat("ULTRA_LEAGUE_LEVEL", 50),
		MasterLeagueLevel: getEnvFloat("MASTER_LEAGUE_LEVEL", 50),
	}

	if cfg.TeamCandidatePool < 3 {
		return nil, fmt.Errorf("TEAM_CANDIDATE_POOL must be at least 3, got %d", cfg.TeamCandidatePool)
	}
	if cfg.TeamBeamWidth < 1 {
		return nil, fmt.Errorf("TEAM_BEAM_WIDTH must be positive, got %d", cfg.TeamBeamWidth)
	}
	if len(cfg.TierBoundaries) != 5 {
		return nil, fmt.Errorf("tier boundaries must define 5 buckets, got %d", len(cfg.TierBoundaries))
	}
	for name, level := range map[string]float64{
		"GREAT_LEAGUE_LEVEL":  cfg.GreatLeagueLevel,
		"ULTRA_LEAGUE_LEVEL":  cfg.UltraLeagueLevel,
		"MASTER_LEAGUE_LEVEL": cfg.MasterLeagueLevel,
	} {
		if level <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %v", name, level)
		}
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("data_dir", cfg.DataDir).
		Str("uploads_dir", cfg.UploadsDir).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("refresh_schedule", cfg.RefreshSchedule).
		Bool("rankings_refresh_enabled", cfg.RankingsBaseURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
