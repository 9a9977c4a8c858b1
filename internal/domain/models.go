package domain

// League identifies a competitive bracket with a fixed CP cap.
type League string

const (
	LeagueGreat  League = "great"
	LeagueUltra  League = "ultra"
	LeagueMaster League = "master"
)

// CPCap returns the league's CP ceiling. Master league is effectively
// uncapped; 10000 matches how the ranking tables are published.
func (l League) CPCap() int {
	switch l {
	case LeagueGreat:
		return 1500
	case LeagueUltra:
		return 2500
	case LeagueMaster:
		return 10000
	}
	return 0
}

// Valid reports whether l is one of the three known leagues.
func (l League) Valid() bool {
	return l == LeagueGreat || l == LeagueUltra || l == LeagueMaster
}

// ParseLeague maps common aliases ("GL", "1500", "great") onto a League.
func ParseLeague(s string) (League, bool) {
	switch s {
	case "great", "GL", "gl", "1500":
		return LeagueGreat, true
	case "ultra", "UL", "ul", "2500":
		return LeagueUltra, true
	case "master", "ML", "ml", "10000":
		return LeagueMaster, true
	}
	return "", false
}

// RawRecord is a single creature instance as decoded from an uploaded
// snapshot, after canonicalization but before enrichment.
type RawRecord struct {
	ID          string
	Number      int
	Form        string
	Name        string
	CP          int
	HP          int
	Attack      int
	Defence     int
	Stamina     int
	Height      float64
	Weight      float64
	Gender      string
	Alignment   string // "SHADOW", "PURIFIED" or empty
	Shiny       bool
	Lucky       bool
	Costume     string
	FastMove    string
	ChargedMove string
	Dynamax     bool
	Gigantamax  bool
	CapturedAt  int64 // ms since epoch, 0 when unknown

	// Suspect is set by the parser when out-of-range sub-stats were clamped.
	Suspect bool
}

// SpeciesEntry is the read-only master-data record for one species+form.
type SpeciesEntry struct {
	Number        int
	Name          string
	Form          string
	Types         []string
	Family        string
	Legendary     bool
	Mythic        bool
	PokedexHeight float64
	PokedexWeight float64
	BaseAttack    int
	BaseDefence   int
	BaseStamina   int
}

// EnrichedRecord is a RawRecord plus everything derived from it and from
// master data. Field names follow the response contract consumed by the
// frontend grid.
type EnrichedRecord struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Form   string `json:"form,omitempty"`
	Name   string `json:"name"`

	CP      int `json:"cp"`
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defence int `json:"defence"`
	Stamina int `json:"stamina"`

	IVPercent float64 `json:"iv"`
	Tier      int     `json:"iv_tier"`

	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	HeightLabel string  `json:"height_label"`
	WeightLabel string  `json:"weight_label"`

	Gender       string `json:"gender"`
	GenderSymbol string `json:"gender_symbol"`

	Shiny      bool `json:"shiny"`
	Lucky      bool `json:"lucky"`
	Shundo     bool `json:"shundo"`
	Nundo      bool `json:"nundo"`
	Shadow     bool `json:"shadow"`
	Purified   bool `json:"purified"`
	Apex       bool `json:"apex"`
	Legendary  bool `json:"legendary"`
	Mythic     bool `json:"mythical"`
	Dynamax    bool `json:"dynamax"`
	Gigantamax bool `json:"gigantamax"`

	Costume     string `json:"costume,omitempty"`
	FastMove    string `json:"move_1"`
	ChargedMove string `json:"move_2"`

	Family        string   `json:"family,omitempty"`
	Types         []string `json:"types"`
	PokedexHeight float64  `json:"pokedex_height,omitempty"`
	PokedexWeight float64  `json:"pokedex_weight,omitempty"`
	BaseAttack    int      `json:"base_attack"`
	BaseDefence   int      `json:"base_defence"`
	BaseStamina   int      `json:"base_stamina"`

	SearchText    string `json:"search_text"`
	Image         string `json:"image"`
	ImageAnimated string `json:"image_animated,omitempty"`

	CapturedAt int64 `json:"captured_at_ms,omitempty"`
	Suspect    bool  `json:"suspect,omitempty"`
}

// PvPFields carries the competitive annotations added by the stat matcher
// when a ranking entry exists for the record's species in the requested
// league and category.
type PvPFields struct {
	Enabled      bool   `json:"pvp_enabled"`
	League       League `json:"pvp_league"`
	Category     string `json:"pvp_category"`
	SpeciesID    string `json:"pvp_species_id"`
	Rank         int    `json:"pvp_meta_rank"`
	Rating       int    `json:"pvp_rating"`
	IdealAttack  int    `json:"pvp_meta_atk"`
	IdealDefence int    `json:"pvp_meta_def"`
	IdealStamina int    `json:"pvp_meta_stm"`
	IdealCP      int    `json:"pvp_meta_cp"`
	MeetsAttack  bool   `json:"pvp_meets_atk"`
	MeetsDefence bool   `json:"pvp_meets_def"`
	MeetsStamina bool   `json:"pvp_meets_stm"`
}

// PvPRecord is an EnrichedRecord optionally augmented with PvP fields.
// The embedded pointer is nil for records that are not pvp-enabled in the
// queried league/category; encoding/json then omits the pvp_* keys.
type PvPRecord struct {
	EnrichedRecord
	*PvPFields
}

// Matchup rates one opponent from a ranking entry's matchup or counter list.
type Matchup struct {
	Opponent string `json:"opponent"`
	Rating   int    `json:"rating"`
}

// RankingEntry is one species+form row of a league/category ranking table.
// Rank is the 1-based position within the table (1 = best).
type RankingEntry struct {
	SpeciesID    string
	SpeciesName  string
	Rating       int
	Rank         int
	IdealAttack  int
	IdealDefence int
	IdealStamina int
	Matchups     []Matchup
	Counters     []Matchup
}

// ThreatRating names one threat in a team summary together with the
// aggregate matchup score against that specific threat.
type ThreatRating struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// TeamSummary lists the strongest and weakest matchups of a composed team.
type TeamSummary struct {
	Score      int            `json:"score"`
	Strengths  []ThreatRating `json:"strengths"`
	Weaknesses []ThreatRating `json:"weaknesses"`
}

// Team is an ordered trio of distinct PvP-augmented records.
type Team struct {
	Score   int         `json:"score"`
	Members []PvPRecord `json:"members"`
	Summary TeamSummary `json:"summary"`
}

// Upload is the bookkeeping row for one stored snapshot file.
type Upload struct {
	ID               string
	UserID           string
	OriginalFilename string
	LogicalUser      string
	LogicalDate      string // ISO date extracted from the filename, may be empty
	TotalRecords     int
	UnknownSpecies   int
	Enriched         bool
	CreatedAt        int64 // unix seconds
	UpdatedAt        int64
}

// Progress states for the per-upload processing state machine:
// queued -> processing -> completed | failed.
const (
	ProgressQueued     = "queued"
	ProgressProcessing = "processing"
	ProgressCompleted  = "completed"
	ProgressFailed     = "failed"
	ProgressNotFound   = "not_found"
)

// Progress reports how far enrichment of one upload has advanced. Current
// is monotonic and never exceeds Total.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
}
