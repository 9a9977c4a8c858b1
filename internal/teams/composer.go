// Package teams composes bounded three-member battle teams out of a
// pvp-annotated collection. Composition is deterministic: the same inputs
// always produce the same teams in the same order.
package teams

import (
	"sort"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/rankings"

	"github.com/rs/zerolog"
)

const perfectRankScore = 2000

type Composer struct {
	pool       int
	beamWidth  int
	maxTeams   int
	summaryTop int
	matchupMin int
	coverMin   int
	logger     zerolog.Logger
}

func NewComposer(cfg *config.Config, logger zerolog.Logger) *Composer {
	return &Composer{
		pool:       cfg.TeamCandidatePool,
		beamWidth:  cfg.TeamBeamWidth,
		maxTeams:   cfg.TeamMaxTeams,
		summaryTop: cfg.TeamSummaryTopN,
		matchupMin: cfg.MatchupThreshold,
		coverMin:   cfg.CoverageThreshold,
		logger:     logger.With().Str("component", "teams").Logger(),
	}
}

// candidate pairs one record with its ranking entry's matchup data so the
// search never touches the index again.
type candidate struct {
	rec     domain.PvPRecord
	ratings map[string]int // opponent id -> this candidate's rating against it
	threats []string       // opponents that counter this candidate
}

// Compose returns up to the configured number of teams for one
// league/category, best first. Fewer than three usable candidates means no
// team can be formed and the result is empty, never partial.
func (c *Composer) Compose(records []domain.PvPRecord, league domain.League, category string, idx *rankings.Index) []domain.Team {
	cands := c.candidates(records, league, category, idx)
	if len(cands) < 3 {
		return []domain.Team{}
	}

	states := c.search(cands)

	teams := make([]domain.Team, 0, c.maxTeams)
	for _, st := range states {
		if len(teams) == c.maxTeams {
			break
		}
		members := make([]domain.PvPRecord, 0, 3)
		for _, ci := range st.members {
			members = append(members, cands[ci].rec)
		}
		score, summary := c.evaluate(cands, st.members, league, category, idx)
		summary.Score = score
		teams = append(teams, domain.Team{Score: score, Members: members, Summary: summary})
	}
	return teams
}

// candidates filters to pvp-enabled records, keeps the single best specimen
// per species and caps the pool at the configured size, best meta rank
// first.
func (c *Composer) candidates(records []domain.PvPRecord, league domain.League, category string, idx *rankings.Index) []candidate {
	bestBySpecies := map[string]domain.PvPRecord{}
	for _, rec := range records {
		if rec.PvPFields == nil || !rec.Enabled {
			continue
		}
		cur, ok := bestBySpecies[rec.SpeciesID]
		if !ok || betterSpecimen(rec, cur) {
			bestBySpecies[rec.SpeciesID] = rec
		}
	}

	pool := make([]domain.PvPRecord, 0, len(bestBySpecies))
	for _, rec := range bestBySpecies {
		pool = append(pool, rec)
	}
	sort.Slice(pool, func(a, b int) bool {
		if pool[a].Rank != pool[b].Rank {
			return pool[a].Rank < pool[b].Rank
		}
		return pool[a].ID < pool[b].ID
	})
	if len(pool) > c.pool {
		pool = pool[:c.pool]
	}

	cands := make([]candidate, 0, len(pool))
	for _, rec := range pool {
		entry, ok := idx.Lookup(league, category, rec.SpeciesID)
		if !ok {
			continue
		}
		cand := candidate{rec: rec, ratings: make(map[string]int, len(entry.Matchups))}
		for _, m := range entry.Matchups {
			if m.Rating > cand.ratings[m.Opponent] {
				cand.ratings[m.Opponent] = m.Rating
			}
		}
		for _, m := range entry.Counters {
			cand.threats = append(cand.threats, m.Opponent)
			if _, seen := cand.ratings[m.Opponent]; !seen {
				cand.ratings[m.Opponent] = m.Rating
			}
		}
		cands = append(cands, cand)
	}
	return cands
}

// betterSpecimen orders two specimens of the same species: better meta
// rank, then higher IV, then higher CP, then id for determinism.
func betterSpecimen(a, b domain.PvPRecord) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	if a.IVPercent != b.IVPercent {
		return a.IVPercent > b.IVPercent
	}
	if a.CP != b.CP {
		return a.CP > b.CP
	}
	return a.ID < b.ID
}

type state struct {
	members []int // ascending candidate indices
	score   int
}

// search runs a bounded beam over the candidate pool. Each level keeps
// only the best beamWidth partial teams before extending; members are
// added in ascending pool order so no combination is visited twice.
func (c *Composer) search(cands []candidate) []state {
	beam := make([]state, 0, len(cands))
	for i := range cands {
		beam = append(beam, state{members: []int{i}, score: c.score(cands, []int{i})})
	}
	c.prune(cands, &beam)

	for level := 1; level < 3; level++ {
		next := make([]state, 0, len(beam)*len(cands))
		for _, st := range beam {
			last := st.members[len(st.members)-1]
			for j := last + 1; j < len(cands); j++ {
				members := append(append([]int{}, st.members...), j)
				next = append(next, state{members: members, score: c.score(cands, members)})
			}
		}
		beam = next
		c.prune(cands, &beam)
	}
	return beam
}

func (c *Composer) prune(cands []candidate, beam *[]state) {
	b := *beam
	sort.Slice(b, func(x, y int) bool {
		return lessState(cands, b[x], b[y])
	})
	if len(b) > c.beamWidth {
		b = b[:c.beamWidth]
	}
	*beam = b
}

// lessState orders teams best first: score desc, then lowest combined
// meta rank, then highest aggregate IV, then member indices so ordering
// is total and deterministic.
func lessState(cands []candidate, a, b state) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	ra, rb := rankSum(cands, a.members), rankSum(cands, b.members)
	if ra != rb {
		return ra < rb
	}
	ia, ib := ivSum(cands, a.members), ivSum(cands, b.members)
	if ia != ib {
		return ia > ib
	}
	return lessMembers(a.members, b.members)
}

func rankSum(cands []candidate, members []int) int {
	total := 0
	for _, ci := range members {
		total += cands[ci].rec.Rank
	}
	return total
}

func ivSum(cands []candidate, members []int) float64 {
	total := 0.0
	for _, ci := range members {
		total += cands[ci].rec.IVPercent
	}
	return total
}

func lessMembers(a, b []int) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// score combines how strong the members are on the meta ladder with how
// well they cover the threat surface they collectively face. An uncovered
// threat costs far more than a covered one earns, so the search prefers
// balanced trios over three copies of the ladder's top.
func (c *Composer) score(cands []candidate, members []int) int {
	total := 0
	for _, ci := range members {
		if s := perfectRankScore - cands[ci].rec.Rank; s > 0 {
			total += s
		}
	}

	for _, best := range teamRatings(cands, members) {
		if best >= c.coverMin {
			total += 10
		} else {
			total -= 120
		}
	}
	return total
}

// teamRatings folds the members' matchup data into the team's best rating
// against every opponent any member knows about.
func teamRatings(cands []candidate, members []int) map[string]int {
	out := map[string]int{}
	for _, ci := range members {
		for opp, r := range cands[ci].ratings {
			if r > out[opp] {
				out[opp] = r
			}
		}
		for _, opp := range cands[ci].threats {
			if _, ok := out[opp]; !ok {
				out[opp] = 0
			}
		}
	}
	return out
}

// evaluate produces the final score plus the top strengths and weaknesses
// for one finished team.
func (c *Composer) evaluate(cands []candidate, members []int, league domain.League, category string, idx *rankings.Index) (int, domain.TeamSummary) {
	ratings := teamRatings(cands, members)

	type opp struct {
		id     string
		rating int
	}
	all := make([]opp, 0, len(ratings))
	for id, r := range ratings {
		all = append(all, opp{id: id, rating: r})
	}

	summary := domain.TeamSummary{
		Strengths:  []domain.ThreatRating{},
		Weaknesses: []domain.ThreatRating{},
	}

	// Strengths: best-handled opponents, highest team rating first.
	sort.Slice(all, func(a, b int) bool {
		if all[a].rating != all[b].rating {
			return all[a].rating > all[b].rating
		}
		return all[a].id < all[b].id
	})
	for _, o := range all {
		if len(summary.Strengths) == c.summaryTop || o.rating < c.matchupMin {
			break
		}
		summary.Strengths = append(summary.Strengths, domain.ThreatRating{
			ID:     o.id,
			Name:   idx.DisplayName(league, category, o.id),
			Rating: o.rating,
		})
	}

	// Weaknesses: uncovered opponents, worst first.
	sort.Slice(all, func(a, b int) bool {
		if all[a].rating != all[b].rating {
			return all[a].rating < all[b].rating
		}
		return all[a].id < all[b].id
	})
	for _, o := range all {
		if len(summary.Weaknesses) == c.summaryTop || o.rating >= c.coverMin {
			break
		}
		summary.Weaknesses = append(summary.Weaknesses, domain.ThreatRating{
			ID:     o.id,
			Name:   idx.DisplayName(league, category, o.id),
			Rating: o.rating,
		})
	}

	return c.score(cands, members), summary
}
