// Package enrich turns raw snapshot records into display-ready enriched
// records using the master-data index. The pipeline is pure: re-running it
// over the same inputs yields identical outputs, and one unknown species
// never aborts a batch.
package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/master"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Gender glyphs. The neutral glyph covers genderless, unset and unknown
// raw values alike.
const (
	GlyphMale    = "♂"
	GlyphFemale  = "♀"
	GlyphNeutral = "⚲"
)

type Pipeline struct {
	master   *master.Index
	animated *AnimatedIndex
	tiers    []float64
	logger   zerolog.Logger

	unknownTotal atomic.Int64
}

// Result is one batch's output. UnknownSpecies counts records that had no
// master-data entry and were enriched with best-effort defaults.
type Result struct {
	Records        []domain.EnrichedRecord
	UnknownSpecies int
}

func NewPipeline(cfg *config.Config, masterIdx *master.Index, animated *AnimatedIndex, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		master:   masterIdx,
		animated: animated,
		tiers:    cfg.TierBoundaries,
		logger:   logger.With().Str("component", "enrich").Logger(),
	}
}

// UnknownSpeciesTotal is the process-lifetime count of unknown-species
// records, for observability.
func (p *Pipeline) UnknownSpeciesTotal() int64 { return p.unknownTotal.Load() }

// Enrich derives an EnrichedRecord for every raw record, preserving input
// order. Records are independent, so the batch runs on a bounded worker
// pool; ctx cancellation abandons the batch without partial output.
func (p *Pipeline) Enrich(ctx context.Context, raws []domain.RawRecord) (*Result, error) {
	out := make([]domain.EnrichedRecord, len(raws))
	var unknown atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.EnrichWorkers)

	for i := range raws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, known := p.enrichOne(&raws[i])
			if !known {
				unknown.Add(1)
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}

	n := int(unknown.Load())
	p.unknownTotal.Add(int64(n))
	if n > 0 {
		p.logger.Warn().Int("unknown_species", n).Int("total", len(raws)).Msg("records enriched with unknown species defaults")
	}

	return &Result{Records: out, UnknownSpecies: n}, nil
}

func (p *Pipeline) enrichOne(raw *domain.RawRecord) (domain.EnrichedRecord, bool) {
	meta, known := p.master.Lookup(raw.Number, raw.Form)
	if !known {
		meta = &domain.SpeciesEntry{Number: raw.Number, Types: []string{}}
	}

	iv := IVPercent(raw.Attack, raw.Defence, raw.Stamina)
	shadow := raw.Alignment == "SHADOW"

	rec := domain.EnrichedRecord{
		ID:      raw.ID,
		Number:  raw.Number,
		Form:    raw.Form,
		Name:    displayName(raw.Name),
		CP:      raw.CP,
		HP:      raw.HP,
		Attack:  raw.Attack,
		Defence: raw.Defence,
		Stamina: raw.Stamina,

		IVPercent: iv,
		Tier:      p.tier(iv),

		Height:      raw.Height,
		Weight:      raw.Weight,
		HeightLabel: SizeLabel(meta.PokedexHeight, raw.Height),
		WeightLabel: SizeLabel(meta.PokedexWeight, raw.Weight),

		Gender:       strings.ToLower(raw.Gender),
		GenderSymbol: genderSymbol(raw.Gender),

		Shiny:    raw.Shiny,
		Lucky:    raw.Lucky,
		Shundo:   IsShundo(raw.Attack, raw.Defence, raw.Stamina, shadow),
		Nundo:    IsNundo(raw.Attack, raw.Defence, raw.Stamina),
		Shadow:   shadow,
		Purified: raw.Alignment == "PURIFIED",
		Apex:     isApexForm(raw.Form),

		Legendary:  meta.Legendary,
		Mythic:     meta.Mythic,
		Dynamax:    raw.Dynamax,
		Gigantamax: raw.Gigantamax,

		Costume:     raw.Costume,
		FastMove:    moveLabel(raw.FastMove, true),
		ChargedMove: moveLabel(raw.ChargedMove, false),

		Family:        meta.Family,
		Types:         meta.Types,
		PokedexHeight: meta.PokedexHeight,
		PokedexWeight: meta.PokedexWeight,
		BaseAttack:    meta.BaseAttack,
		BaseDefence:   meta.BaseDefence,
		BaseStamina:   meta.BaseStamina,

		CapturedAt: raw.CapturedAt,
		Suspect:    raw.Suspect,
	}

	rec.SearchText = strings.ToLower(fmt.Sprintf("%s %d %s", rec.Name, rec.Number, strings.Join(rec.Types, " ")))
	rec.Image = SpritePath(&rec)
	if p.animated != nil {
		rec.ImageAnimated = p.animated.Pick(&rec)
	}

	return rec, known
}

// IVPercent is the aggregate individual-value quality on the 45-point
// scale, rounded to one decimal and clamped to [0,100].
func IVPercent(atk, def, sta int) float64 {
	pct := 100 * float64(atk+def+sta) / 45
	pct = math.Round(pct*10) / 10
	return math.Min(100, math.Max(0, pct))
}

// IsShundo reports a perfect 15/15/15 specimen. Shadow forms use a
// different stat scale and are excluded by definition.
func IsShundo(atk, def, sta int, shadow bool) bool {
	return !shadow && atk == constants.IVMax && def == constants.IVMax && sta == constants.IVMax
}

// IsNundo reports a 0/0/0 specimen.
func IsNundo(atk, def, sta int) bool {
	return atk == constants.IVMin && def == constants.IVMin && sta == constants.IVMin
}

// tier buckets ivPercent into ordinal star tiers 0..4 using the configured
// ascending boundaries: the highest boundary the value reaches wins.
func (p *Pipeline) tier(iv float64) int {
	tier := 0
	for i, bound := range p.tiers {
		if iv >= bound {
			tier = i
		}
	}
	return tier
}

func genderSymbol(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		return GlyphMale
	case "female":
		return GlyphFemale
	}
	return GlyphNeutral
}

func isApexForm(form string) bool {
	return form == "LUGIA_S" || form == "HO_OH_S"
}

func displayName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

// moveLabel prettifies an internal move token: fast moves drop their
// _FAST marker, everything becomes Title Case.
func moveLabel(token string, fast bool) string {
	if token == "" {
		return ""
	}
	if fast {
		token = strings.TrimSuffix(token, "_FAST")
	}
	return displayName(token)
}

// SizeLabel classifies an actual measurement against the pokedex value.
// Empty means average (or no reference to compare against).
func SizeLabel(pokedexValue, actual float64) string {
	if pokedexValue <= 0 || actual <= 0 {
		return ""
	}
	switch {
	case actual <= pokedexValue*0.5:
		return "xxs"
	case actual <= pokedexValue*0.75:
		return "xs"
	case actual > pokedexValue*1.5:
		return "xxl"
	case actual > pokedexValue*1.25:
		return "xl"
	}
	return ""
}
