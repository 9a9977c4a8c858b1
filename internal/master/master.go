// Package master loads the game-master reference dataset: per-species
// settings and the per-level CP multiplier table. The index is built once
// at startup and is read-only afterwards, so it is safe to share across
// requests without locking.
package master

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const MasterFilename = "master.json"

type Index struct {
	species map[string]*domain.SpeciesEntry
	cpm     map[int]float64
}

type gameMasterItem struct {
	TemplateID string `json:"templateId"`
	Data       struct {
		PokemonSettings *struct {
			PokemonID    string  `json:"pokemonId"`
			Form         string  `json:"form"`
			Type         string  `json:"type"`
			Type2        string  `json:"type2"`
			PokemonClass string  `json:"pokemonClass"`
			FamilyID     string  `json:"familyId"`
			HeightM      float64 `json:"pokedexHeightM"`
			WeightKg     float64 `json:"pokedexWeightKg"`
			Stats        struct {
				BaseAttack  int `json:"baseAttack"`
				BaseDefense int `json:"baseDefense"`
				BaseStamina int `json:"baseStamina"`
			} `json:"stats"`
		} `json:"pokemonSettings"`
		PlayerLevelSettings *struct {
			CPMultiplier []float64 `json:"cpMultiplier"`
		} `json:"playerLevelSettings"`
	} `json:"data"`
}

// Load reads master.json from the configured data dir. A missing file is
// not fatal: enrichment then runs with best-effort defaults only.
func Load(cfg *config.Config, logger zerolog.Logger) (*Index, error) {
	path := filepath.Join(cfg.DataDir, MasterFilename)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", path).Msg("master data not found, enrichment will be limited")
			return &Index{species: map[string]*domain.SpeciesEntry{}, cpm: map[int]float64{}}, nil
		}
		return nil, fmt.Errorf("failed to read master data: %w", err)
	}

	idx, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("species", len(idx.species)).
		Int("cp_multipliers", len(idx.cpm)).
		Msg("master data loaded")

	if len(idx.cpm) == 0 {
		logger.Warn().Msg("CP multipliers missing from master data, pvp features disabled")
	}

	return idx, nil
}

// Parse builds an Index from a raw game-master JSON document.
func Parse(raw []byte) (*Index, error) {
	var items []gameMasterItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode master data: %w", err)
	}

	idx := &Index{
		species: make(map[string]*domain.SpeciesEntry),
		cpm:     make(map[int]float64),
	}

	for _, item := range items {
		if pls := item.Data.PlayerLevelSettings; pls != nil && len(pls.CPMultiplier) > 0 {
			for i, v := range pls.CPMultiplier {
				idx.cpm[i+1] = v
			}
		}

		poke := item.Data.PokemonSettings
		if poke == nil || !strings.HasPrefix(item.TemplateID, "V") || len(item.TemplateID) < 5 {
			continue
		}
		number, err := strconv.Atoi(item.TemplateID[1:5])
		if err != nil {
			continue
		}

		types := make([]string, 0, 2)
		for _, t := range []string{poke.Type, poke.Type2} {
			if t == "" {
				continue
			}
			types = append(types, strings.ToLower(strings.TrimPrefix(t, "POKEMON_TYPE_")))
		}

		entry := &domain.SpeciesEntry{
			Number:        number,
			Name:          poke.PokemonID,
			Form:          poke.Form,
			Types:         types,
			Family:        strings.ToLower(strings.TrimPrefix(poke.FamilyID, "FAMILY_")),
			Legendary:     poke.PokemonClass == "POKEMON_CLASS_LEGENDARY",
			Mythic:        poke.PokemonClass == "POKEMON_CLASS_MYTHIC",
			PokedexHeight: poke.HeightM,
			PokedexWeight: poke.WeightKg,
			BaseAttack:    poke.Stats.BaseAttack,
			BaseDefence:   poke.Stats.BaseDefense,
			BaseStamina:   poke.Stats.BaseStamina,
		}

		idx.species[speciesKey(number, poke.Form)] = entry
		if _, ok := idx.species[speciesKey(number, "")]; !ok {
			idx.species[speciesKey(number, "")] = entry
		}
	}

	return idx, nil
}

func speciesKey(number int, form string) string {
	if form == "" {
		return strconv.Itoa(number)
	}
	return strconv.Itoa(number) + "_" + form
}

// Lookup resolves a species entry by dex number and optional form. The
// form-qualified key wins; a bare-number entry is the fallback. The second
// return is false when the species is unknown to the master data.
func (i *Index) Lookup(number int, form string) (*domain.SpeciesEntry, bool) {
	if form != "" {
		if e, ok := i.species[speciesKey(number, form)]; ok {
			return e, true
		}
	}
	e, ok := i.species[speciesKey(number, "")]
	return e, ok
}

// Len reports how many species+form entries are indexed.
func (i *Index) Len() int { return len(i.species) }

// HasCPM reports whether the CP multiplier table was present.
func (i *Index) HasCPM() bool { return len(i.cpm) > 0 }

// CPM returns the combat-power multiplier for integer and half levels.
// Half levels use the standard interpolation
// cpm(L+0.5) = sqrt((cpm(L)^2 + cpm(L+1)^2) / 2). Unknown levels yield 0.
func (i *Index) CPM(level float64) float64 {
	if level <= 0 {
		return 0
	}
	base := int(level)
	if level == float64(base) {
		return i.cpm[base]
	}
	if math.Abs(level-(float64(base)+0.5)) > 1e-9 {
		return 0
	}
	a, b := i.cpm[base], i.cpm[base+1]
	if a == 0 || b == 0 {
		return 0
	}
	return math.Sqrt((a*a + b*b) / 2)
}
