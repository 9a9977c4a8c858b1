package enrich

import (
	"context"
	"testing"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/master"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		TierBoundaries: []float64{0, 0.1, 51.1, 82.2, 100},
	}
}

func testPipeline(t *testing.T, masterJSON string) *Pipeline {
	t.Helper()
	idx, err := master.Parse([]byte(masterJSON))
	require.NoError(t, err)
	return NewPipeline(testConfig(), idx, nil, zerolog.Nop())
}

const bulbasaurMaster = `[
	{"templateId": "V0001_POKEMON_BULBASAUR", "data": {"pokemonSettings": {
		"pokemonId": "BULBASAUR", "form": "BULBASAUR_NORMAL",
		"type": "POKEMON_TYPE_GRASS", "type2": "POKEMON_TYPE_POISON",
		"familyId": "FAMILY_BULBASAUR",
		"pokedexHeightM": 0.7, "pokedexWeightKg": 6.9,
		"stats": {"baseAttack": 118, "baseDefense": 111, "baseStamina": 128}
	}}}
]`

func TestIVPercent(t *testing.T) {
	tests := []struct {
		name          string
		atk, def, sta int
		want          float64
	}{
		{name: "perfect", atk: 15, def: 15, sta: 15, want: 100},
		{name: "zero", atk: 0, def: 0, sta: 0, want: 0},
		{name: "mid spread rounds to one decimal", atk: 10, def: 10, sta: 10, want: 66.7},
		{name: "single point", atk: 1, def: 0, sta: 0, want: 2.2},
		{name: "near perfect", atk: 15, def: 15, sta: 14, want: 97.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IVPercent(tt.atk, tt.def, tt.sta))
		})
	}
}

func TestIVPercentMonotonic(t *testing.T) {
	prev := -1.0
	for total := 0; total <= 45; total++ {
		atk := min(total, 15)
		def := min(total-atk, 15)
		sta := total - atk - def
		cur := IVPercent(atk, def, sta)
		assert.GreaterOrEqual(t, cur, prev, "iv percent must not decrease with total %d", total)
		prev = cur
	}
}

func TestTierBuckets(t *testing.T) {
	p := testPipeline(t, `[]`)

	tests := []struct {
		iv   float64
		want int
	}{
		{iv: 0, want: 0},
		{iv: 0.1, want: 1},
		{iv: 51.0, want: 1},
		{iv: 51.1, want: 2},
		{iv: 82.1, want: 2},
		{iv: 82.2, want: 3},
		{iv: 99.9, want: 3},
		{iv: 100, want: 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.tier(tt.iv), "iv %.1f", tt.iv)
	}
}

func TestShundoAndNundo(t *testing.T) {
	assert.True(t, IsShundo(15, 15, 15, false))
	assert.False(t, IsShundo(15, 15, 15, true), "shadow specimens are never shundo")
	assert.False(t, IsShundo(15, 15, 14, false))

	assert.True(t, IsNundo(0, 0, 0))
	assert.False(t, IsNundo(0, 0, 1))
}

func TestEnrichPreservesOrderAndCountsUnknown(t *testing.T) {
	p := testPipeline(t, bulbasaurMaster)

	raws := []domain.RawRecord{
		{ID: "a", Number: 1, Form: "BULBASAUR_NORMAL", Name: "BULBASAUR", Attack: 15, Defence: 15, Stamina: 15},
		{ID: "b", Number: 9999, Name: "MYSTERYMON", Attack: 1, Defence: 2, Stamina: 3},
		{ID: "c", Number: 1, Form: "BULBASAUR_NORMAL", Name: "BULBASAUR", Attack: 0, Defence: 0, Stamina: 0},
	}

	res, err := p.Enrich(context.Background(), raws)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	assert.Equal(t, []string{"a", "b", "c"}, []string{res.Records[0].ID, res.Records[1].ID, res.Records[2].ID})
	assert.Equal(t, 1, res.UnknownSpecies)

	known := res.Records[0]
	assert.Equal(t, 118, known.BaseAttack)
	assert.Equal(t, []string{"grass", "poison"}, known.Types)
	assert.Equal(t, "bulbasaur", known.Family)
	assert.True(t, known.Shundo)
	assert.Equal(t, 4, known.Tier)

	unknown := res.Records[1]
	assert.Equal(t, 0, unknown.BaseAttack)
	assert.NotNil(t, unknown.Types)
	assert.Empty(t, unknown.Types)

	assert.True(t, res.Records[2].Nundo)
}

func TestEnrichIsIdempotent(t *testing.T) {
	p := testPipeline(t, bulbasaurMaster)
	raws := []domain.RawRecord{
		{ID: "a", Number: 1, Form: "BULBASAUR_NORMAL", Name: "BULBASAUR", CP: 500, Attack: 10, Defence: 11, Stamina: 12, Gender: "female", Shiny: true},
	}

	first, err := p.Enrich(context.Background(), raws)
	require.NoError(t, err)
	second, err := p.Enrich(context.Background(), raws)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
}

func TestGenderSymbol(t *testing.T) {
	assert.Equal(t, GlyphMale, genderSymbol("male"))
	assert.Equal(t, GlyphFemale, genderSymbol("Female"))
	assert.Equal(t, GlyphNeutral, genderSymbol("genderless"))
	assert.Equal(t, GlyphNeutral, genderSymbol(""))
	assert.Equal(t, GlyphNeutral, genderSymbol("whatever"))
}

func TestSizeLabel(t *testing.T) {
	tests := []struct {
		name    string
		pokedex float64
		actual  float64
		want    string
	}{
		{name: "xxs at half", pokedex: 1.0, actual: 0.5, want: "xxs"},
		{name: "xs", pokedex: 1.0, actual: 0.7, want: "xs"},
		{name: "average", pokedex: 1.0, actual: 1.0, want: ""},
		{name: "xl", pokedex: 1.0, actual: 1.3, want: "xl"},
		{name: "xxl", pokedex: 1.0, actual: 1.6, want: "xxl"},
		{name: "no reference", pokedex: 0, actual: 1.6, want: ""},
		{name: "no measurement", pokedex: 1.0, actual: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeLabel(tt.pokedex, tt.actual))
		})
	}
}

func TestDisplayNameAndMoves(t *testing.T) {
	assert.Equal(t, "Mud Shot", moveLabel("MUD_SHOT_FAST", true))
	assert.Equal(t, "Hydro Cannon", moveLabel("HYDRO_CANNON", false))
	assert.Equal(t, "", moveLabel("", true))
	assert.Equal(t, "Giratina Origin", displayName("GIRATINA_ORIGIN"))
}
