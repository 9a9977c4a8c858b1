package master

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaster = `[
	{"templateId": "PLAYER_LEVEL_SETTINGS", "data": {"playerLevelSettings": {
		"cpMultiplier": [0.094, 0.16639787, 0.21573247, 0.25572005]
	}}},
	{"templateId": "V0001_POKEMON_BULBASAUR", "data": {"pokemonSettings": {
		"pokemonId": "BULBASAUR", "form": "BULBASAUR_NORMAL",
		"type": "POKEMON_TYPE_GRASS", "type2": "POKEMON_TYPE_POISON",
		"pokemonClass": "", "familyId": "FAMILY_BULBASAUR",
		"pokedexHeightM": 0.7, "pokedexWeightKg": 6.9,
		"stats": {"baseAttack": 118, "baseDefense": 111, "baseStamina": 128}
	}}},
	{"templateId": "V0150_POKEMON_MEWTWO", "data": {"pokemonSettings": {
		"pokemonId": "MEWTWO", "form": "MEWTWO_NORMAL",
		"type": "POKEMON_TYPE_PSYCHIC",
		"pokemonClass": "POKEMON_CLASS_LEGENDARY", "familyId": "FAMILY_MEWTWO",
		"stats": {"baseAttack": 300, "baseDefense": 182, "baseStamina": 214}
	}}},
	{"templateId": "NOT_A_POKEMON", "data": {}}
]`

func TestParse(t *testing.T) {
	idx, err := Parse([]byte(sampleMaster))
	require.NoError(t, err)

	assert.Equal(t, 4, idx.Len(), "two species, each with a form and a bare-number entry")
	assert.True(t, idx.HasCPM())

	bulba, ok := idx.Lookup(1, "BULBASAUR_NORMAL")
	require.True(t, ok)
	assert.Equal(t, "BULBASAUR", bulba.Name)
	assert.Equal(t, []string{"grass", "poison"}, bulba.Types)
	assert.Equal(t, "bulbasaur", bulba.Family)
	assert.Equal(t, 118, bulba.BaseAttack)
	assert.False(t, bulba.Legendary)

	mewtwo, ok := idx.Lookup(150, "MEWTWO_NORMAL")
	require.True(t, ok)
	assert.True(t, mewtwo.Legendary)
	assert.False(t, mewtwo.Mythic)
}

func TestLookupFallsBackToBareNumber(t *testing.T) {
	idx, err := Parse([]byte(sampleMaster))
	require.NoError(t, err)

	entry, ok := idx.Lookup(1, "BULBASAUR_COSTUME_2020")
	require.True(t, ok, "unknown form falls back to the species default")
	assert.Equal(t, "BULBASAUR", entry.Name)

	_, ok = idx.Lookup(9999, "")
	assert.False(t, ok)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestCPM(t *testing.T) {
	idx, err := Parse([]byte(sampleMaster))
	require.NoError(t, err)

	assert.InDelta(t, 0.094, idx.CPM(1), 1e-9)
	assert.InDelta(t, 0.16639787, idx.CPM(2), 1e-9)

	// Half levels interpolate between the neighbours.
	want := math.Sqrt((0.094*0.094 + 0.16639787*0.16639787) / 2)
	assert.InDelta(t, want, idx.CPM(1.5), 1e-9)

	assert.Equal(t, 0.0, idx.CPM(0))
	assert.Equal(t, 0.0, idx.CPM(-3))
	assert.Equal(t, 0.0, idx.CPM(40), "level outside the table")
	assert.Equal(t, 0.0, idx.CPM(1.25), "only half levels interpolate")
}
