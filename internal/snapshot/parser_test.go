package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "not json"},
		{name: "top-level array", raw: `[1, 2, 3]`},
		{name: "top-level string", raw: `"hello"`},
		{name: "fileData not an object", raw: `{"fileData": [1]}`},
		{name: "pokemons not a list", raw: `{"pokemons": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseLegacyFormat(t *testing.T) {
	raw := `{
		"222222": {"mon_number": 4, "mon_name": "CHARMANDER", "mon_cp": "312",
			"mon_attack": 12, "mon_defence": "11", "mon_stamina": 10,
			"mon_isshiny": "YES", "mon_islucky": "NO", "mon_gender": "MALE"},
		"111111": {"mon_number": 1, "mon_name": "BULBASAUR", "mon_cp": 500,
			"mon_attack": 15, "mon_defence": 15, "mon_stamina": 15,
			"mon_alignment": "shadow"}
	}`

	snap, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, FormatLegacy, snap.Format)
	require.Len(t, snap.Records, 2)

	// Keyed records come out sorted by instance id.
	assert.Equal(t, "111111", snap.Records[0].ID)
	assert.Equal(t, "222222", snap.Records[1].ID)

	bulba := snap.Records[0]
	assert.Equal(t, 1, bulba.Number)
	assert.Equal(t, "SHADOW", bulba.Alignment)
	assert.Equal(t, 15, bulba.Attack)

	char := snap.Records[1]
	assert.Equal(t, 312, char.CP, "string numbers are coerced")
	assert.Equal(t, 11, char.Defence)
	assert.True(t, char.Shiny)
	assert.False(t, char.Lucky)
	assert.Equal(t, "male", char.Gender)
}

func TestParseLegacyFileDataWrapper(t *testing.T) {
	raw := `{"fileData": {"1": {"mon_number": 7, "mon_name": "SQUIRTLE"}}}`

	snap, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, 7, snap.Records[0].Number)
}

func TestParseScannerFormat(t *testing.T) {
	raw := `{"pokemons": [{
		"dexNumber": 19, "pokemonName": "Rattata",
		"pokemon": "HoloPokemonId_RattataAlola",
		"cp": 432, "stamina": 80, "heightM": 0.35, "weightKg": 3.2,
		"isLucky": true, "isShadow": true,
		"creationTimeMs": 1700000000000,
		"iv": {"atk": 12, "def": 9, "sta": 14},
		"display": {"form": "PokemonDisplayProto_Form_RattataAlola", "genderId": 2, "isShiny": true},
		"moves": {"fast": "HoloPokemonMove_TackleFast", "charged": "HoloPokemonMove_HyperFang"}
	}]}`

	snap, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, FormatScanner, snap.Format)
	require.Len(t, snap.Records, 1)

	rec := snap.Records[0]
	assert.Equal(t, "1700000000000", rec.ID)
	assert.Equal(t, 19, rec.Number)
	assert.Equal(t, "RATTATA_ALOLA", rec.Form)
	assert.Equal(t, "SHADOW", rec.Alignment)
	assert.Equal(t, "female", rec.Gender)
	assert.True(t, rec.Shiny)
	assert.True(t, rec.Lucky)
	assert.Equal(t, "TACKLE_FAST", rec.FastMove)
	assert.Equal(t, "HYPER_FANG", rec.ChargedMove)
	assert.Equal(t, int64(1700000000000), rec.CapturedAt)
	assert.False(t, rec.Suspect)
}

func TestParseScannerUnsetFormGetsNormal(t *testing.T) {
	raw := `{"pokemons": [{
		"dexNumber": 1, "pokemonName": "Bulbasaur",
		"pokemon": "HoloPokemonId_Bulbasaur",
		"display": {"form": "PokemonDisplayProto_Form_FORM_UNSET"},
		"iv": {"atk": 1, "def": 1, "sta": 1}
	}]}`

	snap, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "BULBASAUR_NORMAL", snap.Records[0].Form)
}

func TestParseScannerGigantamaxFalsePositives(t *testing.T) {
	raw := `{"pokemons": [
		{"dexNumber": 890, "pokemonName": "Eternatus", "pokemon": "HoloPokemonId_Eternatus",
			"dynamax": {"isGigantamaxLikely": true}, "iv": {"atk": 1, "def": 1, "sta": 1}},
		{"dexNumber": 12, "pokemonName": "Butterfree", "pokemon": "HoloPokemonId_Butterfree",
			"dynamax": {"isGigantamaxLikely": true}, "iv": {"atk": 1, "def": 1, "sta": 1}}
	]}`

	snap, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, snap.Records, 2)

	eternatus := snap.Records[0]
	assert.True(t, eternatus.Dynamax)
	assert.False(t, eternatus.Gigantamax, "dex 890 never gigantamaxes")
	assert.NotContains(t, eternatus.Form, "GIGANTAMAX")

	butterfree := snap.Records[1]
	assert.True(t, butterfree.Gigantamax)
	assert.Equal(t, "BUTTERFREE_GIGANTAMAX", butterfree.Form)
}

func TestClampIVsMarksSuspect(t *testing.T) {
	tests := []struct {
		name                string
		atk, def, sta       int
		wantA, wantD, wantS int
		wantSuspect         bool
	}{
		{name: "in range", atk: 0, def: 15, sta: 7, wantA: 0, wantD: 15, wantS: 7},
		{name: "above range", atk: 16, def: 15, sta: 7, wantA: 15, wantD: 15, wantS: 7, wantSuspect: true},
		{name: "below range", atk: -1, def: 3, sta: 7, wantA: 0, wantD: 3, wantS: 7, wantSuspect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, d, s, suspect := clampIVs(tt.atk, tt.def, tt.sta)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantD, d)
			assert.Equal(t, tt.wantS, s)
			assert.Equal(t, tt.wantSuspect, suspect)
		})
	}
}

func TestCamelToUpperSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "RattataAlola", want: "RATTATA_ALOLA"},
		{in: "TackleFast", want: "TACKLE_FAST"},
		{in: "MrMime", want: "MR_MIME"},
		{in: "FORM_UNSET", want: "FORM_UNSET"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, camelToUpperSnake(tt.in), tt.in)
	}
}
