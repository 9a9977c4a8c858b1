package search

import (
	"testing"

	"pokedex-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, mutate func(*domain.EnrichedRecord)) domain.PvPRecord {
	r := domain.EnrichedRecord{ID: id, Name: "Bulbasaur", Number: 1, Types: []string{"grass", "poison"}}
	if mutate != nil {
		mutate(&r)
	}
	r.SearchText = ""
	return domain.PvPRecord{EnrichedRecord: r}
}

func ids(records []domain.PvPRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func fixture() []domain.PvPRecord {
	return []domain.PvPRecord{
		rec("bulba", func(r *domain.EnrichedRecord) {
			r.CP = 500
			r.HP = 60
			r.Tier = 2
		}),
		rec("shiny-char", func(r *domain.EnrichedRecord) {
			r.Name = "Charmander"
			r.Number = 4
			r.Types = []string{"fire"}
			r.Shiny = true
			r.CP = 800
			r.Tier = 4
			r.Gender = "female"
			r.Family = "charmander"
		}),
		rec("shadow-mew", func(r *domain.EnrichedRecord) {
			r.Name = "Mewtwo"
			r.Number = 150
			r.Types = []string{"psychic"}
			r.Shadow = true
			r.Legendary = true
			r.CP = 3000
			r.Attack = 15
			r.Gender = "genderless"
		}),
	}
}

func TestFilterClauses(t *testing.T) {
	records := fixture()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty matches all", query: "", want: []string{"bulba", "shiny-char", "shadow-mew"}},
		{name: "name fragment", query: "char", want: []string{"shiny-char"}},
		{name: "case insensitive", query: "CHAR", want: []string{"shiny-char"}},
		{name: "exact number", query: "4", want: []string{"shiny-char"}},
		{name: "number range", query: "1-100", want: []string{"bulba", "shiny-char"}},
		{name: "open upper range", query: "100-", want: []string{"shadow-mew"}},
		{name: "open lower range", query: "-4", want: []string{"bulba", "shiny-char"}},
		{name: "cp exact", query: "cp500", want: []string{"bulba"}},
		{name: "cp minimum", query: "cp600-", want: []string{"shiny-char", "shadow-mew"}},
		{name: "cp maximum", query: "cp-800", want: []string{"bulba", "shiny-char"}},
		{name: "cp range", query: "cp600-900", want: []string{"shiny-char"}},
		{name: "hp range", query: "hp50-70", want: []string{"bulba"}},
		{name: "attack stat", query: "atk15", want: []string{"shadow-mew"}},
		{name: "star tier", query: "4*", want: []string{"shiny-char"}},
		{name: "shiny keyword", query: "shiny", want: []string{"shiny-char"}},
		{name: "shadow keyword", query: "shadow", want: []string{"shadow-mew"}},
		{name: "legendary keyword", query: "legendary", want: []string{"shadow-mew"}},
		{name: "type", query: "fire", want: []string{"shiny-char"}},
		{name: "gender", query: "female", want: []string{"shiny-char"}},
		{name: "gender unknown", query: "genderunknown", want: []string{"bulba", "shadow-mew"}},
		{name: "family", query: "+charmander", want: []string{"shiny-char"}},
		{name: "and", query: "shiny&fire", want: []string{"shiny-char"}},
		{name: "or", query: "shiny,shadow", want: []string{"shiny-char", "shadow-mew"}},
		{name: "or with semicolon", query: "cp500; cp800", want: []string{"bulba", "shiny-char"}},
		{name: "not", query: "!shiny", want: []string{"bulba", "shadow-mew"}},
		{name: "not with and", query: "!shiny&cp-1000", want: []string{"bulba"}},
		{name: "malformed range matches nothing", query: "cpxyz", want: []string{}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(records, tt.query))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterOrDeduplicates(t *testing.T) {
	records := fixture()
	got := Filter(records, "shiny,char")
	assert.Equal(t, []string{"shiny-char"}, ids(got))
}

func TestFilterKeepsPvPFields(t *testing.T) {
	records := fixture()
	records[0].PvPFields = &domain.PvPFields{Enabled: true, SpeciesID: "bulbasaur"}

	got := Filter(records, "bulba")
	require.Len(t, got, 1)
	require.NotNil(t, got[0].PvPFields)
	assert.Equal(t, "bulbasaur", got[0].SpeciesID)
}

func TestUnique(t *testing.T) {
	mk := func(id string, number int, shiny, shadow, lucky bool, weightLabel string) domain.PvPRecord {
		return domain.PvPRecord{EnrichedRecord: domain.EnrichedRecord{
			ID: id, Number: number, Shiny: shiny, Shadow: shadow, Lucky: lucky, WeightLabel: weightLabel,
		}}
	}

	records := []domain.PvPRecord{
		mk("shadow-1", 1, false, true, false, ""),
		mk("shadow-2", 1, false, true, false, "xxl"),
		mk("shiny-1", 1, true, false, false, ""),
		mk("plain-4", 4, false, false, false, ""),
		mk("lucky-4", 4, false, false, true, ""),
	}

	got := Unique(records)
	assert.Equal(t, []string{"shadow-2", "shiny-1", "plain-4", "lucky-4"}, ids(got))
}

func TestUniqueKeepsDistinctForms(t *testing.T) {
	records := []domain.PvPRecord{
		{EnrichedRecord: domain.EnrichedRecord{ID: "kanto", Number: 19, Form: "RATTATA_NORMAL"}},
		{EnrichedRecord: domain.EnrichedRecord{ID: "alola", Number: 19, Form: "RATTATA_ALOLA"}},
		{EnrichedRecord: domain.EnrichedRecord{ID: "costume", Number: 19, Form: "RATTATA_NORMAL", Costume: "HOLIDAY"}},
	}

	got := Unique(records)
	assert.Equal(t, []string{"kanto", "alola", "costume"}, ids(got))
}
