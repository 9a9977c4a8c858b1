package service

import (
	"testing"

	"pokedex-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sortable() []domain.PvPRecord {
	mk := func(id string, number, cp int, iv float64) domain.PvPRecord {
		return domain.PvPRecord{EnrichedRecord: domain.EnrichedRecord{ID: id, Number: number, CP: cp, IVPercent: iv}}
	}
	return []domain.PvPRecord{
		mk("b", 4, 800, 55.6),
		mk("a", 1, 500, 97.8),
		mk("c", 150, 3000, 55.6),
	}
}

func sortedIDs(records []domain.PvPRecord, orderBy, orderDir string) []string {
	sortRecords(records, orderBy, orderDir)
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestSortRecords(t *testing.T) {
	tests := []struct {
		name     string
		orderBy  string
		orderDir string
		want     []string
	}{
		{name: "number asc", orderBy: "number", want: []string{"a", "b", "c"}},
		{name: "number desc", orderBy: "number", orderDir: "desc", want: []string{"c", "b", "a"}},
		{name: "cp asc", orderBy: "cp", want: []string{"a", "b", "c"}},
		{name: "iv desc is stable on ties", orderBy: "iv", orderDir: "desc", want: []string{"a", "b", "c"}},
		{name: "unknown key keeps order", orderBy: "nonsense", want: []string{"b", "a", "c"}},
		{name: "no key keeps order", orderBy: "", want: []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sortedIDs(sortable(), tt.orderBy, tt.orderDir))
		})
	}
}

func TestSortRecordsPvPRankPutsUnrankedLast(t *testing.T) {
	records := sortable()
	records[0].PvPFields = &domain.PvPFields{Enabled: true, Rank: 20}
	records[2].PvPFields = &domain.PvPFields{Enabled: true, Rank: 5}

	assert.Equal(t, []string{"c", "b", "a"}, sortedIDs(records, "pvp_rank", "asc"))

	records = sortable()
	records[0].PvPFields = &domain.PvPFields{Enabled: true, Rank: 20}
	records[2].PvPFields = &domain.PvPFields{Enabled: true, Rank: 5}
	assert.Equal(t, []string{"b", "c", "a"}, sortedIDs(records, "pvp_rank", "desc"))
}
