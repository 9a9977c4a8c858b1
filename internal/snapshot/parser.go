// Package snapshot decodes uploaded collection exports into raw records.
// Two formats are accepted: the legacy keyed-object export (instance id ->
// flat attribute record, optionally wrapped in "fileData") and the scanner
// tool's {"pokemons": [...]} list export.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pokedex-tracker/internal/constants"
	"pokedex-tracker/internal/domain"
)

const (
	FormatLegacy  = "legacy"
	FormatScanner = "scanner"
)

// ValidationError rejects a whole upload; nothing is partially enriched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot: " + e.Reason
}

// Snapshot is a decoded upload: raw records in a stable order plus the
// detected export format.
type Snapshot struct {
	Records []domain.RawRecord
	Format  string
}

// Parse decodes a raw upload payload. Malformed or non-object input yields
// a *ValidationError; individual records are never a reason to fail.
func Parse(raw []byte) (*Snapshot, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &ValidationError{Reason: "payload is not a JSON object"}
	}

	if list, ok := top["pokemons"]; ok {
		return parseScanner(list)
	}

	if wrapped, ok := top["fileData"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err != nil {
			return nil, &ValidationError{Reason: "fileData is not an object"}
		}
		top = inner
	}

	return parseLegacy(top)
}

func parseLegacy(records map[string]json.RawMessage) (*Snapshot, error) {
	// Map iteration order is random; sort ids so output order is stable
	// across runs of the same upload.
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := &Snapshot{Format: FormatLegacy, Records: make([]domain.RawRecord, 0, len(ids))}
	for _, id := range ids {
		var fields map[string]any
		if err := json.Unmarshal(records[id], &fields); err != nil {
			continue
		}
		snap.Records = append(snap.Records, legacyRecord(id, fields))
	}
	return snap, nil
}

// legacyRecord canonicalizes one keyed-object entry. Keys are lowercased
// and the historical "mon_" prefix is stripped; values arrive as strings
// or numbers depending on the exporter version, so everything is coerced.
func legacyRecord(id string, fields map[string]any) domain.RawRecord {
	p := make(map[string]any, len(fields))
	for k, v := range fields {
		p[strings.ToLower(strings.TrimPrefix(k, "mon_"))] = v
	}

	rec := domain.RawRecord{
		ID:          id,
		Number:      toInt(p["number"]),
		Form:        toString(p["form"]),
		Name:        toString(p["name"]),
		CP:          toInt(p["cp"]),
		HP:          toInt(p["hp"]),
		Height:      toFloat(p["height"]),
		Weight:      toFloat(p["weight"]),
		Gender:      strings.ToLower(toString(p["gender"])),
		Alignment:   strings.ToUpper(toString(p["alignment"])),
		Shiny:       toYesNo(p["isshiny"]),
		Lucky:       toYesNo(p["islucky"]),
		Costume:     toString(p["costume"]),
		FastMove:    toString(p["move_1"]),
		ChargedMove: toString(p["move_2"]),
	}
	rec.Attack, rec.Defence, rec.Stamina, rec.Suspect = clampIVs(
		toInt(p["attack"]), toInt(p["defence"]), toInt(p["stamina"]))
	return rec
}

// clampIVs forces each sub-stat into the 0..15 scale. Out-of-range input
// marks the record suspect instead of failing the batch.
func clampIVs(atk, def, sta int) (int, int, int, bool) {
	suspect := false
	clamp := func(v int) int {
		if v < constants.IVMin {
			suspect = true
			return constants.IVMin
		}
		if v > constants.IVMax {
			suspect = true
			return constants.IVMax
		}
		return v
	}
	return clamp(atk), clamp(def), clamp(sta), suspect
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

func toYesNo(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "YES")
	}
	return false
}

func parseScanner(list json.RawMessage) (*Snapshot, error) {
	var records []scannerRecord
	if err := json.Unmarshal(list, &records); err != nil {
		return nil, &ValidationError{Reason: "pokemons is not a list of records"}
	}

	snap := &Snapshot{Format: FormatScanner, Records: make([]domain.RawRecord, 0, len(records))}
	for i, sr := range records {
		rec := sr.canonical()
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("rec-%d", i)
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}
