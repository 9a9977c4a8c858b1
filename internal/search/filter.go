// Package search implements the in-game style query grammar used to filter
// a collection: name fragments, numeric ranges, star tiers, type and flag
// keywords, plus &, comma/semicolon and ! combinators.
package search

import (
	"regexp"
	"strconv"
	"strings"

	"pokedex-tracker/internal/domain"
)

var pokemonTypes = map[string]bool{
	"normal": true, "fire": true, "water": true, "electric": true,
	"grass": true, "ice": true, "fighting": true, "poison": true,
	"ground": true, "flying": true, "psychic": true, "bug": true,
	"rock": true, "ghost": true, "dragon": true, "dark": true,
	"steel": true, "fairy": true,
}

var (
	numberRangeRe = regexp.MustCompile(`^\d+(-\d*)?$|^-\d+$`)
	starTierRe    = regexp.MustCompile(`^[0-4]\*$`)
	orSplitRe     = regexp.MustCompile(`[,;]`)
)

// Filter applies one query to a record list, preserving input order. An
// empty query matches everything. Combinators nest: OR binds loosest, then
// AND, then a leading ! negates the rest of the clause.
func Filter(records []domain.PvPRecord, query string) []domain.PvPRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	if strings.ContainsAny(query, ",;") {
		seen := make(map[string]bool)
		var out []domain.PvPRecord
		for _, part := range orSplitRe.Split(query, -1) {
			for _, rec := range Filter(records, part) {
				if !seen[rec.ID] {
					seen[rec.ID] = true
					out = append(out, rec)
				}
			}
		}
		return out
	}

	if strings.Contains(query, "&") {
		out := records
		for _, part := range strings.Split(query, "&") {
			out = Filter(out, part)
		}
		return out
	}

	if strings.HasPrefix(query, "!") {
		matched := make(map[string]bool)
		for _, rec := range Filter(records, query[1:]) {
			matched[rec.ID] = true
		}
		var out []domain.PvPRecord
		for _, rec := range records {
			if !matched[rec.ID] {
				out = append(out, rec)
			}
		}
		return out
	}

	var out []domain.PvPRecord
	for i := range records {
		if matchClause(&records[i].EnrichedRecord, query) {
			out = append(out, records[i])
		}
	}
	return out
}

// matchClause evaluates a single atomic clause against one record.
func matchClause(rec *domain.EnrichedRecord, q string) bool {
	switch {
	case q == "apex":
		return rec.Apex

	case strings.HasPrefix(q, "+"):
		return strings.Contains(strings.ToLower(rec.Family), q[1:])

	case strings.HasPrefix(q, "cp"):
		return matchRange(q, "cp", rec.CP)
	case strings.HasPrefix(q, "hp"):
		return matchRange(q, "hp", rec.HP)
	case strings.HasPrefix(q, "atk"):
		return matchRange(q, "atk", rec.Attack)
	case strings.HasPrefix(q, "def"):
		return matchRange(q, "def", rec.Defence)
	case strings.HasPrefix(q, "stm"):
		return matchRange(q, "stm", rec.Stamina)

	case numberRangeRe.MatchString(q):
		return matchNumberRange(q, rec.Number)

	case starTierRe.MatchString(q):
		return rec.Tier == int(q[0]-'0')

	case q == "shiny":
		return rec.Shiny
	case q == "shadow":
		return rec.Shadow
	case q == "purified":
		return rec.Purified
	case q == "lucky":
		return rec.Lucky
	case q == "legendary":
		return rec.Legendary
	case q == "mythical":
		return rec.Mythic

	case q == "male" || q == "female":
		return strings.ToLower(rec.Gender) == q
	case q == "genderunknown":
		g := strings.ToLower(rec.Gender)
		return g != "male" && g != "female"

	case q == "xxs" || q == "xs" || q == "xl" || q == "xxl":
		return rec.HeightLabel == q || rec.WeightLabel == q

	case pokemonTypes[q]:
		for _, t := range rec.Types {
			if t == q {
				return true
			}
		}
		return false

	case q == "costume":
		return rec.Costume != ""
	case q == "shundo":
		return rec.Shundo
	case q == "nundo":
		return rec.Nundo
	case q == "gigantamax" || q == "gmax":
		return rec.Gigantamax
	case q == "dynamax":
		return rec.Dynamax || rec.Gigantamax
	}

	return strings.Contains(strings.ToLower(rec.Name), q) ||
		strings.Contains(strings.ToLower(rec.Form), q) ||
		strings.Contains(rec.SearchText, q)
}

// matchRange evaluates "cp100", "cp100-", "cp-100" and "cp100-200" style
// clauses; a malformed clause matches nothing.
func matchRange(q, prefix string, value int) bool {
	q = q[len(prefix):]

	if !strings.Contains(q, "-") {
		n, err := strconv.Atoi(q)
		return err == nil && value == n
	}

	parts := strings.SplitN(q, "-", 2)
	switch {
	case strings.HasPrefix(q, "-"):
		max, err := strconv.Atoi(parts[1])
		return err == nil && value <= max
	case strings.HasSuffix(q, "-"):
		min, err := strconv.Atoi(parts[0])
		return err == nil && value >= min
	default:
		min, err := strconv.Atoi(parts[0])
		if err != nil {
			return false
		}
		max, err := strconv.Atoi(parts[1])
		if err != nil {
			return false
		}
		return value >= min && value <= max
	}
}

func matchNumberRange(q string, number int) bool {
	return matchRange(q, "", number)
}

var sizePriority = map[string]int{"xxl": 5, "xl": 4, "": 3, "xs": 2, "xxs": 1}

// Unique collapses a list to one representative per (species, form,
// costume, variant, lucky) combination, where variant is the dominant flag
// in priority order apex > shiny > shadow > purified > normal. Within a
// bucket the physically largest specimen wins. First-seen bucket order is
// preserved.
func Unique(records []domain.PvPRecord) []domain.PvPRecord {
	type key struct {
		number  int
		costume string
		form    string
		variant string
		lucky   bool
	}

	variantOf := func(rec *domain.EnrichedRecord) string {
		switch {
		case rec.Apex:
			return "apex"
		case rec.Shiny:
			return "shiny"
		case rec.Shadow:
			return "shadow"
		case rec.Purified:
			return "purified"
		}
		return "normal"
	}

	var order []key
	byKey := map[key]domain.PvPRecord{}

	for _, rec := range records {
		k := key{
			number:  rec.Number,
			costume: rec.Costume,
			form:    rec.Form,
			variant: variantOf(&rec.EnrichedRecord),
			lucky:   rec.Lucky,
		}
		existing, ok := byKey[k]
		if !ok {
			order = append(order, k)
			byKey[k] = rec
			continue
		}
		if sizePriority[rec.WeightLabel] > sizePriority[existing.WeightLabel] {
			byKey[k] = rec
		}
	}

	out := make([]domain.PvPRecord, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}
