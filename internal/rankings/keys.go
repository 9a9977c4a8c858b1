package rankings

import (
	"strings"
)

// Species whose display names don't slug cleanly into ranking-table ids.
var specialNameAliases = map[string]string{
	"mr mime":    "mr_mime",
	"mr. mime":   "mr_mime",
	"mime jr":    "mime_jr",
	"mime jr.":   "mime_jr",
	"type: null": "type_null",
	"farfetch'd": "farfetchd",
	"sirfetch'd": "sirfetchd",
	"ho-oh":      "ho_oh",
	"porygon-z":  "porygon_z",
}

var accentFolder = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e",
	"á", "a", "à", "a", "â", "a",
	"í", "i", "ó", "o", "ú", "u",
	"♀", "", "♂", "",
)

// SlugSpecies converts a display name into the ranking-table id pattern.
func SlugSpecies(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	s = accentFolder.Replace(s)
	if alias, ok := specialNameAliases[s]; ok {
		return alias
	}
	s = strings.NewReplacer(".", "", "'", "", ":", "", " ", "_", "-", "_").Replace(s)
	if alias, ok := specialNameAliases[s]; ok {
		return alias
	}
	return s
}

// Internal species tokens that contain an underscore, so naive
// first-token splitting of the form would truncate them.
var multiTokenSpecies = []string{"MR_MIME", "HO_OH", "PORYGON_Z", "MIME_JR", "TYPE_NULL", "MR_RIME"}

var regionalSuffixes = map[string]string{
	"ALOLA":    "alolan",
	"ALOLAN":   "alolan",
	"GALAR":    "galarian",
	"GALARIAN": "galarian",
	"HISUI":    "hisuian",
	"HISUIAN":  "hisuian",
	"PALDEA":   "paldean",
	"PALDEAN":  "paldean",
}

// PrefixCandidates builds the ordered list of ranking-table keys to try for
// one record: the full form-derived id first, then regional shorthands,
// then the bare species id. Shadow records try every key with a _shadow
// suffix before the plain keys. The first key that resolves wins; callers
// must preserve this order.
func PrefixCandidates(name, form string, shadow bool) []string {
	form = strings.ToUpper(strings.TrimSpace(form))

	base := ""
	if form != "" {
		base = strings.ToLower(speciesTokenFromForm(form))
	} else {
		base = SlugSpecies(name)
	}

	var candidates []string

	if form != "" && base != "" && strings.HasPrefix(form, strings.ToUpper(base)+"_") {
		remainder := form[len(base)+1:]
		if remainder != "" && remainder != "NORMAL" {
			parts := strings.Split(remainder, "_")
			for i, p := range parts {
				if norm, ok := regionalSuffixes[p]; ok {
					parts[i] = norm
				} else {
					parts[i] = strings.ToLower(p)
				}
			}
			candidates = append(candidates, base+"_"+strings.Join(parts, "_"))
		}
	}

	for _, r := range []struct{ token, suffix string }{
		{"ALOLA", "alolan"}, {"GALAR", "galarian"}, {"HISUI", "hisuian"}, {"PALDEA", "paldean"},
	} {
		if strings.Contains(form, r.token) {
			candidates = append(candidates, base+"_"+r.suffix)
		}
	}

	candidates = append(candidates, base)

	out := make([]string, 0, len(candidates)*2)
	if shadow {
		for _, c := range candidates {
			out = append(out, c+"_shadow")
		}
	}
	out = append(out, candidates...)

	seen := make(map[string]bool, len(out))
	uniq := out[:0]
	for _, c := range out {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		uniq = append(uniq, c)
	}
	return uniq
}

// speciesTokenFromForm extracts the species token that prefixes a form
// value like RATTATA_ALOLA or MR_MIME_GALARIAN.
func speciesTokenFromForm(form string) string {
	for _, sp := range multiTokenSpecies {
		if form == sp || strings.HasPrefix(form, sp+"_") {
			return sp
		}
	}
	if i := strings.IndexByte(form, '_'); i > 0 {
		return form[:i]
	}
	return form
}
