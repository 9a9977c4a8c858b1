package snapshot

import (
	"regexp"
	"strconv"
	"strings"

	"pokedex-tracker/internal/domain"
)

// scannerRecord is the scanner tool's per-creature export shape. Enum
// values carry proto-style prefixes that must be stripped before the
// tokens line up with the master data.
type scannerRecord struct {
	DexNumber   int     `json:"dexNumber"`
	PokemonName string  `json:"pokemonName"`
	Pokemon     string  `json:"pokemon"` // e.g. HoloPokemonId_Pikachu
	CP          int     `json:"cp"`
	Stamina     int     `json:"stamina"`
	MaxStamina  int     `json:"maxStamina"`
	HeightM     float64 `json:"heightM"`
	WeightKg    float64 `json:"weightKg"`
	IsLucky     bool    `json:"isLucky"`
	IsShadow    bool    `json:"isShadow"`
	IsPurified  bool    `json:"isPurified"`
	CreationMs  int64   `json:"creationTimeMs"`

	IV struct {
		Atk int `json:"atk"`
		Def int `json:"def"`
		Sta int `json:"sta"`
	} `json:"iv"`

	Display struct {
		Form     string `json:"form"` // e.g. PokemonDisplayProto_Form_PikachuNormal
		Gender   string `json:"gender"`
		GenderID int    `json:"genderId"`
		IsShiny  bool   `json:"isShiny"`
		Costume  string `json:"costume"`
	} `json:"display"`

	Moves struct {
		Fast    string `json:"fast"`
		Charged string `json:"charged"`
	} `json:"moves"`

	Dynamax *struct {
		IsGigantamaxLikely bool `json:"isGigantamaxLikely"`
	} `json:"dynamax"`
}

func (sr *scannerRecord) canonical() domain.RawRecord {
	speciesToken := camelToUpperSnake(stripPrefix(sr.Pokemon, "HoloPokemonId_", "HoloPokemonId"))
	if speciesToken == "" {
		speciesToken = camelToUpperSnake(sr.PokemonName)
	}

	formToken := camelToUpperSnake(stripPrefix(sr.Display.Form, "PokemonDisplayProto_Form_"))
	switch {
	case formToken == "" || formToken == "FORM_UNSET":
		if speciesToken != "" {
			formToken = speciesToken + "_NORMAL"
		}
	case speciesToken != "" && !strings.HasPrefix(formToken, speciesToken):
		formToken = speciesToken + "_" + formToken
	}

	gmax := sr.Dynamax != nil && sr.Dynamax.IsGigantamaxLikely && !sr.gigantamaxFalsePositive()
	if gmax && !strings.Contains(formToken, "GIGANTAMAX") {
		if speciesToken != "" {
			formToken = speciesToken + "_GIGANTAMAX"
		} else {
			formToken += "_GIGANTAMAX"
		}
	}

	alignment := ""
	if sr.IsShadow {
		alignment = "SHADOW"
	} else if sr.IsPurified {
		alignment = "PURIFIED"
	}

	id := ""
	if sr.CreationMs > 0 {
		id = strconv.FormatInt(sr.CreationMs, 10)
	}

	name := sr.PokemonName
	if name == "" {
		name = titleFromToken(speciesToken)
	}

	rec := domain.RawRecord{
		ID:          id,
		Number:      sr.DexNumber,
		Form:        formToken,
		Name:        name,
		CP:          sr.CP,
		HP:          sr.Stamina,
		Height:      sr.HeightM,
		Weight:      sr.WeightKg,
		Gender:      genderFromDisplay(sr.Display.GenderID, sr.Display.Gender),
		Alignment:   alignment,
		Shiny:       sr.Display.IsShiny,
		Lucky:       sr.IsLucky,
		Costume:     costumeToken(sr.Display.Costume),
		FastMove:    camelToUpperSnake(stripPrefix(sr.Moves.Fast, "HoloPokemonMove_")),
		ChargedMove: camelToUpperSnake(stripPrefix(sr.Moves.Charged, "HoloPokemonMove_")),
		Dynamax:     sr.Dynamax != nil,
		Gigantamax:  gmax,
		CapturedAt:  sr.CreationMs,
	}
	rec.Attack, rec.Defence, rec.Stamina, rec.Suspect = clampIVs(sr.IV.Atk, sr.IV.Def, sr.IV.Sta)
	return rec
}

// Some exports incorrectly flag isGigantamaxLikely for Zacian/Zamazenta
// crowned forms and for Eternatus (dex 890).
func (sr *scannerRecord) gigantamaxFalsePositive() bool {
	if strings.Contains(sr.Display.Form, "ZamazentaCrownedShield") ||
		strings.Contains(sr.Display.Form, "ZacianCrownedSword") {
		return true
	}
	if sr.DexNumber == 890 {
		return true
	}
	return camelToUpperSnake(stripPrefix(sr.Pokemon, "HoloPokemonId_", "HoloPokemonId")) == "ETERNATUS"
}

func genderFromDisplay(genderID int, gender string) string {
	switch genderID {
	case 1:
		return "male"
	case 2:
		return "female"
	case 3:
		return "genderless"
	}
	switch camelToUpperSnake(stripPrefix(gender, "PokemonDisplayProto_Gender_")) {
	case "MALE":
		return "male"
	case "FEMALE":
		return "female"
	}
	if strings.Contains(strings.ToUpper(gender), "GENDERLESS") {
		return "genderless"
	}
	return ""
}

func costumeToken(costume string) string {
	tok := camelToUpperSnake(stripPrefix(costume, "HoloPokemonCostume_"))
	if tok == "" || tok == "UNSET" {
		return ""
	}
	return tok
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelSplitRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	multiUnderRe = regexp.MustCompile(`_+`)
)

func camelToUpperSnake(s string) string {
	if s == "" {
		return ""
	}
	s = nonAlnumRe.ReplaceAllString(s, "_")
	s = camelSplitRe.ReplaceAllString(s, "${1}_${2}")
	s = multiUnderRe.ReplaceAllString(s, "_")
	return strings.ToUpper(strings.Trim(s, "_"))
}

func stripPrefix(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

func titleFromToken(token string) string {
	words := strings.Split(strings.ToLower(token), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
