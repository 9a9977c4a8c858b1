package enrich

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pokedex-tracker/internal/config"
	"pokedex-tracker/internal/domain"
	"pokedex-tracker/internal/rankings"

	"github.com/rs/zerolog"
)

// Dex numbers with a dedicated female sprite variant (.g2 suffix).
var genderVariantDex = map[int]bool{
	3: true, 12: true, 19: true, 20: true, 25: true, 26: true, 41: true, 42: true,
	44: true, 45: true, 64: true, 65: true, 84: true, 85: true, 97: true, 111: true,
	112: true, 118: true, 119: true, 123: true, 129: true, 130: true, 133: true,
	154: true, 165: true, 166: true, 178: true, 185: true, 186: true, 190: true,
	194: true, 195: true, 198: true, 202: true, 203: true, 207: true, 208: true,
	212: true, 214: true, 215: true, 217: true, 221: true, 224: true, 229: true,
	232: true, 255: true, 256: true, 257: true, 267: true, 269: true, 272: true,
	274: true, 275: true, 307: true, 308: true, 315: true, 316: true, 317: true,
	322: true, 323: true, 332: true, 350: true, 369: true, 396: true, 397: true,
	398: true, 400: true, 401: true, 402: true, 403: true, 404: true, 405: true,
	407: true, 415: true, 417: true, 418: true, 419: true, 424: true, 443: true,
	444: true, 445: true, 449: true, 450: true, 453: true, 454: true, 456: true,
	457: true, 459: true, 460: true, 461: true, 464: true, 465: true, 473: true,
	521: true, 678: true, 876: true, 902: true, 916: true,
}

// Form parts whose sprites never carry the female variant suffix.
var noG2Forms = map[string]bool{
	"ALOLA": true, "PALDEA": true, "ROCK_STAR": true, "VS_2019": true, "POP_STAR": true,
}

var copyYearRe = regexp.MustCompile(`\bCOPY_(\d{4})\b`)

// SpritePath builds the static sprite asset path for a record. The naming
// convention keys off the internal species token prefixing the form field,
// not the human display name.
func SpritePath(rec *domain.EnrichedRecord) string {
	form := copyYearRe.ReplaceAllString(rec.Form, "COPY$1")

	// Apex forms have fixed sprite names.
	switch form {
	case "LUGIA_S":
		return apexSprite(249, rec.Shiny)
	case "HO_OH_S":
		return apexSprite(250, rec.Shiny)
	}

	name := strings.ToUpper(rec.Name)
	if form != "" {
		name = speciesTokenOf(form)
	}

	formPart := strings.TrimPrefix(form, name+"_")
	imageName := fmt.Sprintf("pm%d", rec.Number)

	switch {
	case rec.Number == 710 || rec.Number == 711:
		// Pumpkaboo and Gourgeist sprites are keyed by size.
		size := strings.ToUpper(rec.HeightLabel)
		if size != "XXS" && size != "XS" && size != "XL" && size != "XXL" {
			size = "AVERAGE"
		}
		imageName += ".f" + size
	case rec.Number == 474:
		// Porygon-Z has no form suffix.
	case form == "MR_MIME_NORMAL" || form == "HO_OH_NORMAL":
	case isMultiTokenName(name) && form != "" && !strings.HasSuffix(form, "_NORMAL"):
		if parts := strings.Split(form, "_"); len(parts) >= 3 {
			formPart = strings.Join(parts[2:], "_")
		}
		imageName += ".f" + formPart
	case name == "UNOWN" || name == "BURMY" || name == "WORMADAM":
		imageName += ".f" + form
	case (name == "KYUREM" || name == "GENESECT") && strings.HasSuffix(form, "_NORMAL"):
		imageName += ".fNORMAL"
	case form == "NIDORAN_NORMAL" || form == "NIDORINA_NORMAL":
	case rec.Costume != "":
		imageName += ".c" + rec.Costume
	case form != "" && form != name+"_NORMAL":
		imageName += ".f" + formPart
	}

	if strings.EqualFold(rec.Gender, "female") &&
		genderVariantDex[rec.Number] &&
		!noG2Forms[formPart] &&
		!rec.Dynamax && !rec.Gigantamax {
		imageName += ".g2"
	}

	if rec.Shiny {
		imageName += ".s"
	}

	return "img/assets/" + imageName + ".icon.png"
}

func apexSprite(number int, shiny bool) string {
	if shiny {
		return fmt.Sprintf("img/assets/pm%d.fS.s.icon.png", number)
	}
	return fmt.Sprintf("img/assets/pm%d.fS.icon.png", number)
}

func isMultiTokenName(name string) bool {
	return name == "MR_MIME" || name == "HO_OH" || name == "PORYGON_Z"
}

func speciesTokenOf(form string) string {
	for _, sp := range []string{"MR_MIME", "HO_OH", "PORYGON_Z"} {
		if strings.HasPrefix(form, sp+"_") || form == sp {
			return sp
		}
	}
	if i := strings.IndexByte(form, '_'); i > 0 {
		return form[:i]
	}
	return form
}

// Form tokens that appear in animated gif filenames.
var animatedFormTokens = []string{
	"gigantamax-nosparks-nopowder", "gigantamax-nosparks", "gigantamax",
	"alola", "galar", "zen", "lowkey", "noice", "busted", "sunshine",
	"school", "fan", "frost", "heat", "mow", "wash", "crowned", "black",
	"white", "dawnwings", "duskmane",
}

const AnimatedIndexFilename = "3d.txt"

// AnimatedIndex is the set of available animated gif filenames, loaded
// once from the data dir.
type AnimatedIndex struct {
	pool map[string]bool
}

func LoadAnimatedIndex(cfg *config.Config, logger zerolog.Logger) *AnimatedIndex {
	idx := &AnimatedIndex{pool: map[string]bool{}}

	path := filepath.Join(cfg.DataDir, AnimatedIndexFilename)
	f, err := os.Open(path)
	if err != nil {
		logger.Debug().Str("path", path).Msg("animated image index not found")
		return idx
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" && strings.HasSuffix(name, ".gif") {
			idx.pool[name] = true
		}
	}

	logger.Info().Int("gifs", len(idx.pool)).Msg("animated image index loaded")
	return idx
}

// Pick returns the gif filename for a record, or "" when none exists.
// Candidates are generated in preference order (most specific form and
// gender variant first) and the first one present in the index wins.
func (a *AnimatedIndex) Pick(rec *domain.EnrichedRecord) string {
	if len(a.pool) == 0 || rec.Number <= 0 || rec.Name == "" {
		return ""
	}

	num := fmt.Sprintf("%03d", rec.Number)
	species := strings.ReplaceAll(rankings.SlugSpecies(rec.Name), "_", "-")

	shinySuffix := ""
	if rec.Shiny {
		shinySuffix = "-s"
	}

	genderTags := []string{""}
	female := strings.EqualFold(rec.Gender, "female")
	if female {
		genderTags = []string{"-f", "-female"}
	}

	var candidates []string
	for _, tokens := range formVariantPreference(formTokensOf(rec.Form)) {
		formPart := ""
		if len(tokens) > 0 {
			formPart = "-" + strings.Join(tokens, "-")
		}
		for _, gtag := range genderTags {
			candidates = append(candidates, num+"-"+species+formPart+gtag+shinySuffix+".gif")
		}
		if female {
			candidates = append(candidates, num+"-"+species+formPart+shinySuffix+".gif")
		}
	}
	candidates = append(candidates,
		num+"-"+species+shinySuffix+".gif",
		num+"-"+species+".gif",
	)

	for _, cand := range candidates {
		if a.pool[cand] {
			return cand
		}
	}
	return ""
}

func formTokensOf(form string) []string {
	lower := strings.ToLower(form)
	var tokens []string
	for _, t := range animatedFormTokens {
		if strings.Contains(lower, t) {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// formVariantPreference orders form-token combinations from most to least
// specific, ending with the bare (formless) variant.
func formVariantPreference(tokens []string) [][]string {
	if len(tokens) == 0 {
		return [][]string{{}}
	}

	var variants [][]string
	seen := map[string]bool{}
	add := func(v []string) {
		key := strings.Join(v, "|")
		if !seen[key] {
			seen[key] = true
			variants = append(variants, v)
		}
	}

	for _, g := range []string{"gigantamax-nosparks-nopowder", "gigantamax-nosparks", "gigantamax"} {
		for _, t := range tokens {
			if t == g {
				add([]string{g})
			}
		}
	}
	for _, t := range tokens {
		if !strings.HasPrefix(t, "gigantamax") {
			add([]string{t})
		}
	}
	add([]string{})
	return variants
}
