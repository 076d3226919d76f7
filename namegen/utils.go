package namegen

import (
	"math/rand"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TitleCaser = cases.Title(language.English)
var LowerCaser = cases.Lower(language.English)

var Adjs []string = []string{
	"bold",
	"breezy",
	"bright",
	"chic",
	"classic",
	"cozy",
	"crisp",
	"dapper",
	"daring",
	"dreamy",
	"effortless",
	"elegant",
	"fresh",
	"golden",
	"graceful",
	"lively",
	"luminous",
	"mellow",
	"modern",
	"moody",
	"polished",
	"playful",
	"quiet",
	"radiant",
	"relaxed",
	"sharp",
	"sleek",
	"soft",
	"sunny",
	"timeless",
	"velvet",
	"vivid",
	"warm",
	"whimsical",
}

var Nouns []string = []string{
	"ensemble",
	"look",
	"outfit",
	"combo",
	"statement",
	"silhouette",
	"palette",
	"layering",
	"affair",
	"moment",
	"mood",
	"edit",
	"rotation",
	"uniform",
	"staple",
	"classic",
	"getup",
	"attire",
	"wardrobe",
	"mix",
}

func RandomAdjective() string {

	pick := rand.Intn(len(Adjs))
	return Adjs[pick]
}

func RandomNounlike() string {

	pick := rand.Intn(len(Nouns))
	return Nouns[pick]
}

// RandomOutfitName makes a two word display name like "Breezy Ensemble".
func RandomOutfitName() string {
	return TitleCaser.String(RandomAdjective() + " " + RandomNounlike())
}
