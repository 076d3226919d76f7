package services

import (
	"math/rand"
	"strings"
	"time"

	"closetapi/models"
)

type WeatherCategory string

const (
	WeatherSunny  WeatherCategory = "sunny"
	WeatherCloudy WeatherCategory = "cloudy"
	WeatherRainy  WeatherCategory = "rainy"
	WeatherSnowy  WeatherCategory = "snowy"
	WeatherWindy  WeatherCategory = "windy"
	WeatherCold   WeatherCategory = "cold"
	WeatherHot    WeatherCategory = "hot"
	WeatherMild   WeatherCategory = "mild"
)

// keyword rules are checked before temperature thresholds, first match wins
var weatherKeywordRules = []struct {
	keyword  string
	category WeatherCategory
}{
	{"rain", WeatherRainy},
	{"snow", WeatherSnowy},
	{"cloud", WeatherCloudy},
	{"wind", WeatherWindy},
	{"sun", WeatherSunny},
	{"clear", WeatherSunny},
}

const (
	coldTemperatureThreshold = 5.0  // °C
	hotTemperatureThreshold  = 25.0 // °C
)

// ClassifyWeather maps a raw observation to a coarse category. Total: a nil
// observation classifies as mild, never an error.
func ClassifyWeather(observation *WeatherObservation) WeatherCategory {
	if observation == nil {
		return WeatherMild
	}
	condition := strings.ToLower(observation.Condition)
	for _, rule := range weatherKeywordRules {
		if strings.Contains(condition, rule.keyword) {
			return rule.category
		}
	}
	if observation.Temperature < coldTemperatureThreshold {
		return WeatherCold
	}
	if observation.Temperature > hotTemperatureThreshold {
		return WeatherHot
	}
	return WeatherMild
}

type WeatherRecommendation struct {
	ClothingTypes  []string `json:"clothing_types"`
	Recommendation string   `json:"recommendation"`
}

var weatherRecommendations = map[WeatherCategory]WeatherRecommendation{
	WeatherSunny: {
		ClothingTypes:  []string{"tops", "bottoms", "dresses", "shoes", "accessories"},
		Recommendation: "Bright and sunny! Light fabrics and don't forget your sunglasses ☀️",
	},
	WeatherHot: {
		ClothingTypes:  []string{"tops", "bottoms", "dresses", "shoes"},
		Recommendation: "It's hot out there, go for breathable fabrics and light colors",
	},
	WeatherCloudy: {
		ClothingTypes:  []string{"tops", "bottoms", "outerwear", "shoes", "accessories"},
		Recommendation: "Grey skies today, a pop of color will lift the whole look",
	},
	WeatherRainy: {
		ClothingTypes:  []string{"tops", "bottoms", "outerwear", "shoes"},
		Recommendation: "Rain on the way, pick waterproof outerwear and closed shoes",
	},
	WeatherSnowy: {
		ClothingTypes:  []string{"tops", "bottoms", "outerwear", "shoes", "accessories"},
		Recommendation: "Snow day! Warm layers, boots and a cozy scarf are your friends",
	},
	WeatherWindy: {
		ClothingTypes:  []string{"tops", "bottoms", "outerwear", "shoes"},
		Recommendation: "Windy today, skip the loose scarf and grab a fitted jacket",
	},
	WeatherCold: {
		ClothingTypes:  []string{"tops", "bottoms", "outerwear", "shoes", "accessories"},
		Recommendation: "Bundle up! Layering is the move today",
	},
	WeatherMild: {
		ClothingTypes:  []string{"tops", "bottoms", "shoes", "accessories"},
		Recommendation: "Mild and easy, perfect weather for light layers",
	},
}

// RecommendForWeather is a pure lookup. Unknown categories fall back to a
// neutral tip with no preferred clothing types instead of erroring.
func RecommendForWeather(category WeatherCategory) WeatherRecommendation {
	if rec, ok := weatherRecommendations[category]; ok {
		return rec
	}
	return WeatherRecommendation{
		ClothingTypes:  []string{},
		Recommendation: "Wear whatever makes you feel fabulous today ✨",
	}
}

// SparseWardrobeThreshold: when the weather filter leaves this many items or
// fewer, the assembler discards the filter and uses the full wardrobe so a
// small closet still produces a complete look.
const SparseWardrobeThreshold = 3

// OutfitSlots is the fixed slot order of an assembled outfit, at most one
// item each. Dresses and makeup are never slot-picked, they only enter
// outfits explicitly.
var OutfitSlots = []models.Category{
	models.CategoryTops,
	models.CategoryBottoms,
	models.CategoryOuterwear,
	models.CategoryShoes,
	models.CategoryAccessories,
}

type OutfitAssembler struct {
	Rand            *rand.Rand
	SparseThreshold int
}

func NewOutfitAssembler(seed int64) *OutfitAssembler {
	return &OutfitAssembler{
		Rand:            rand.New(rand.NewSource(seed)),
		SparseThreshold: SparseWardrobeThreshold,
	}
}

func NewDefaultOutfitAssembler() *OutfitAssembler {
	return NewOutfitAssembler(time.Now().UnixNano())
}

// Assemble picks at most one item per slot from the wardrobe. Items outside
// the preferred categories are filtered out first unless that leaves the pool
// too sparse. A recognized mood reorders each slot's candidates so matching
// items are favored, but never guarantees a match wins.
func (a *OutfitAssembler) Assemble(wardrobe []models.ClothingItem, preferredCategories []string, mood string) []models.ClothingItem {
	if len(wardrobe) == 0 {
		return []models.ClothingItem{}
	}

	pool := filterByCategories(wardrobe, preferredCategories)
	if len(pool) <= a.SparseThreshold {
		pool = wardrobe
	}

	moodApplied := false
	if mood != "" {
		if _, ok := MoodFor(mood); ok {
			pool = ApplyMood(pool, mood)
			moodApplied = true
		}
	}

	picks := []models.ClothingItem{}
	for _, slot := range OutfitSlots {
		var candidates []models.ClothingItem
		for _, item := range pool {
			if item.Category == slot {
				candidates = append(candidates, item)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		index := a.Rand.Intn(len(candidates))
		if moodApplied && len(candidates) > 1 {
			// mood-preferred candidates sit at the front of the pool, taking
			// the smaller of two draws skews the pick toward them without
			// excluding the rest
			second := a.Rand.Intn(len(candidates))
			if second < index {
				index = second
			}
		}
		picks = append(picks, candidates[index])
	}
	return picks
}

func filterByCategories(wardrobe []models.ClothingItem, categories []string) []models.ClothingItem {
	if len(categories) == 0 {
		return wardrobe
	}
	allowed := make(map[string]bool, len(categories))
	for _, category := range categories {
		allowed[strings.ToLower(category)] = true
	}
	var filtered []models.ClothingItem
	for _, item := range wardrobe {
		if allowed[string(item.Category)] {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
