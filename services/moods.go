package services

import (
	"strings"

	"closetapi/models"
)

type MoodPreference struct {
	Mood                string   `json:"mood"`
	PreferredCategories []string `json:"preferred_categories"`
	PreferredColors     []string `json:"preferred_colors"`
}

// static per-mood lookup, not user editable
var moodPreferences = map[string]MoodPreference{
	"professional": {
		Mood:                "professional",
		PreferredCategories: []string{"tops", "bottoms", "outerwear", "shoes"},
		PreferredColors:     []string{"navy", "grey", "gray", "black", "white"},
	},
	"romantic": {
		Mood:                "romantic",
		PreferredCategories: []string{"dresses", "tops", "accessories"},
		PreferredColors:     []string{"pink", "red", "white", "lavender"},
	},
	"casual": {
		Mood:                "casual",
		PreferredCategories: []string{"tops", "bottoms", "shoes"},
		PreferredColors:     []string{"blue", "white", "beige", "olive"},
	},
	"energetic": {
		Mood:                "energetic",
		PreferredCategories: []string{"tops", "bottoms", "shoes", "accessories"},
		PreferredColors:     []string{"yellow", "orange", "red", "green"},
	},
	"relaxed": {
		Mood:                "relaxed",
		PreferredCategories: []string{"tops", "bottoms", "shoes"},
		PreferredColors:     []string{"beige", "cream", "brown", "sage"},
	},
	"confident": {
		Mood:                "confident",
		PreferredCategories: []string{"dresses", "outerwear", "shoes"},
		PreferredColors:     []string{"red", "black", "gold"},
	},
}

func MoodFor(mood string) (MoodPreference, bool) {
	pref, ok := moodPreferences[strings.ToLower(mood)]
	return pref, ok
}

// ApplyMood reorders the pool so items matching the mood's preferred
// attributes come first: color (or tag) matches ahead of category-only
// matches ahead of everything else. A preference ordering, not a filter:
// nothing is dropped, relative order inside each bucket is preserved.
// Unknown moods return the pool unchanged.
func ApplyMood(pool []models.ClothingItem, mood string) []models.ClothingItem {
	pref, ok := MoodFor(mood)
	if !ok {
		return pool
	}
	colorMatched := make([]models.ClothingItem, 0, len(pool))
	categoryMatched := make([]models.ClothingItem, 0, len(pool))
	rest := make([]models.ClothingItem, 0, len(pool))
	for _, item := range pool {
		switch {
		case matchesMoodColor(item, pref):
			colorMatched = append(colorMatched, item)
		case matchesMoodCategory(item, pref):
			categoryMatched = append(categoryMatched, item)
		default:
			rest = append(rest, item)
		}
	}
	return append(append(colorMatched, categoryMatched...), rest...)
}

func matchesMoodColor(item models.ClothingItem, pref MoodPreference) bool {
	color := strings.ToLower(item.Color)
	for _, preferred := range pref.PreferredColors {
		if preferred != "" && strings.Contains(color, preferred) {
			return true
		}
	}
	for _, tag := range item.Tags {
		for _, preferred := range pref.PreferredColors {
			if strings.EqualFold(tag, preferred) {
				return true
			}
		}
	}
	return false
}

func matchesMoodCategory(item models.ClothingItem, pref MoodPreference) bool {
	for _, category := range pref.PreferredCategories {
		if strings.EqualFold(string(item.Category), category) {
			return true
		}
	}
	return false
}
