package services

import (
	"testing"

	"closetapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyWeatherKeywordsWinOverTemperature(t *testing.T) {
	// rain keyword beats a hot temperature
	category := ClassifyWeather(&WeatherObservation{Temperature: 30, Condition: "Heavy RAIN showers"})
	assert.Equal(t, WeatherRainy, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: -10, Condition: "light snow"})
	assert.Equal(t, WeatherSnowy, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: 20, Condition: "scattered clouds"})
	assert.Equal(t, WeatherCloudy, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: 20, Condition: "strong wind"})
	assert.Equal(t, WeatherWindy, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: 2, Condition: "clear sky"})
	assert.Equal(t, WeatherSunny, category)
}

func TestClassifyWeatherTemperatureFallback(t *testing.T) {
	category := ClassifyWeather(&WeatherObservation{Temperature: 3, Condition: "overcast"})
	assert.Equal(t, WeatherCold, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: 28, Condition: "hazy"})
	assert.Equal(t, WeatherHot, category)

	category = ClassifyWeather(&WeatherObservation{Temperature: 18, Condition: "fog"})
	assert.Equal(t, WeatherMild, category)
}

func TestClassifyWeatherNilObservation(t *testing.T) {
	assert.Equal(t, WeatherMild, ClassifyWeather(nil))
}

func TestRecommendForWeatherKnownCategories(t *testing.T) {
	rec := RecommendForWeather(WeatherRainy)
	assert.Contains(t, rec.ClothingTypes, "outerwear")
	assert.NotEmpty(t, rec.Recommendation)

	rec = RecommendForWeather(WeatherHot)
	assert.NotContains(t, rec.ClothingTypes, "outerwear")
	assert.NotEmpty(t, rec.Recommendation)
}

func TestRecommendForWeatherUnknownCategory(t *testing.T) {
	rec := RecommendForWeather(WeatherCategory("apocalypse"))
	assert.Empty(t, rec.ClothingTypes)
	assert.NotEmpty(t, rec.Recommendation)
}

func fakeItem(id uint, name string, category models.Category, color string) models.ClothingItem {
	item := models.ClothingItem{
		Name:     name,
		Category: category,
		Color:    color,
		Season:   "all",
	}
	item.ID = id
	return item
}

func testWardrobe() []models.ClothingItem {
	return []models.ClothingItem{
		fakeItem(1, "White Tee", models.CategoryTops, "white"),
		fakeItem(2, "Silk Blouse", models.CategoryTops, "pink"),
		fakeItem(3, "Plaid Skirt", models.CategoryBottoms, "yellow"),
		fakeItem(4, "Jeans", models.CategoryBottoms, "blue"),
		fakeItem(5, "Navy Blazer", models.CategoryOuterwear, "navy"),
		fakeItem(6, "Red Blazer", models.CategoryOuterwear, "red"),
		fakeItem(7, "Loafers", models.CategoryShoes, "brown"),
		fakeItem(8, "Pearl Necklace", models.CategoryAccessories, "white"),
		fakeItem(9, "Slip Dress", models.CategoryDresses, "lavender"),
	}
}

func TestAssembleOnePickPerSlot(t *testing.T) {
	assembler := NewOutfitAssembler(42)
	wardrobe := testWardrobe()

	picks := assembler.Assemble(wardrobe, []string{"tops", "bottoms", "outerwear", "shoes", "accessories"}, "")

	require.NotEmpty(t, picks)
	seenCategories := map[models.Category]int{}
	wardrobeIDs := map[uint]bool{}
	for _, item := range wardrobe {
		wardrobeIDs[item.ID] = true
	}
	for _, pick := range picks {
		seenCategories[pick.Category]++
		assert.True(t, wardrobeIDs[pick.ID], "pick %v must come from the wardrobe", pick.ID)
	}
	for category, count := range seenCategories {
		assert.LessOrEqual(t, count, 1, "slot %s picked more than once", category)
	}
	// full wardrobe covers every slot, so every slot fills
	assert.Len(t, picks, len(OutfitSlots))
}

func TestAssembleRespectsPreferredCategories(t *testing.T) {
	assembler := NewOutfitAssembler(7)
	wardrobe := testWardrobe()

	picks := assembler.Assemble(wardrobe, []string{"tops", "bottoms", "shoes"}, "")

	for _, pick := range picks {
		assert.NotEqual(t, models.CategoryOuterwear, pick.Category)
		assert.NotEqual(t, models.CategoryAccessories, pick.Category)
	}
}

func TestAssembleSparseWardrobeIgnoresFilter(t *testing.T) {
	assembler := NewOutfitAssembler(1)
	// only shoes in the closet, weather filter that excludes them must not
	// leave the user with nothing
	wardrobe := []models.ClothingItem{
		fakeItem(1, "Sneakers", models.CategoryShoes, "white"),
		fakeItem(2, "Boots", models.CategoryShoes, "black"),
	}

	picks := assembler.Assemble(wardrobe, []string{"tops", "bottoms"}, "")
	require.Len(t, picks, 1)
	assert.Equal(t, models.CategoryShoes, picks[0].Category)
}

func TestAssembleEmptyWardrobe(t *testing.T) {
	assembler := NewOutfitAssembler(1)
	picks := assembler.Assemble([]models.ClothingItem{}, []string{"tops"}, "")
	assert.Empty(t, picks)
}

func TestAssembleUnknownMoodStillAssembles(t *testing.T) {
	assembler := NewOutfitAssembler(3)
	picks := assembler.Assemble(testWardrobe(), []string{"tops", "bottoms", "shoes"}, "mysterious")
	assert.NotEmpty(t, picks)
}

func TestApplyMoodColorMatchesRankFirst(t *testing.T) {
	pool := []models.ClothingItem{
		fakeItem(6, "Red Blazer", models.CategoryOuterwear, "red"),
		fakeItem(3, "Plaid Skirt", models.CategoryBottoms, "yellow"),
		fakeItem(5, "Navy Blazer", models.CategoryOuterwear, "navy"),
	}

	ordered := ApplyMood(pool, "professional")

	require.Len(t, ordered, 3)
	// navy matches a professional color, so it outranks the red blazer even
	// though both are preferred-category outerwear
	assert.Equal(t, "Navy Blazer", ordered[0].Name)
	assert.Equal(t, "Red Blazer", ordered[1].Name)
	assert.Equal(t, "Plaid Skirt", ordered[2].Name)
}

func TestApplyMoodIsNotAFilter(t *testing.T) {
	pool := testWardrobe()
	ordered := ApplyMood(pool, "romantic")
	assert.Len(t, ordered, len(pool))
}

func TestApplyMoodUnknownMoodNoOp(t *testing.T) {
	pool := testWardrobe()
	ordered := ApplyMood(pool, "grumpy")
	require.Len(t, ordered, len(pool))
	for i := range pool {
		assert.Equal(t, pool[i].Name, ordered[i].Name)
	}
}

func TestApplyMoodStableWithinBuckets(t *testing.T) {
	pool := []models.ClothingItem{
		fakeItem(1, "Black Pumps", models.CategoryShoes, "black"),
		fakeItem(2, "Grey Slacks", models.CategoryBottoms, "grey"),
		fakeItem(3, "White Shirt", models.CategoryTops, "white"),
	}
	// all three are color matches for professional, order must not change
	ordered := ApplyMood(pool, "professional")
	require.Len(t, ordered, 3)
	assert.Equal(t, "Black Pumps", ordered[0].Name)
	assert.Equal(t, "Grey Slacks", ordered[1].Name)
	assert.Equal(t, "White Shirt", ordered[2].Name)
}
