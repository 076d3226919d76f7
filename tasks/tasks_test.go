package tasks

import (
	"context"
	"os"
	"testing"

	"closetapi/dbhelper"
	"closetapi/models"
	"closetapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStylistItemIDs(t *testing.T) {
	wardrobe := []models.ClothingItem{
		{Name: "White Tee", Category: "tops"},
		{Name: "Black Tee", Category: "tops"},
		{Name: "Jeans", Category: "bottoms"},
		{Name: "Slip Dress", Category: "dresses"},
		{Name: "Loafers", Category: "shoes"},
		{Name: "Gold Hoops", Category: "accessories"},
	}
	for i := range wardrobe {
		wardrobe[i].ID = uint(i + 1)
	}

	err := validateStylistItemIDs([]int64{1, 3, 5, 6}, wardrobe)
	assert.NoError(t, err)

	err = validateStylistItemIDs([]int64{4, 5, 6}, wardrobe)
	assert.NoError(t, err, "dress with shoes and accessories is a valid outfit")

	err = validateStylistItemIDs([]int64{1, 999}, wardrobe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the wardrobe")

	err = validateStylistItemIDs([]int64{1, 2, 3}, wardrobe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one tops")

	err = validateStylistItemIDs([]int64{4, 3}, wardrobe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dress combined")
}

func TestCleanAIResponseText(t *testing.T) {
	raw := "```json\n{\"name\": \"City Chic\"}\n```"
	assert.JSONEq(t, `{"name": "City Chic"}`, cleanAIResponseText(raw))
	assert.Equal(t, "{}", cleanAIResponseText("{}"))
}

func TestHandleOutfitGenerationTask(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake")
	user := test.FakeUser(db)

	tee := test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")
	jeans := test.FakeClothingItem(db, user.ID, "Jeans", "bottoms", "blue")
	loafers := test.FakeClothingItem(db, user.ID, "Loafers", "shoes", "brown")

	generation := models.OutfitGeneration{UserAccountID: user.ID, Status: "pending"}
	require.NoError(t, db.Create(&generation).Error)

	task, err := NewOutfitGenerationTask(user.ID, generation.ID)
	require.NoError(t, err)

	stylist := test.MockStylist{ItemIDs: []int64{int64(tee.ID), int64(jeans.ID), int64(loafers.ID)}}
	err = HandleOutfitGenerationTask(context.Background(), task, db, stylist, nil)
	require.NoError(t, err)

	var reloaded models.OutfitGeneration
	require.NoError(t, db.First(&reloaded, generation.ID).Error)
	assert.Equal(t, "completed", reloaded.Status)
	require.NotNil(t, reloaded.OutfitID)
	require.NotNil(t, reloaded.LLMModel)
	require.NotNil(t, reloaded.LLMTotalTokenCount)
	assert.Equal(t, int32(11), *reloaded.LLMTotalTokenCount)

	var outfit models.Outfit
	require.NoError(t, db.First(&outfit, *reloaded.OutfitID).Error)
	assert.Equal(t, "City Chic", outfit.Name)
	assert.Equal(t, "ai", outfit.Source)
	assert.Equal(t, user.ID, outfit.OwnerID)
	assert.Len(t, outfit.ItemIDs, 3)
	require.NotNil(t, outfit.Occasion)
	assert.Equal(t, "brunch", *outfit.Occasion)
	require.NotNil(t, outfit.StyleAdvice)
}

func TestHandleOutfitGenerationTaskIdempotent(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake")
	user := test.FakeUser(db)
	test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")

	generation := models.OutfitGeneration{UserAccountID: user.ID, Status: "completed"}
	require.NoError(t, db.Create(&generation).Error)

	task, err := NewOutfitGenerationTask(user.ID, generation.ID)
	require.NoError(t, err)

	err = HandleOutfitGenerationTask(context.Background(), task, db, test.MockStylist{}, nil)
	require.NoError(t, err)

	var outfitCount int64
	db.Model(&models.Outfit{}).Count(&outfitCount)
	assert.Equal(t, int64(0), outfitCount)
}

func TestHandleOutfitGenerationTaskEmptyCloset(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake")
	user := test.FakeUser(db)

	generation := models.OutfitGeneration{UserAccountID: user.ID, Status: "pending"}
	require.NoError(t, db.Create(&generation).Error)

	task, err := NewOutfitGenerationTask(user.ID, generation.ID)
	require.NoError(t, err)

	err = HandleOutfitGenerationTask(context.Background(), task, db, test.MockStylist{}, nil)
	require.NoError(t, err)

	var reloaded models.OutfitGeneration
	require.NoError(t, db.First(&reloaded, generation.ID).Error)
	assert.Equal(t, "failed", reloaded.Status)
	require.NotNil(t, reloaded.GenerationErrorMessage)
	assert.Contains(t, *reloaded.GenerationErrorMessage, "closet is empty")
}

func TestHandleOutfitGenerationTaskBadPickRetries(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake")
	user := test.FakeUser(db)
	test.FakeClothingItem(db, user.ID, "White Tee", "tops", "white")

	generation := models.OutfitGeneration{UserAccountID: user.ID, Status: "pending"}
	require.NoError(t, db.Create(&generation).Error)

	task, err := NewOutfitGenerationTask(user.ID, generation.ID)
	require.NoError(t, err)

	stylist := test.MockStylist{ItemIDs: []int64{99999}}
	err = HandleOutfitGenerationTask(context.Background(), task, db, stylist, nil)
	require.Error(t, err)

	var reloaded models.OutfitGeneration
	require.NoError(t, db.First(&reloaded, generation.ID).Error)
	assert.Equal(t, 1, reloaded.GenerationRetryTimes)
	assert.NotEqual(t, "completed", reloaded.Status)
	require.NotNil(t, reloaded.GenerationErrorMessage)
}
