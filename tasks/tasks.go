package tasks

import (
	"closetapi/models"
	"closetapi/namegen"
	"closetapi/services"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type OutfitGenerationPayload struct {
	UserID       uint `json:"user_id"`
	GenerationID uint `json:"generation_id"`
}
type ItemPhotoPayload struct {
	ItemID uint `json:"item_id"`
}

func NewOutfitGenerationTask(userID uint, generationID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitGenerationPayload{UserID: userID, GenerationID: generationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:outfit", payload), nil

}

func NewItemPhotoProcessingTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ItemPhotoPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:process_item_photo", payload), nil

}

func NewDailySuggestionTask() (*asynq.Task, error) {
	return asynq.NewTask("suggest:daily", nil), nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cleanAIResponseText(text string) string {
	cleanContent := strings.ReplaceAll(text, "```json", "")
	cleanContent = strings.TrimSuffix(strings.TrimSpace(cleanContent), "```")
	return cleanContent
}

// wardrobeItemPrompt is what the stylist model sees per item, keyed by the
// same ids the response must reference back.
type wardrobeItemPrompt struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Season   string   `json:"season"`
	Tags     []string `json:"tags"`
}

func wardrobeToPromptJSON(items []models.ClothingItem) (string, error) {
	promptItems := make([]wardrobeItemPrompt, 0, len(items))
	for _, item := range items {
		promptItems = append(promptItems, wardrobeItemPrompt{
			ID:       item.ID,
			Name:     item.Name,
			Category: string(item.Category),
			Color:    item.Color,
			Season:   item.Season,
			Tags:     item.Tags,
		})
	}
	payload, err := json.Marshal(promptItems)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// validateStylistItemIDs checks that every id the model picked exists in the
// wardrobe and that the pick reads like one outfit: at most one of each of
// tops, bottoms, dresses, outerwear and shoes, and a dress never combined
// with separate tops or bottoms.
func validateStylistItemIDs(itemIDs []int64, wardrobe []models.ClothingItem) error {
	byID := make(map[int64]models.ClothingItem, len(wardrobe))
	for _, item := range wardrobe {
		byID[int64(item.ID)] = item
	}
	perCategory := map[string]int{}
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("item %d is not in the wardrobe", id)
		}
		perCategory[string(item.Category)]++
	}
	for _, category := range []string{"tops", "bottoms", "dresses", "outerwear", "shoes"} {
		if perCategory[category] > 1 {
			return fmt.Errorf("more than one %s item picked", category)
		}
	}
	if perCategory["dresses"] > 0 && (perCategory["tops"] > 0 || perCategory["bottoms"] > 0) {
		return fmt.Errorf("dress combined with separate tops or bottoms")
	}
	return nil
}

// HandleOutfitGenerationTask asks the stylist model for an outfit built from
// the user's wardrobe and materializes the answer as a saved Outfit.
func HandleOutfitGenerationTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.OutfitStylist, fbApp *firebase.App) error {
	googleKey := os.Getenv("GOOGLE_API_KEY")
	if googleKey == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload OutfitGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Generation: %v] Start Processing\n", payload.GenerationID)
	var generation models.OutfitGeneration
	res := db.Joins("UserAccount").First(&generation, payload.GenerationID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving generation for processing %v", payload.GenerationID))
		return res.Error
	}
	if generation.Status == "completed" {
		fmt.Printf("[Generation: %v] Already completed\n", payload.GenerationID)
		return nil
	}

	var wardrobe []models.ClothingItem
	if err := db.Where("owner_id = ?", generation.UserAccountID).Find(&wardrobe).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Error on fetching wardrobe: %v", payload.GenerationID, err))
		return err
	}
	if len(wardrobe) == 0 {
		saveGenerationFail(db, generation, "Your closet is empty, add some items first", false)
		return nil
	}

	wardrobeJSON, err := wardrobeToPromptJSON(wardrobe)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Error on building wardrobe prompt: %v", payload.GenerationID, err))
		saveGenerationFail(db, generation, "Failed to prepare your wardrobe for styling, please try again", true)
		return err
	}

	weather := strValue(generation.WeatherConditions)
	mood := strValue(generation.Mood)
	occasion := strValue(generation.Occasion)

	model := services.Flash25
	modelString := model.String()
	fmt.Printf("[Generation: %v] Model: %s, Weather: %q, Mood: %q, Occasion: %q, Wardrobe: %d items\n",
		payload.GenerationID, modelString, weather, mood, occasion, len(wardrobe))

	start := time.Now()
	llmResponse, err := stylist.GenerateOutfit(wardrobeJSON, weather, mood, occasion, model)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveGenerationFail(db, generation, "Sorry, we could not style this request", false)
			sentry.CaptureException(fmt.Errorf("[Generation: %v] Content violation on generating outfit: %v", payload.GenerationID, err))
			return nil
		}
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Error on generating outfit: %v", payload.GenerationID, err))
		saveGenerationFail(db, generation, "Failed to generate an outfit, please try again", true)
		return err
	}
	if llmResponse == nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Response is nil but no error provided on generating outfit", payload.GenerationID))
		saveGenerationFail(db, generation, "Failed to generate an outfit, please try again", true)
		return fmt.Errorf("[Generation: %v] Response is nil but no error provided on generating outfit", payload.GenerationID)
	}
	duration := time.Since(start).Seconds()

	cleanContent := cleanAIResponseText(llmResponse.Response)
	fmt.Printf("[Generation: %v] LLM Processed: %q, IT: %d, OT: %d, TT: %d, TOT: %d, Thoughts: %s..\n",
		payload.GenerationID, cleanContent, llmResponse.InputTokenCount, llmResponse.OutputTokenCount,
		llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount, llmResponse.Thoughts)
	var parsedOutfit services.StylistOutfitResponse
	if err := json.Unmarshal([]byte(cleanContent), &parsedOutfit); err != nil {
		fmt.Printf("[Generation: %v] Error on parsing Gemini %s AI json %s\n", payload.GenerationID, modelString, llmResponse.Response)
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Error on parsing Gemini %s AI json %s", payload.GenerationID, modelString, llmResponse.Response))
		saveGenerationFail(db, generation, "Failed to read the stylist answer, please try again", true)
		return err
	}
	if len(parsedOutfit.ItemIDs) == 0 {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Stylist returned no items: %s", payload.GenerationID, cleanContent))
		saveGenerationFail(db, generation, "The stylist picked no items, please try again", true)
		return fmt.Errorf("[Generation: %v] Stylist returned no items", payload.GenerationID)
	}
	if err := validateStylistItemIDs(parsedOutfit.ItemIDs, wardrobe); err != nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Invalid stylist pick: %v, json %s", payload.GenerationID, err, cleanContent))
		saveGenerationFail(db, generation, "The stylist picked an impossible outfit, please try again", true)
		return err
	}

	outfitName := strings.TrimSpace(parsedOutfit.Name)
	if outfitName == "" {
		outfitName = namegen.RandomOutfitName()
	}
	outfit := models.Outfit{
		Name:              outfitName,
		ItemIDs:           pq.Int64Array(parsedOutfit.ItemIDs),
		Occasion:          generation.Occasion,
		WeatherConditions: generation.WeatherConditions,
		Mood:              generation.Mood,
		Description:       services.StrPointer(parsedOutfit.Description),
		StyleAdvice:       services.StrPointer(parsedOutfit.StyleAdvice),
		Source:            "ai",
		OwnerID:           generation.UserAccountID,
	}
	if parsedOutfit.Occasion != "" {
		outfit.Occasion = services.StrPointer(parsedOutfit.Occasion)
	}
	if err := db.Create(&outfit).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Generation: %v] Error on saving outfit: %v", payload.GenerationID, err))
		saveGenerationFail(db, generation, "Failed to save the generated outfit, please try again", true)
		return err
	}

	generation.OutfitID = &outfit.ID
	generation.Status = "completed"
	generation.Duration = &duration
	generation.LLMModel = &modelString
	generation.LLMInputTokenCount = &llmResponse.InputTokenCount
	generation.LLMOutputTokenCount = &llmResponse.OutputTokenCount
	generation.LLMTotalTokenCount = &llmResponse.TotalTokenCount
	generation.LLMThoughtsTokenCount = &llmResponse.ThoughtsTokenCount
	generation.LLMThoughts = &llmResponse.Thoughts
	generation.GenerationErrorMessage = nil
	if err := db.Save(&generation).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving generation %v", payload.GenerationID))
		return err
	}
	fmt.Printf("[Generation: %v] Outfit generated succesfully as %v..\n", payload.GenerationID, outfit.ID)

	if generation.UserAccount.ReceiveNotifications {
		fmt.Printf("[Generation: %v] Sending notification to user %v\n", payload.GenerationID, generation.UserAccountID)
		services.SendNotification(fbApp, db, generation.UserAccountID,
			"Your outfit is ready ✨",
			fmt.Sprintf("%s is waiting in your closet", outfit.Name),
			map[string]string{
				"outfit_id":     fmt.Sprintf("%d", outfit.ID),
				"generation_id": fmt.Sprintf("%d", generation.ID),
				"type":          "outfit_generated",
			})
	}
	return nil
}

func saveGenerationFail(db *gorm.DB, generation models.OutfitGeneration, message string, shouldRetry bool) error {
	generation.GenerationRetryTimes = generation.GenerationRetryTimes + 1
	generation.GenerationErrorMessage = services.StrPointer(message)
	if !shouldRetry || generation.GenerationRetryTimes >= 3 {

		generation.Status = "failed"
	}
	tx := db.Save(&generation)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Generation %v] Error on saving generation for failed status", generation.ID))
		return tx.Error
	}
	return nil
}

// HandleItemPhotoProcessingTask downsizes an uploaded item photo and lifts it
// onto a white background, then replaces the stored file in place.
func HandleItemPhotoProcessingTask(ctx context.Context, t *asynq.Task, db *gorm.DB, awsService services.AWSServiceProvider) error {
	var payload ItemPhotoPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Photo Processing\n", payload.ItemID)
	var item models.ClothingItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving item for photo processing %v", payload.ItemID))
		return res.Error
	}
	if item.ImageURL == nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Image URL is nil", payload.ItemID))
		saveItemProcessingFail(db, item, "No photo found for this item, please upload it again", false)
		return nil
	}
	if item.ProcessingStatus == "completed" {
		fmt.Printf("[Item: %v] Photo already processed\n", payload.ItemID)
		return nil
	}

	item.ProcessingStatus = "processing"
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on saving processing status: %v", payload.ItemID, err))
		return err
	}

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	fmt.Printf("[Item: %v] Request presigned download url..\n", payload.ItemID)
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, *item.ImageURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting presigned URL for file %s: %v", payload.ItemID, *item.ImageURL, err))
		saveItemProcessingFail(db, item, "Failed to read the item photo, please try again", true)
		return err
	}
	fmt.Printf("[Item: %v] Downloading... %s\n", payload.ItemID, fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", payload.ItemID, *item.ImageURL, err))
		saveItemProcessingFail(db, item, "Failed to download the item photo, please try again", true)
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	normalized, err := services.NormalizeItemPhoto(fileBytes)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on normalizing photo: %v", payload.ItemID, err))
		saveItemProcessingFail(db, item, "This photo could not be processed, please upload a different one", true)
		return err
	}
	processed, err := services.WhitenBackgroundSmooth(normalized, 240, 4.0)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on whitening background: %v", payload.ItemID, err))
		saveItemProcessingFail(db, item, "This photo could not be processed, please upload a different one", true)
		return err
	}

	uploadUrl, presignErr := awsService.PresignLink(context.Background(), bucketName, *item.ImageURL)
	if presignErr != nil {
		fmt.Printf("[Item: %v] Unable to create presign link for %s: %v\n", payload.ItemID, *item.ImageURL, presignErr)
		sentry.CaptureException(presignErr)
		saveItemProcessingFail(db, item, "Failed to save the processed photo, please try again", true)
		return presignErr
	}
	respBody, statusCode, err := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, processed)
	fmt.Printf("[Item: %v] R2 Upload file size %v, url %s, response body: %s, status code: %d\n",
		payload.ItemID, len(processed), uploadUrl, respBody, statusCode)
	if err != nil || statusCode != 200 {
		fmt.Printf("[Item: %v] Error on uploading processed photo %s: %v\n", payload.ItemID, *item.ImageURL, err)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on uploading processed photo %s: %v", payload.ItemID, *item.ImageURL, err))
		saveItemProcessingFail(db, item, "Failed to save the processed photo, please try again", true)
		return err
	}

	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving item %v", payload.ItemID))
		return err
	}
	fmt.Printf("[Item: %v] Photo processing finished succesfully..\n", payload.ItemID)
	return nil
}

func saveItemProcessingFail(db *gorm.DB, item models.ClothingItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {

		item.ProcessingStatus = "failed"
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// ScheduledDailySuggestionTask pushes a rule based outfit idea to every user
// who opted into notifications.
func ScheduledDailySuggestionTask(ctx context.Context, t *asynq.Task, db *gorm.DB, weatherService services.WeatherProvider, fbApp *firebase.App) error {

	fmt.Printf("[Daily Suggestion] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? and receive_notifications = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Daily Suggestion] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Daily Suggestion] Found %d users to send notifications\n", len(users))

	for _, user := range users {
		err := sendDailySuggestionToUser(ctx, db, fbApp, weatherService, user)
		if err != nil {
			fmt.Printf("[Daily Suggestion] Failed to send to user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Daily Suggestion] Failed to send to user %d: %v", user.ID, err))
			continue
		}
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}

func sendDailySuggestionToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, weatherService services.WeatherProvider, user models.UserAccount) error {
	var wardrobe []models.ClothingItem
	result := db.Where("owner_id = ?", user.ID).Find(&wardrobe)
	if result.Error != nil {
		return fmt.Errorf("error fetching user wardrobe: %v", result.Error)
	}
	if len(wardrobe) == 0 {
		fmt.Printf("[Daily Suggestion] Empty closet for user %d, skipping\n", user.ID)
		return nil
	}

	var observation *services.WeatherObservation
	if user.City != nil && *user.City != "" {
		weatherResult, err := weatherService.CurrentWeather(ctx, *user.City)
		if err != nil {
			// suggestion still goes out, classifier falls back to mild
			fmt.Printf("[Daily Suggestion] Weather lookup failed for user %d city %s: %v\n", user.ID, *user.City, err)
		} else {
			observation = weatherResult
		}
	}

	weatherCategory := services.ClassifyWeather(observation)
	recommendation := services.RecommendForWeather(weatherCategory)
	items := services.NewDefaultOutfitAssembler().Assemble(wardrobe, recommendation.ClothingTypes, "")
	if len(items) == 0 {
		fmt.Printf("[Daily Suggestion] No outfit assembled for user %d\n", user.ID)
		return nil
	}

	var itemNames []string
	for _, item := range items {
		itemNames = append(itemNames, item.Name)
	}
	title := "Today's look 👗"
	message := fmt.Sprintf("%s Try: %s", recommendation.Recommendation, strings.Join(itemNames, ", "))
	if len(message) > 150 {
		message = message[:147] + "..."
	}

	fmt.Println("[Daily Suggestion] Sending notification to user", user.ID, "weather", weatherCategory)
	services.SendNotification(fbApp, db, user.ID, title, message, map[string]string{"type": "daily_suggestion"})

	return nil
}
