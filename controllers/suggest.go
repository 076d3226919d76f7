package controllers

import (
	"fmt"
	"net/http"
	"time"

	"closetapi/models"
	"closetapi/services"
	"closetapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Free accounts can run this many AI generations in total.
const freeGenerationLimit = 2

type SuggestionResponse struct {
	Items           []ItemResponse `json:"items"`
	WeatherCategory string         `json:"weather_category"`
	Recommendation  string         `json:"recommendation"`
	Mood            string         `json:"mood,omitempty"`
	City            string         `json:"city,omitempty"`
	Temperature     *float64       `json:"temperature,omitempty"`
	Condition       string         `json:"condition,omitempty"`
}

type GenerateOutfitIn struct {
	Mood     *string `json:"mood" validate:"omitempty,mood"`
	Occasion *string `json:"occasion" validate:"omitempty,max=100"`
}

type GenerationStatusResponse struct {
	GenerationID uint            `json:"generation_id"`
	Status       string          `json:"status"`
	Outfit       *OutfitResponse `json:"outfit,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

type SuggestController struct {
	Weather    services.WeatherProvider
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Assembler  *services.OutfitAssembler
}

func (controller *SuggestController) SuggestRoutes(g *echo.Group) {
	g.GET("", controller.SuggestOutfit)
	g.POST("/ai", controller.GenerateAIOutfit)
	g.GET("/ai/:generationId", controller.GetGeneration)
}

// SuggestOutfit builds a rule based outfit for current conditions. Weather
// lookup failures degrade to mild conditions instead of failing the request.
func (controller *SuggestController) SuggestOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	mood := c.QueryParam("mood")
	if mood != "" && !models.ValidateMoodRaw(mood) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown mood"})
	}

	city := c.QueryParam("city")
	if city == "" && user.City != nil {
		city = *user.City
	}

	var observation *services.WeatherObservation
	if city != "" {
		obs, err := controller.Weather.CurrentWeather(c.Request().Context(), city)
		if err != nil {
			fmt.Println("Weather lookup failed for city ", city, err)
		} else {
			observation = obs
		}
	}

	var wardrobe []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Find(&wardrobe).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
	}

	weatherCategory := services.ClassifyWeather(observation)
	recommendation := services.RecommendForWeather(weatherCategory)

	assembler := controller.Assembler
	if assembler == nil {
		assembler = services.NewDefaultOutfitAssembler()
	}
	picked := assembler.Assemble(wardrobe, recommendation.ClothingTypes, mood)

	wardrobeController := WardrobeController{AWSService: controller.AWSService, URLCache: controller.URLCache}
	processed := wardrobeController.populatePresignedItemImages(c.Request().Context(), picked)

	response := SuggestionResponse{
		Items:           processed,
		WeatherCategory: string(weatherCategory),
		Recommendation:  recommendation.Recommendation,
		Mood:            mood,
		City:            city,
	}
	if observation != nil {
		response.Temperature = Float64Pointer(observation.Temperature)
		response.Condition = observation.Condition
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *SuggestController) GenerateAIOutfit(c echo.Context) error {
	var req GenerateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	var itemCount int64
	if err := db.Model(&models.ClothingItem{}).Where("owner_id = ?", user.ID).Count(&itemCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get closet data"})
	}
	if itemCount == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Your closet is empty, add some items first"})
	}

	if string(user.Subscription) == "free" {
		var totalGenerationCount int64
		if err := db.Model(&models.OutfitGeneration{}).Where("user_account_id = ?", user.ID).Count(&totalGenerationCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get generation data"})
		}
		fmt.Printf("[User %v] Free plan, generation count: %v", user.ID, totalGenerationCount)
		if totalGenerationCount >= freeGenerationLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of total %v generations, please subscribe", freeGenerationLimit)})
		}
	}

	if user.EnforcedDailyGenerationLimit != nil {
		var dailyGenerationCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.OutfitGeneration{}).Where("user_account_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailyGenerationCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get generation data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, generation count: %v", user.ID, dailyGenerationCount)
		if dailyGenerationCount >= int64(*user.EnforcedDailyGenerationLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily generations. Please wait for the next day.", dailyGenerationCount)})
		}
	}

	var weatherConditions *string
	if user.City != nil && *user.City != "" {
		obs, err := controller.Weather.CurrentWeather(c.Request().Context(), *user.City)
		if err != nil {
			fmt.Println("Weather lookup failed for city ", *user.City, err)
		} else {
			weatherConditions = StrPointer(fmt.Sprintf("%s, %.1f C", obs.Condition, obs.Temperature))
		}
	}

	generation := models.OutfitGeneration{
		UserAccountID:     user.ID,
		Mood:              req.Mood,
		Occasion:          req.Occasion,
		WeatherConditions: weatherConditions,
		Status:            "pending",
	}
	if err := db.Create(&generation).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start generation, please try again"})
	}

	task, err := tasks.NewOutfitGenerationTask(user.ID, generation.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start generation, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start generation, please try again"})
	}
	fmt.Println("[Queue] Outfit generation task submitted, Generation ID: ", generation.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusCreated, GenerationStatusResponse{
		GenerationID: generation.ID,
		Status:       generation.Status,
	})
}

func (controller *SuggestController) GetGeneration(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var generationId uint
	if err := echo.PathParamsBinder(c).Uint("generationId", &generationId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var generation models.OutfitGeneration
	r := db.Where("id = ? and user_account_id = ?", generationId, user.ID).Limit(1).Find(&generation)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	response := GenerationStatusResponse{
		GenerationID: generation.ID,
		Status:       generation.Status,
		ErrorMessage: generation.GenerationErrorMessage,
	}
	if generation.OutfitID != nil {
		var outfit models.Outfit
		r := db.Where("id = ?", *generation.OutfitID).Limit(1).Find(&outfit)
		if r.Error == nil && r.RowsAffected > 0 {
			outfitController := OutfitController{AWSService: controller.AWSService, URLCache: controller.URLCache}
			out := outfitController.outfitToResponse(c, db, outfit)
			response.Outfit = &out
		}
	}
	return c.JSON(http.StatusOK, response)
}
