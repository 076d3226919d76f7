package controllers

import (
	"fmt"
	"net/http"

	"closetapi/models"
	"closetapi/namegen"
	"closetapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CreateOutfitIn struct {
	Name              string  `json:"name" validate:"omitempty,max=100"`
	ItemIDs           []int64 `json:"item_ids" validate:"required,min=1,max=20"`
	Occasion          *string `json:"occasion" validate:"omitempty,max=100"`
	Season            *string `json:"season" validate:"omitempty,max=50"`
	WeatherConditions *string `json:"weather_conditions" validate:"omitempty,max=100"`
	Mood              *string `json:"mood" validate:"omitempty,mood"`
	Description       *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateOutfitIn struct {
	Name              *string `json:"name" validate:"omitempty,max=100"`
	ItemIDs           []int64 `json:"item_ids" validate:"omitempty,min=1,max=20"`
	Occasion          *string `json:"occasion" validate:"omitempty,max=100"`
	Season            *string `json:"season" validate:"omitempty,max=50"`
	WeatherConditions *string `json:"weather_conditions" validate:"omitempty,max=100"`
	Mood              *string `json:"mood" validate:"omitempty,mood"`
	Description       *string `json:"description" validate:"omitempty,max=1000"`
	Favorite          *bool   `json:"favorite"`
}

type OutfitResponse struct {
	ID                uint           `json:"id"`
	Name              string         `json:"name"`
	Items             []ItemResponse `json:"items"`
	Occasion          *string        `json:"occasion"`
	Season            *string        `json:"season"`
	WeatherConditions *string        `json:"weather_conditions"`
	Mood              *string        `json:"mood"`
	Favorite          bool           `json:"favorite"`
	Description       *string        `json:"description"`
	StyleAdvice       *string        `json:"style_advice"`
	Source            string         `json:"source"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
}

type OutfitController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *OutfitController) OutfitRoutes(g *echo.Group) {
	g.POST("", controller.CreateOutfit)
	g.GET("", controller.ListOutfits)
	g.GET("/:outfitId", controller.GetOutfit)
	g.PATCH("/:outfitId", controller.UpdateOutfit)
	g.DELETE("/:outfitId", controller.DeleteOutfit)
}

// resolveOutfitItems loads the outfit's referenced items keeping the stored
// order. Ids that no longer resolve to an owned item are dropped silently,
// deleted wardrobe items must never break an outfit read.
func resolveOutfitItems(db *gorm.DB, ownerID uint, itemIDs pq.Int64Array) []models.ClothingItem {
	if len(itemIDs) == 0 {
		return []models.ClothingItem{}
	}
	var items []models.ClothingItem
	if err := db.Where("id = ANY(?) and owner_id = ?", itemIDs, ownerID).Find(&items).Error; err != nil {
		fmt.Println("Error resolving outfit items", err)
		sentry.CaptureException(err)
		return []models.ClothingItem{}
	}
	byID := make(map[int64]models.ClothingItem, len(items))
	for _, item := range items {
		byID[int64(item.ID)] = item
	}
	resolved := make([]models.ClothingItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, ok := byID[id]; ok {
			resolved = append(resolved, item)
		}
	}
	return resolved
}

func (controller *OutfitController) outfitToResponse(c echo.Context, db *gorm.DB, outfit models.Outfit) OutfitResponse {
	items := resolveOutfitItems(db, outfit.OwnerID, outfit.ItemIDs)
	wardrobe := WardrobeController{AWSService: controller.AWSService, URLCache: controller.URLCache}
	processed := wardrobe.populatePresignedItemImages(c.Request().Context(), items)
	return OutfitResponse{
		ID:                outfit.ID,
		Name:              outfit.Name,
		Items:             processed,
		Occasion:          outfit.Occasion,
		Season:            outfit.Season,
		WeatherConditions: outfit.WeatherConditions,
		Mood:              outfit.Mood,
		Favorite:          outfit.Favorite,
		Description:       outfit.Description,
		StyleAdvice:       outfit.StyleAdvice,
		Source:            outfit.Source,
		CreatedAt:         outfit.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:         outfit.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *OutfitController) CreateOutfit(c echo.Context) error {
	var req CreateOutfitIn
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

	// Every referenced item must exist and belong to the user at creation
	// time. Dangles only appear later, when items get deleted.
	var ownedCount int64
	if err := db.Model(&models.ClothingItem{}).Where("id = ANY(?) and owner_id = ?", pq.Int64Array(req.ItemIDs), user.ID).Count(&ownedCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify items"})
	}
	if ownedCount != int64(len(req.ItemIDs)) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Some items do not exist in your closet"})
	}

	name := req.Name
	if name == "" {
		name = namegen.RandomOutfitName()
	}

	outfit := models.Outfit{
		Name:              name,
		ItemIDs:           pq.Int64Array(req.ItemIDs),
		Occasion:          req.Occasion,
		Season:            req.Season,
		WeatherConditions: req.WeatherConditions,
		Mood:              req.Mood,
		Description:       req.Description,
		Source:            "manual",
		OwnerID:           user.ID,
	}
	if err := db.Create(&outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create outfit"})
	}

	return c.JSON(http.StatusCreated, controller.outfitToResponse(c, db, outfit))
}

func (controller *OutfitController) ListOutfits(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var outfits []models.Outfit
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&outfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfits"})
	}

	responses := make([]OutfitResponse, 0, len(outfits))
	for _, outfit := range outfits {
		responses = append(responses, controller.outfitToResponse(c, db, outfit))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"outfits": responses,
	})
}

func (controller *OutfitController) GetOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var outfit models.Outfit
	r := db.Where("id = ? and owner_id = ?", outfitId, user.ID).Limit(1).Find(&outfit)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	return c.JSON(http.StatusOK, controller.outfitToResponse(c, db, outfit))
}

func (controller *OutfitController) UpdateOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var req UpdateOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var outfit models.Outfit
	r := db.Where("id = ? and owner_id = ?", outfitId, user.ID).Limit(1).Find(&outfit)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	if req.ItemIDs != nil {
		var ownedCount int64
		if err := db.Model(&models.ClothingItem{}).Where("id = ANY(?) and owner_id = ?", pq.Int64Array(req.ItemIDs), user.ID).Count(&ownedCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to verify items"})
		}
		if ownedCount != int64(len(req.ItemIDs)) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Some items do not exist in your closet"})
		}
		outfit.ItemIDs = pq.Int64Array(req.ItemIDs)
	}
	if req.Name != nil {
		outfit.Name = *req.Name
	}
	if req.Occasion != nil {
		outfit.Occasion = req.Occasion
	}
	if req.Season != nil {
		outfit.Season = req.Season
	}
	if req.WeatherConditions != nil {
		outfit.WeatherConditions = req.WeatherConditions
	}
	if req.Mood != nil {
		outfit.Mood = req.Mood
	}
	if req.Description != nil {
		outfit.Description = req.Description
	}
	if req.Favorite != nil {
		outfit.Favorite = *req.Favorite
	}

	if err := db.Save(&outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
	}

	return c.JSON(http.StatusOK, controller.outfitToResponse(c, db, outfit))
}

func (controller *OutfitController) DeleteOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	result := db.Where("id = ? and owner_id = ?", outfitId, user.ID).Delete(&models.Outfit{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}
