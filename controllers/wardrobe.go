package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"closetapi/models"
	"closetapi/services"
	"closetapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Free accounts can keep this many items before subscribing.
const freeItemLimit = 20

type CreateItemIn struct {
	Name        string   `json:"name" validate:"omitempty,max=100"`
	FileName    *string  `json:"file_name" validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    string   `json:"category" validate:"required,category"`
	Subcategory *string  `json:"subcategory" validate:"omitempty,max=100"`
	Color       string   `json:"color" validate:"omitempty,max=50"`
	Season      string   `json:"season" validate:"omitempty,max=50"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type UpdateItemIn struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Subcategory *string  `json:"subcategory" validate:"omitempty,max=100"`
	Color       *string  `json:"color" validate:"omitempty,max=50"`
	Season      *string  `json:"season" validate:"omitempty,max=50"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Favorite    *bool    `json:"favorite"`
}

type ItemResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Category         string   `json:"category"`
	Subcategory      *string  `json:"subcategory"`
	Color            string   `json:"color"`
	Season           string   `json:"season"`
	Tags             []string `json:"tags"`
	Favorite         bool     `json:"favorite"`
	ImageStatus      string   `json:"image_status"`
	ProcessingStatus string   `json:"processing_status"`
	Uri              *string  `json:"uri,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type ItemCreatedResponse struct {
	Item          ItemResponse `json:"item"`
	FileUploadUrl string       `json:"file_upload_url"`
}

type ItemsListResponse struct {
	Tops        []ItemResponse `json:"tops"`
	Bottoms     []ItemResponse `json:"bottoms"`
	Dresses     []ItemResponse `json:"dresses"`
	Outerwear   []ItemResponse `json:"outerwear"`
	Shoes       []ItemResponse `json:"shoes"`
	Accessories []ItemResponse `json:"accessories"`
	Makeup      []ItemResponse `json:"makeup"`
}

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	URLCache    services.URLCacheServiceProvider
	FirebaseApp *firebase.App
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("", controller.CreateItem)
	g.GET("", controller.ListItems)
	g.GET("/:itemId", controller.GetItem)
	g.PATCH("/:itemId", controller.UpdateItem)
	g.DELETE("/:itemId", controller.DeleteItem)
	g.POST("/:itemId/uploaded", controller.SetAsUploaded)
}

func itemToResponse(item models.ClothingItem, uri *string) ItemResponse {
	return ItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Category:         string(item.Category),
		Subcategory:      item.Subcategory,
		Color:            item.Color,
		Season:           item.Season,
		Tags:             item.Tags,
		Favorite:         item.Favorite,
		ImageStatus:      item.ImageStatus,
		ProcessingStatus: item.ProcessingStatus,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateItemIn
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
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if string(user.Subscription) == "free" {
		var totalItemCount int64
		if err := db.Model(&models.ClothingItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get closet data"})
		}
		fmt.Printf("[User %v] Free plan, item count: %v", user.ID, totalItemCount)
		if totalItemCount >= freeItemLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of total %v items, please subscribe", freeItemLimit)})
		}
	}

	item := models.ClothingItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.ScanCategory(req.Category),
		Subcategory: req.Subcategory,
		Color:       req.Color,
		Season:      req.Season,
		Tags:        pq.StringArray(req.Tags),
		OwnerID:     user.ID,
		ImageStatus: "draft",
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("items/%v/%s", user.ID, *req.FileName)

	uploadUrl, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	item.ImageURL = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating item with attachment",
		})
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	response := ItemCreatedResponse{
		Item:          itemToResponse(item, nil),
		FileUploadUrl: uploadUrl,
	}

	return c.JSON(http.StatusCreated, response)
}

// populatePresignedItemImages enriches raw items with presigned URLs concurrently.
// Includes a failsafe for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.ClothingItem) []ItemResponse {
	if len(items) == 0 {
		return []ItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]ItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, clothingItem := range items {
		wg.Add(1)
		go func(index int, item models.ClothingItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)

				if err == nil {
					imageUrl = url
				} else {
					// The cache system itself failed, not just a miss.
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl stays empty, the request still succeeds.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = itemToResponse(item, &imageUrl)
		}(i, clothingItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
	}
	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := ItemsListResponse{
		Tops:        []ItemResponse{},
		Bottoms:     []ItemResponse{},
		Dresses:     []ItemResponse{},
		Outerwear:   []ItemResponse{},
		Shoes:       []ItemResponse{},
		Accessories: []ItemResponse{},
		Makeup:      []ItemResponse{},
	}

	for _, resp := range processedResponses {
		switch resp.Category {
		case "tops":
			response.Tops = append(response.Tops, resp)
		case "bottoms":
			response.Bottoms = append(response.Bottoms, resp)
		case "dresses":
			response.Dresses = append(response.Dresses, resp)
		case "outerwear":
			response.Outerwear = append(response.Outerwear, resp)
		case "shoes":
			response.Shoes = append(response.Shoes, resp)
		case "accessories":
			response.Accessories = append(response.Accessories, resp)
		case "makeup":
			response.Makeup = append(response.Makeup, resp)
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) GetItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.ClothingItem
	r := db.Where("id = ? and owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	processed := controller.populatePresignedItemImages(c.Request().Context(), []models.ClothingItem{item})
	return c.JSON(http.StatusOK, processed[0])
}

func (controller *WardrobeController) UpdateItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var req UpdateItemIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var item models.ClothingItem
	r := db.Where("id = ? and owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Category != nil {
		item.Category = models.ScanCategory(*req.Category)
	}
	if req.Subcategory != nil {
		item.Subcategory = req.Subcategory
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Season != nil {
		item.Season = *req.Season
	}
	if req.Tags != nil {
		item.Tags = pq.StringArray(req.Tags)
	}
	if req.Favorite != nil {
		item.Favorite = *req.Favorite
	}

	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item, please try again"})
	}

	processed := controller.populatePresignedItemImages(c.Request().Context(), []models.ClothingItem{item})
	return c.JSON(http.StatusOK, processed[0])
}

// DeleteItem removes the item only. Outfits keep their stored id lists,
// readers drop ids that no longer resolve.
func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	result := db.Where("id = ? and owner_id = ?", itemId, user.ID).Delete(&models.ClothingItem{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}
	fmt.Println("Item deleted ", itemId, " user ", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}

func (controller *WardrobeController) SetAsUploaded(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.ClothingItem
	r := db.Where("id = ? and owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if r.Error != nil {
		return echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	item.ImageStatus = "uploaded"
	item.ProcessingStatus = "pending"
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item status, please try again"})
	}

	task, err := tasks.NewItemPhotoProcessingTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item photo, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item photo, please try again"})
	}
	fmt.Println("[Queue] Process item photo task submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message":           "uploaded",
		"processing_status": item.ProcessingStatus,
	})
}
