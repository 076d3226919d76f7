package controllers

import (
	"closetapi/models"
	"closetapi/services"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	weatherService services.WeatherProvider,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
) *echo.Echo {

	fmt.Println(firebaseApp, "Firebase app")
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("mood", models.ValidateMood)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	authGroup := e.Group("auth")

	controller := AuthController{Google: googleService, FirebaseApp: firebaseApp, AWSService: awsService}
	controller.ProfileRoutes(authGroup)

	closetGroup := e.Group("closet", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))))
	closetGroup.Use(UserMiddleware)

	wardrobeController := WardrobeController{AWSService: awsService, URLCache: urlCache, FirebaseApp: firebaseApp}
	itemsGroup := closetGroup.Group("/items")
	wardrobeController.WardrobeRoutes(itemsGroup)

	outfitController := OutfitController{AWSService: awsService, URLCache: urlCache}
	outfitsGroup := closetGroup.Group("/outfits")
	outfitController.OutfitRoutes(outfitsGroup)

	suggestController := SuggestController{Weather: weatherService, AWSService: awsService, URLCache: urlCache}
	suggestGroup := closetGroup.Group("/suggestions")
	suggestController.SuggestRoutes(suggestGroup)

	profileController := ProfileController{}
	profileGroup := closetGroup.Group("/profile")
	profileController.ProfileRoutes(profileGroup)

	webhooksController := WebhooksController{Google: googleService, FirebaseApp: firebaseApp}
	webhookGroup := e.Group("/webhooks")
	webhooksController.SetupRoutes(webhookGroup)

	return e
}
