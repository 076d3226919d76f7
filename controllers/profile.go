package controllers

import (
	"closetapi/models"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ProfileController struct {
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		var totalItems int64
		if err := db.Model(&models.ClothingItem{}).Where("owner_id = ?", user.ID).Count(&totalItems).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Something happened",
			})
		}
		var totalOutfits int64
		if err := db.Model(&models.Outfit{}).Where("owner_id = ?", user.ID).Count(&totalOutfits).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Something happened",
			})
		}

		return c.JSON(http.StatusOK, models.UserMeInfoOut{
			Id:                   UIntToStr(user.ID),
			Name:                 user.Name,
			Email:                user.Email,
			Status:               user.Status,
			AvatarURL:            user.AvatarURL,
			City:                 user.City,
			Subscription:         user.Subscription,
			ReceiveNotifications: user.ReceiveNotifications,
			TotalItems:           totalItems,
			TotalOutfits:         totalOutfits,
		})
	})
}
