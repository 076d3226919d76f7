package telegram

import (
	"fmt"
	"log"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"closetapi/models"
	"closetapi/services"
)

var usernames string = os.Getenv("TG_ADMINS") //separated by comma from env

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

func isAdmin(username string) bool {
	for _, admin := range strings.Split(usernames, ",") {
		if admin != "" && admin == username {
			return true
		}
	}
	return false
}

func statsMessage(db *gorm.DB) string {
	var users, items, outfits, generations int64
	db.Model(&models.UserAccount{}).Count(&users)
	db.Model(&models.ClothingItem{}).Count(&items)
	db.Model(&models.Outfit{}).Count(&outfits)
	db.Model(&models.OutfitGeneration{}).Count(&generations)

	builder := strings.Builder{}
	builder.WriteString("```\n")
	builder.WriteString(fmt.Sprintf("👤 Users:       %v\n", users))
	builder.WriteString(fmt.Sprintf("👗 Items:       %v\n", items))
	builder.WriteString(fmt.Sprintf("✨ Outfits:     %v\n", outfits))
	builder.WriteString(fmt.Sprintf("🤖 Generations: %v\n", generations))
	builder.WriteString("```\n/stats")
	return builder.String()
}

// lookMessage assembles a quick outfit from the user's closet, same picker
// the daily suggestion push uses.
func lookMessage(db *gorm.DB, email string) string {
	var user models.UserAccount
	r := db.Where("email = ?", email).Limit(1).Find(&user)
	if r.Error != nil || r.RowsAffected == 0 {
		return fmt.Sprintf("No user found for %s", email)
	}
	var wardrobe []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Find(&wardrobe).Error; err != nil {
		return "Error fetching closet"
	}
	if len(wardrobe) == 0 {
		return fmt.Sprintf("%s has an empty closet", email)
	}

	recommendation := services.RecommendForWeather(services.ClassifyWeather(nil))
	items := services.NewDefaultOutfitAssembler().Assemble(wardrobe, recommendation.ClothingTypes, "")

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Look for %s (%v items in closet):\n", EscapeMessage(user.Name), len(wardrobe)))
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("- %s (%s, %s)\n", EscapeMessage(item.Name), item.Category, item.Color))
	}
	return builder.String()
}

// RunOpsBot serves admin commands over Telegram, blocking on the update loop.
func RunOpsBot(db *gorm.DB) {

	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		println("Error tg bot init")
		log.Panic(err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)
		if !isAdmin(update.Message.From.UserName) {
			continue
		}

		if update.Message.Command() == "start" {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Cher's Closet ops bot. Commands:\n/stats\n/look <email>")
			bot.Send(msg)
			continue
		} else if update.Message.Command() == "stats" {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, statsMessage(db))
			msg.ParseMode = "markdown"
			bot.Send(msg)
			continue
		} else if update.Message.Command() == "look" {
			email := strings.TrimSpace(update.Message.CommandArguments())
			if email == "" {
				bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Usage: /look <email>"))
				continue
			}
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, lookMessage(db, email))
			bot.Send(msg)
			continue
		}
	}

}
