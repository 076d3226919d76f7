package models

import "github.com/lib/pq"

type Outfit struct {
	JsonModel
	Name string `json:"name"`
	// item references, not foreign keys: deleting an item must not touch
	// outfits, readers drop ids that no longer resolve
	ItemIDs           pq.Int64Array `gorm:"type:bigint[]" json:"item_ids"`
	Occasion          *string       `json:"occasion"`
	Season            *string       `json:"season"`
	WeatherConditions *string       `json:"weather_conditions"`
	Mood              *string       `json:"mood"`
	Favorite          bool          `gorm:"default:false" json:"favorite"`
	Description       *string       `gorm:"type:text" json:"description"`
	StyleAdvice       *string       `gorm:"type:text" json:"style_advice"`
	Source            string        `json:"source"` // manual, suggested, ai
	Owner             UserAccount   `json:"-"`
	OwnerID           uint          `json:"-"`
}

type OutfitGeneration struct {
	JsonModel
	OutfitID      *uint       `json:"outfit_id"`
	Outfit        *Outfit     `json:"outfit"`
	UserAccountID uint        `json:"-"`
	UserAccount   UserAccount `json:"user_account"`

	Mood              *string `json:"mood"`
	Occasion          *string `json:"occasion"`
	WeatherConditions *string `json:"weather_conditions"`

	Status                 string   `json:"status"`   // pending, completed, failed
	Duration               *float64 `json:"duration"` // in seconds
	LLMModel               *string  `json:"llm_model"`
	LLMInputTokenCount     *int32   `json:"llm_input_token_count"`
	LLMOutputTokenCount    *int32   `json:"llm_output_token_count"`
	LLMTotalTokenCount     *int32   `json:"llm_total_token_count"`
	LLMThoughtsTokenCount  *int32   `json:"llm_thoughts_token_count"`
	LLMThoughts            *string  `gorm:"type:text" json:"llm_thoughts"`
	GenerationRetryTimes   int      `json:"generation_retry_times"`
	GenerationErrorMessage *string  `json:"generation_error_message"`
}
