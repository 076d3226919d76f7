package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Mood string

const (
	MoodProfessional Mood = "professional"
	MoodRomantic     Mood = "romantic"
	MoodCasual       Mood = "casual"
	MoodEnergetic    Mood = "energetic"
	MoodRelaxed      Mood = "relaxed"
	MoodConfident    Mood = "confident"
)

func (l *Mood) Scan(value interface{}) error {
	*l = Mood(value.(string))
	return nil
}

func (l Mood) Value() (string, error) {
	return string(l), nil
}

func ValidateMood(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	matched, _ := regexp.MatchString("^professional|romantic|casual|energetic|relaxed|confident$", value)
	return matched
}

func ValidateMoodRaw(value string) bool {

	matched, _ := regexp.MatchString("^professional|romantic|casual|energetic|relaxed|confident$", value)
	return matched
}
