package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryDresses     Category = "dresses"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryMakeup      Category = "makeup"
)

func (l *Category) Scan(value interface{}) error {
	*l = Category(value.(string))
	return nil
}

func (l Category) Value() (string, error) {
	return string(l), nil
}

func ScanCategory(value string) Category {
	return Category(value)
}

func ValidateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	matched, _ := regexp.MatchString("^tops|bottoms|dresses|outerwear|shoes|accessories|makeup$", value)
	return matched
}

func ValidateCategoryRaw(value string) bool {

	matched, _ := regexp.MatchString("^tops|bottoms|dresses|outerwear|shoes|accessories|makeup$", value)
	return matched
}
