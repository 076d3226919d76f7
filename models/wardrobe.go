package models

import "github.com/lib/pq"

type ClothingItem struct {
	JsonModel
	Name        string         `json:"name"`
	Description *string        `gorm:"type:text" json:"description"`
	Category    Category       `json:"category"` // tops, bottoms, dresses, outerwear, shoes, accessories, makeup
	Subcategory *string        `json:"subcategory"`
	Color       string         `json:"color"`
	Season      string         `json:"season"` // spring, summer, fall, winter, all
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Favorite    bool           `gorm:"default:false" json:"favorite"`
	Owner       UserAccount    `json:"-"`
	OwnerID     uint           `json:"-"`

	ImageStatus         string  `json:"image_status"`      // draft, uploaded
	ProcessingStatus    string  `json:"processing_status"` // idle, pending, processing, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
	// file **key** in storage, not a public url
	ImageURL *string `json:"image_url"`
}
