package models

type UserMeInfoOut struct {
	Id                   string       `json:"id"`
	Name                 string       `json:"name"`
	Email                string       `json:"email"`
	Status               string       `json:"-"`
	AvatarURL            string       `json:"avatar_url"`
	City                 *string      `json:"city"`
	Subscription         Subscription `json:"subscription"`
	ReceiveNotifications bool         `json:"receive_notifications"`
	TotalItems           int64        `json:"total_items"`
	TotalOutfits         int64        `json:"total_outfits"`
}

type GoogleSignInOut struct {
	Id           uint         `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	New          bool         `json:"new"`
	Avatar       string       `json:"avatar"`
	Subscription Subscription `json:"subscription"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type ItemUrlRequestIn struct {
	ItemId   uint   `json:"item_id"`
	FileName string `json:"file_name"`
}

type ItemFilesUploadRequestIn struct {
	Items []ItemUrlRequestIn `json:"items"`
}

type ItemFileUploadRequestOut struct {
	ItemId    uint   `json:"item_id"`
	FileName  string `json:"file_name"`
	UploadUrl string `json:"upload_url"`
}

type ItemFilesUploadRequestOut struct {
	Items []ItemFileUploadRequestOut `json:"items"`
}
