package models

const (
	BannerTypeInfo    BannerType = "INFO"
	BannerTypeWarning BannerType = "WARNING"
	BannerTypeDanger  BannerType = "DANGER"
)

type BannerType string

type Banner struct {
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle"`
	Type      BannerType `json:"type"`
	CreatedAt string     `json:"created_at"`
	// Duration in seconds, 0 means permanent.
	Duration int `json:"duration"`
}
