package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Asset struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	Title        string                      `json:"title" gorm:"not null"`
	Slug         string                      `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Category     string                      `json:"category" gorm:"index"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	ThumbnailURL string                      `json:"thumbnail_url"`
	FileURL      string                      `json:"-"` // storage key, served only through the download endpoint
	IsPremium    bool                        `json:"is_premium" gorm:"default:false"`
	Downloads    int64                       `json:"downloads" gorm:"default:0"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"-"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Slug == "" {
		s := slug.Make(a.Title)

		var count int64
		tx.Model(&Asset{}).Where("slug = ?", s).Count(&count)
		if count > 0 {
			s = s + "-" + a.ID[:8]
		}
		a.Slug = s
	}
	return nil
}

// AssetListItem is the listing projection. FileURL stays out so catalog pages
// never expose the raw storage key.
type AssetListItem struct {
	ID           string                      `json:"id"`
	Title        string                      `json:"title"`
	Slug         string                      `json:"slug"`
	Description  string                      `json:"description"`
	Category     string                      `json:"category"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	ThumbnailURL string                      `json:"thumbnail_url"`
	IsPremium    bool                        `json:"is_premium"`
	Downloads    int64                       `json:"downloads"`
	CreatedAt    time.Time                   `json:"created_at"`
}
