package seed

import (
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"galerium_backend/internal/model"
)

// Assets inserts a handful of demo catalog rows so a fresh development
// database has something to list. FirstOrCreate keeps it idempotent.
func Assets(db *gorm.DB, logger zerolog.Logger) {
	assets := []model.Asset{
		{
			Title:        "Neon City Pack",
			Description:  "Cyberpunk cityscape backgrounds in 4K",
			Category:     "backgrounds",
			Tags:         datatypes.NewJSONSlice([]string{"cyberpunk", "city", "neon"}),
			ThumbnailURL: "https://placehold.co/400x300",
			FileURL:      "assets/neon-city-pack.zip",
			IsPremium:    true,
		},
		{
			Title:        "Watercolor Textures",
			Description:  "Hand-painted watercolor texture collection",
			Category:     "textures",
			Tags:         datatypes.NewJSONSlice([]string{"watercolor", "paint"}),
			ThumbnailURL: "https://placehold.co/400x300",
			FileURL:      "assets/watercolor-textures.zip",
		},
		{
			Title:        "Minimal Icons",
			Description:  "Outline icon set, 240 glyphs",
			Category:     "icons",
			Tags:         datatypes.NewJSONSlice([]string{"icons", "outline", "ui"}),
			ThumbnailURL: "https://placehold.co/400x300",
			FileURL:      "assets/minimal-icons.zip",
		},
	}

	for _, asset := range assets {
		result := db.Where(model.Asset{Title: asset.Title}).FirstOrCreate(&asset)
		if result.Error != nil {
			logger.Error().Err(result.Error).Str("title", asset.Title).Msg("could not seed asset")
		}
	}
}
