package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"galerium_backend/internal/model"
	imageutil "galerium_backend/pkg/utils/image"
	"galerium_backend/pkg/utils/storage"
	"galerium_backend/pkg/utils/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type AssetController struct {
	db    *gorm.DB
	store *storage.Store
	cfg   AssetConfig
}

type AssetConfig struct {
	DownloadTTL time.Duration
}

func NewAssetController(db *gorm.DB, store *storage.Store, cfg AssetConfig) *AssetController {
	return &AssetController{db: db, store: store, cfg: cfg}
}

// List returns a catalog page. Supports category equality and
// case-insensitive substring search over title and description.
func (ac *AssetController) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}

	query := ac.db.Model(&model.Asset{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch assets",
		})
	}

	var assets []model.AssetListItem
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&assets).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch assets",
		})
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return c.JSON(fiber.Map{
		"assets": assets,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (ac *AssetController) Get(c *fiber.Ctx) error {
	var asset model.Asset
	if err := ac.db.First(&asset, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Asset not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch asset",
		})
	}

	return c.JSON(asset)
}

// Download hands out a time-limited link to the asset file. Premium assets
// require an active subscription. The counter increments only after the
// gating passes.
func (ac *AssetController) Download(c *fiber.Ctx) error {
	user := c.Locals("user").(*model.User)

	var asset model.Asset
	if err := ac.db.First(&asset, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Asset not found",
		})
	}

	if asset.IsPremium {
		var sub model.Subscription
		err := ac.db.Where("user_id = ?", user.ID).First(&sub).Error
		if err != nil || !sub.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "An active subscription is required to download premium assets",
			})
		}
	}

	if ac.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "File storage not configured",
		})
	}

	url, err := ac.store.PresignDownload(c.Context(), asset.FileURL, ac.cfg.DownloadTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate download link",
		})
	}

	ac.db.Model(&asset).UpdateColumn("downloads", gorm.Expr("downloads + 1"))

	return c.JSON(fiber.Map{
		"download_url": url,
		"expires_in":   int(ac.cfg.DownloadTTL.Seconds()),
	})
}

// Create adds a catalog entry with a processed thumbnail. Admin only.
func (ac *AssetController) Create(c *fiber.Ctx) error {
	title := c.FormValue("title")
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No thumbnail uploaded",
		})
	}
	if err := validation.ValidateImage(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if ac.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "File storage not configured",
		})
	}

	buf, contentType, err := imageutil.ProcessThumbnail(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var tags []string
	if raw := c.FormValue("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	asset := model.Asset{
		Title:       title,
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Tags:        datatypes.NewJSONSlice(tags),
		FileURL:     c.FormValue("file_key"),
		IsPremium:   c.FormValue("is_premium") == "true",
	}

	tx := ac.db.Begin()
	if err := tx.Create(&asset).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create asset",
		})
	}

	thumbnailURL, err := ac.store.UploadThumbnail(c.Context(), asset.ID, buf.Bytes(), contentType)
	if err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not store thumbnail",
		})
	}

	if err := tx.Model(&asset).Update("thumbnail_url", thumbnailURL).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create asset",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create asset",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}
