package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"galerium_backend/internal/model"
)

// StartSubscriptionExpiry runs a daily sweep flipping active subscriptions
// whose billing period has ended to expired. The returned cron must be
// stopped on shutdown.
func StartSubscriptionExpiry(db *gorm.DB, logger zerolog.Logger) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		ExpireSubscriptions(db, logger)
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not schedule subscription expiry job")
		return c
	}

	c.Start()
	return c
}

// ExpireSubscriptions marks past-due active subscriptions expired and returns
// how many rows changed.
func ExpireSubscriptions(db *gorm.DB, logger zerolog.Logger) int64 {
	res := db.Model(&model.Subscription{}).
		Where("status = ? AND current_period_end < ?", model.SubscriptionStatusActive, time.Now()).
		Update("status", model.SubscriptionStatusExpired)

	if res.Error != nil {
		logger.Error().Err(res.Error).Msg("subscription expiry sweep failed")
		return 0
	}
	if res.RowsAffected > 0 {
		logger.Info().Int64("expired", res.RowsAffected).Msg("subscriptions expired")
	}
	return res.RowsAffected
}
