package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"galerium_backend/internal/model"
	"galerium_backend/pkg/plan"
)

type SubscriptionController struct {
	db *gorm.DB
}

func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{db: db}
}

// ListPlans exposes the fixed catalog so clients render prices from the same
// table the payment endpoints charge against.
func (sc *SubscriptionController) ListPlans(c *fiber.Ctx) error {
	plans := make([]fiber.Map, 0, 3)
	for _, p := range plan.All() {
		plans = append(plans, fiber.Map{
			"type":        p.Type,
			"title":       p.Title,
			"price":       p.Price,
			"period_days": p.PeriodDays,
		})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (sc *SubscriptionController) GetMySubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*model.User)

	var sub model.Subscription
	if err := sc.db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No subscription found",
		})
	}

	return c.JSON(fiber.Map{"subscription": sub})
}

// Cancel flags the active subscription to lapse at period end. Access is kept
// until then, so the row is flagged rather than deleted.
func (sc *SubscriptionController) Cancel(c *fiber.Ctx) error {
	user := c.Locals("user").(*model.User)

	var sub model.Subscription
	if err := sc.db.Where("user_id = ? AND status = ?", user.ID, model.SubscriptionStatusActive).
		First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	if err := sc.db.Model(&sub).Update("cancel_at_period_end", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not cancel subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Subscription will not renew after the current period",
		"subscription": sub,
	})
}
