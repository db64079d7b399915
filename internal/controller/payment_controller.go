package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"galerium_backend/internal/model"
	"galerium_backend/pkg/email"
	"galerium_backend/pkg/gateway"
	"galerium_backend/pkg/plan"
)

type PaymentInput struct {
	Type string `json:"type" validate:"required"`
}

type WebhookInput struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type PaymentController struct {
	db         *gorm.DB
	gw         gateway.Gateway
	mail       *email.Service
	backendURL string
	logger     zerolog.Logger
}

func NewPaymentController(db *gorm.DB, gw gateway.Gateway, mail *email.Service, backendURL string, logger zerolog.Logger) *PaymentController {
	return &PaymentController{db: db, gw: gw, mail: mail, backendURL: backendURL, logger: logger}
}

// CreatePreference builds a hosted checkout page for the requested plan and
// returns its redirect links.
func (pc *PaymentController) CreatePreference(c *fiber.Ctx) error {
	input := new(PaymentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	p, ok := plan.Lookup(input.Type)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan type",
		})
	}

	user := c.Locals("user").(*model.User)

	pref, err := pc.gw.CreatePreference(c.Context(), gateway.PreferenceRequest{
		ItemID:            fmt.Sprintf("galerium-%s", p.Type),
		Title:             fmt.Sprintf("Galerium Assets - %s", p.Title),
		Description:       fmt.Sprintf("Acesso completo aos assets IA - %s", p.Title),
		UnitPrice:         p.Price,
		PayerName:         user.Name,
		PayerEmail:        user.Email,
		ExternalReference: externalReference(user.ID, string(p.Type)),
		NotificationURL:   pc.backendURL + "/api/payments/webhook",
	})
	if err != nil {
		return pc.gatewayError(c, err, "could not create checkout preference")
	}

	return c.JSON(fiber.Map{
		"id":                 pref.ID,
		"init_point":         pref.InitPoint,
		"sandbox_init_point": pref.SandboxInitPoint,
	})
}

// CreatePIX creates an instant-payment charge and returns its QR payload.
func (pc *PaymentController) CreatePIX(c *fiber.Ctx) error {
	input := new(PaymentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	p, ok := plan.Lookup(input.Type)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan type",
		})
	}

	user := c.Locals("user").(*model.User)

	charge, err := pc.gw.CreatePIXCharge(c.Context(), gateway.PIXRequest{
		Amount:            p.Price,
		Description:       fmt.Sprintf("Galerium Assets - Plano %s", p.Type),
		PayerEmail:        user.Email,
		PayerFirstName:    user.FirstName(),
		PayerLastName:     user.LastName(),
		ExternalReference: externalReference(user.ID, string(p.Type)+"_pix"),
	})
	if err != nil {
		return pc.gatewayError(c, err, "could not create PIX charge")
	}

	return c.JSON(fiber.Map{
		"id":             charge.ID,
		"status":         charge.Status,
		"qr_code":        charge.QRCode,
		"qr_code_base64": charge.QRCodeBase64,
		"ticket_url":     charge.TicketURL,
	})
}

// Webhook receives the gateway's payment notifications. It always
// acknowledges with 200: the gateway retries on any other status, and the
// upsert below is idempotent, so retrying a persistent internal failure would
// only hammer both sides. Failures are logged instead.
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	input := new(WebhookInput)
	if err := c.BodyParser(input); err != nil {
		pc.logger.Warn().Err(err).Msg("webhook: unparseable body")
		return c.JSON(fiber.Map{"received": true})
	}

	pc.logger.Info().Str("type", input.Type).Str("payment_id", input.Data.ID).Msg("webhook received")

	if input.Type == "payment" {
		if err := pc.processPayment(c, input.Data.ID); err != nil {
			pc.logger.Error().Err(err).Str("payment_id", input.Data.ID).Msg("webhook: could not process payment")
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

func (pc *PaymentController) processPayment(c *fiber.Ctx, paymentID string) error {
	info, err := pc.gw.GetPayment(c.Context(), paymentID)
	if err != nil {
		return err
	}

	pc.logger.Info().Str("payment_id", info.ID).Str("status", info.Status).Msg("payment status")

	if info.Status != "approved" {
		return nil
	}

	// Reference format: {userID}_{planType}_{...}. Only the first two
	// segments carry meaning; the rest disambiguates repeated checkouts.
	parts := strings.Split(info.ExternalReference, "_")
	if len(parts) < 2 {
		return fmt.Errorf("malformed external reference %q", info.ExternalReference)
	}
	userID, planType := parts[0], parts[1]

	now := time.Now()
	sub := model.Subscription{
		UserID:             userID,
		PlanID:             planType,
		PlanName:           fmt.Sprintf("Plano %s", planType),
		Status:             model.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, plan.PeriodDays(planType)),
		CancelAtPeriodEnd:  false,
		Amount:             info.Amount,
		MPPaymentID:        info.ID,
	}

	err = pc.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "plan_name", "status", "current_period_start",
			"current_period_end", "cancel_at_period_end", "amount",
			"mp_payment_id", "updated_at",
		}),
	}).Create(&sub).Error
	if err != nil {
		return err
	}

	pc.logger.Info().Str("user_id", userID).Str("plan", planType).Msg("subscription activated")

	pc.sendActivationMail(userID, sub)
	return nil
}

func (pc *PaymentController) sendActivationMail(userID string, sub model.Subscription) {
	if pc.mail == nil {
		return
	}

	var user model.User
	if err := pc.db.First(&user, "id = ?", userID).Error; err != nil {
		return
	}

	err := pc.mail.SendSubscriptionActivated(user.Email, email.SubscriptionActivatedData{
		Name:      user.Name,
		PlanName:  sub.PlanName,
		Amount:    sub.Amount,
		PeriodEnd: sub.CurrentPeriodEnd,
	})
	if err != nil {
		pc.logger.Error().Err(err).Str("user_id", userID).Msg("could not send activation email")
	}
}

func (pc *PaymentController) gatewayError(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, gateway.ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Payment gateway not configured",
		})
	}
	pc.logger.Error().Err(err).Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not process payment",
	})
}

func externalReference(userID, planType string) string {
	return fmt.Sprintf("%s_%s_%d", userID, planType, time.Now().UnixMilli())
}
