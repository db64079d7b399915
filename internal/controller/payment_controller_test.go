package controller

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galerium_backend/internal/model"
	"galerium_backend/pkg/gateway"
)

func TestCreatePreferenceUnknownType(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	resp := env.request(t, http.MethodPost, "/api/payments/create-preference", token, fiber.Map{
		"type": "lifetime",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid plan type", decodeBody(t, resp)["error"])
	assert.Zero(t, env.gw.prefCalls, "gateway must not be called for unknown plan types")
}

func TestCreatePreference(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana Souza")

	env.gw.preference = &gateway.Preference{
		ID:               "pref-1",
		InitPoint:        "https://mp.test/checkout",
		SandboxInitPoint: "https://sandbox.mp.test/checkout",
	}

	resp := env.request(t, http.MethodPost, "/api/payments/create-preference", token, fiber.Map{
		"type": "monthly",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "pref-1", body["id"])
	assert.Equal(t, "https://mp.test/checkout", body["init_point"])
	assert.Equal(t, "https://sandbox.mp.test/checkout", body["sandbox_init_point"])

	require.Equal(t, 1, env.gw.prefCalls)
	assert.Equal(t, 29.90, env.gw.lastPref.UnitPrice)
	assert.Equal(t, "ana@example.com", env.gw.lastPref.PayerEmail)
	assert.True(t, strings.HasPrefix(env.gw.lastPref.ExternalReference, userID+"_monthly_"))
	assert.Equal(t, "http://localhost:3001/api/payments/webhook", env.gw.lastPref.NotificationURL)
}

func TestCreatePreferenceGatewayNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	env.gw.err = gateway.ErrNotConfigured

	resp := env.request(t, http.MethodPost, "/api/payments/create-preference", token, fiber.Map{
		"type": "monthly",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCreatePIX(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana Souza")

	env.gw.charge = &gateway.Charge{
		ID:           "777",
		Status:       "pending",
		QRCode:       "00020126pix-payload",
		QRCodeBase64: "aGVsbG8=",
		TicketURL:    "https://mp.test/ticket/777",
	}

	resp := env.request(t, http.MethodPost, "/api/payments/create-pix", token, fiber.Map{
		"type": "annual",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "777", body["id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "00020126pix-payload", body["qr_code"])
	assert.Equal(t, "https://mp.test/ticket/777", body["ticket_url"])

	require.Equal(t, 1, env.gw.pixCalls)
	assert.Equal(t, 299.90, env.gw.lastPIX.Amount)
	assert.Equal(t, "Ana", env.gw.lastPIX.PayerFirstName)
	assert.Equal(t, "Souza", env.gw.lastPIX.PayerLastName)
	assert.True(t, strings.HasPrefix(env.gw.lastPIX.ExternalReference, userID+"_annual_pix_"))
}

func TestWebhookApprovedCreatesSubscription(t *testing.T) {
	env := newTestEnv(t)
	_, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	env.gw.payment = &gateway.Payment{
		ID:                "42",
		Status:            "approved",
		ExternalReference: userID + "_monthly_1699999999",
		Amount:            29.90,
	}

	resp := env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "42"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["received"])

	var sub model.Subscription
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&sub).Error)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "monthly", sub.PlanID)
	assert.Equal(t, "42", sub.MPPaymentID)
	assert.Equal(t, 29.90, sub.Amount)

	period := sub.CurrentPeriodEnd.Sub(sub.CurrentPeriodStart)
	assert.InDelta(t, 30*24*time.Hour, period, float64(time.Hour))
}

func TestWebhookAnnualPeriod(t *testing.T) {
	env := newTestEnv(t)
	_, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	env.gw.payment = &gateway.Payment{
		ID:                "43",
		Status:            "approved",
		ExternalReference: userID + "_annual_pix_1699999999",
		Amount:            299.90,
	}

	resp := env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "43"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sub model.Subscription
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&sub).Error)
	period := sub.CurrentPeriodEnd.Sub(sub.CurrentPeriodStart)
	assert.InDelta(t, 365*24*time.Hour, period, float64(25*time.Hour))
}

func TestWebhookReplacesSubscription(t *testing.T) {
	env := newTestEnv(t)
	_, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	env.gw.payment = &gateway.Payment{
		ID:                "42",
		Status:            "approved",
		ExternalReference: userID + "_monthly_1",
		Amount:            29.90,
	}
	env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "42"},
	})

	env.gw.payment = &gateway.Payment{
		ID:                "99",
		Status:            "approved",
		ExternalReference: userID + "_annual_2",
		Amount:            299.90,
	}
	env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "99"},
	})

	var count int64
	env.db.Model(&model.Subscription{}).Where("user_id = ?", userID).Count(&count)
	assert.EqualValues(t, 1, count, "second approved payment must replace, not duplicate")

	var sub model.Subscription
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&sub).Error)
	assert.Equal(t, "annual", sub.PlanID)
	assert.Equal(t, "99", sub.MPPaymentID)
	assert.Equal(t, 299.90, sub.Amount)
}

func TestWebhookIgnoresUnapproved(t *testing.T) {
	env := newTestEnv(t)
	_, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	env.gw.payment = &gateway.Payment{
		ID:                "42",
		Status:            "rejected",
		ExternalReference: userID + "_monthly_1",
	}

	resp := env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "42"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	env.db.Model(&model.Subscription{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

// The gateway retries on non-2xx, so even a broken lookup must be acknowledged.
func TestWebhookAcknowledgesFailures(t *testing.T) {
	env := newTestEnv(t)

	env.gw.err = gateway.ErrNotConfigured

	resp := env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "payment",
		"data": fiber.Map{"id": "42"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/payments/webhook", "", fiber.Map{
		"type": "test",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.gw.getCalls, "non-payment notifications must not hit the gateway")
}

func TestPaymentEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/payments/create-preference", "", fiber.Map{"type": "monthly"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/payments/create-pix", "", fiber.Map{"type": "monthly"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
