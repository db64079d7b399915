package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galerium_backend/internal/model"
)

func activeSubscription(t *testing.T, env *testEnv, userID string) model.Subscription {
	t.Helper()

	sub := model.Subscription{
		UserID:             userID,
		PlanID:             "monthly",
		PlanName:           "Plano Mensal",
		Status:             model.SubscriptionStatusActive,
		CurrentPeriodStart: time.Now(),
		CurrentPeriodEnd:   time.Now().AddDate(0, 0, 30),
		Amount:             29.90,
	}
	require.NoError(t, env.db.Create(&sub).Error)
	return sub
}

func TestListPlans(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/subscriptions/plans", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	plans := decodeBody(t, resp)["plans"].([]interface{})
	require.Len(t, plans, 3)

	monthly := plans[0].(map[string]interface{})
	assert.Equal(t, "monthly", monthly["type"])
	assert.Equal(t, 29.90, monthly["price"])
	assert.EqualValues(t, 30, monthly["period_days"])
}

func TestGetMySubscription(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	resp := env.request(t, http.MethodGet, "/api/subscriptions/my", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	activeSubscription(t, env, userID)

	resp = env.request(t, http.MethodGet, "/api/subscriptions/my", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sub := decodeBody(t, resp)["subscription"].(map[string]interface{})
	assert.Equal(t, userID, sub["user_id"])
	assert.Equal(t, "monthly", sub["plan_id"])
}

func TestCancelSubscription(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	created := activeSubscription(t, env, userID)

	resp := env.request(t, http.MethodPost, "/api/subscriptions/cancel", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sub model.Subscription
	require.NoError(t, env.db.First(&sub, "id = ?", created.ID).Error)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status, "access stays until period end")
}

func TestCancelWithoutSubscription(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerUser(t, "ana@example.com", "secret1", "Ana")

	resp := env.request(t, http.MethodPost, "/api/subscriptions/cancel", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
