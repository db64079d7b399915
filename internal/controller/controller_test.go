package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"galerium_backend/internal/middleware"
	"galerium_backend/internal/model"
	"galerium_backend/pkg/gateway"
	"galerium_backend/pkg/utils/hash"
	"galerium_backend/pkg/utils/jwt"
)

// fakeGateway records calls and returns canned responses.
type fakeGateway struct {
	prefCalls  int
	pixCalls   int
	getCalls   int
	lastPref   gateway.PreferenceRequest
	lastPIX    gateway.PIXRequest
	preference *gateway.Preference
	charge     *gateway.Charge
	payment    *gateway.Payment
	err        error
}

func (f *fakeGateway) CreatePreference(_ context.Context, req gateway.PreferenceRequest) (*gateway.Preference, error) {
	f.prefCalls++
	f.lastPref = req
	return f.preference, f.err
}

func (f *fakeGateway) CreatePIXCharge(_ context.Context, req gateway.PIXRequest) (*gateway.Charge, error) {
	f.pixCalls++
	f.lastPIX = req
	return f.charge, f.err
}

func (f *fakeGateway) GetPayment(_ context.Context, id string) (*gateway.Payment, error) {
	f.getCalls++
	return f.payment, f.err
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	gw  *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // each in-memory connection is its own database

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Subscription{}, &model.Asset{}))

	gw := &fakeGateway{}
	signer := jwt.NewSigner("test-secret", time.Hour)
	hasher := hash.NewBcryptHasher()

	auth := NewAuthController(db, hasher, signer)
	payments := NewPaymentController(db, gw, nil, "http://localhost:3001", zerolog.Nop())
	subscriptions := NewSubscriptionController(db)
	assets := NewAssetController(db, nil, AssetConfig{DownloadTTL: 15 * time.Minute})
	health := NewHealthController(db, "test", false)

	app := fiber.New()
	requireAuth := middleware.Auth(signer, db)

	app.Get("/", health.Banner)
	app.Get("/health", health.Health)
	app.Get("/metrics", health.Metrics)

	api := app.Group("/api")
	api.Post("/auth/register", auth.Register)
	api.Post("/auth/login", auth.Login)
	api.Get("/auth/me", requireAuth, auth.GetMe)
	api.Post("/payments/create-preference", requireAuth, payments.CreatePreference)
	api.Post("/payments/create-pix", requireAuth, payments.CreatePIX)
	api.Post("/payments/webhook", payments.Webhook)
	api.Get("/subscriptions/plans", subscriptions.ListPlans)
	api.Get("/subscriptions/my", requireAuth, subscriptions.GetMySubscription)
	api.Post("/subscriptions/cancel", requireAuth, subscriptions.Cancel)
	api.Get("/assets", assets.List)
	api.Get("/assets/:id", assets.Get)
	api.Get("/assets/:id/download", requireAuth, assets.Download)

	return &testEnv{app: app, db: db, gw: gw}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// registerUser creates an account through the API and returns its token and id.
func (e *testEnv) registerUser(t *testing.T, emailAddr, password, name string) (token, userID string) {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    emailAddr,
		"password": password,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}
