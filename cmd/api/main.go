package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"

	"galerium_backend/internal/controller"
	"galerium_backend/internal/middleware"
	"galerium_backend/internal/model"
	"galerium_backend/pkg/config"
	appcron "galerium_backend/pkg/cron"
	"galerium_backend/pkg/database"
	"galerium_backend/pkg/email"
	"galerium_backend/pkg/gateway"
	"galerium_backend/pkg/seed"
	"galerium_backend/pkg/utils/hash"
	"galerium_backend/pkg/utils/jwt"
	"galerium_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App, auth *controller.AuthController,
	payments *controller.PaymentController, subscriptions *controller.SubscriptionController,
	assets *controller.AssetController, health *controller.HealthController,
	requireAuth fiber.Handler) {

	app.Get("/", health.Banner)
	app.Get("/health", health.Health)
	app.Get("/metrics", health.Metrics)

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Get("/me", requireAuth, auth.GetMe)

	// Payment routes; the webhook stays open for the gateway
	paymentGroup := api.Group("/payments")
	paymentGroup.Post("/create-preference", requireAuth, payments.CreatePreference)
	paymentGroup.Post("/create-pix", requireAuth, payments.CreatePIX)
	paymentGroup.Post("/webhook", payments.Webhook)

	// Subscription routes
	subGroup := api.Group("/subscriptions")
	subGroup.Get("/plans", subscriptions.ListPlans)
	subGroup.Get("/my", requireAuth, subscriptions.GetMySubscription)
	subGroup.Post("/cancel", requireAuth, subscriptions.Cancel)

	// Asset routes
	assetGroup := api.Group("/assets")
	assetGroup.Get("/", assets.List)
	assetGroup.Post("/", requireAuth, middleware.RequireAdmin(), assets.Create)
	assetGroup.Get("/:id", assets.Get)
	assetGroup.Get("/:id/download", requireAuth, assets.Download)
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	err = database.Migrate(db,
		&model.User{},
		&model.Subscription{},
		&model.Asset{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("migration warning")
	}

	if !cfg.IsProduction() {
		seed.Assets(db, log)
	}

	gw, err := gateway.NewMercadoPago(cfg.Gateway.AccessToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize payment gateway")
	}
	if !gw.Configured() {
		log.Warn().Msg("MP_ACCESS_TOKEN not set, payment endpoints disabled")
	}

	mail, err := email.NewService(cfg.Email.APIKey, cfg.Email.From)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize email service")
	}

	var store *storage.Store
	if cfg.Storage.AccessKeyID != "" {
		store, err = storage.New(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket,
			cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize file storage")
		}
	} else {
		log.Warn().Msg("AWS credentials not set, asset downloads disabled")
	}

	signer := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	hasher := hash.NewBcryptHasher()

	auth := controller.NewAuthController(db, hasher, signer)
	payments := controller.NewPaymentController(db, gw, mail, cfg.Server.BackendURL, log)
	subscriptions := controller.NewSubscriptionController(db)
	assets := controller.NewAssetController(db, store, controller.AssetConfig{
		DownloadTTL: cfg.Storage.DownloadTTL,
	})
	health := controller.NewHealthController(db, cfg.Server.Env, gw.Configured())

	app := fiber.New(fiber.Config{
		AppName: "galerium-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Router-level errors (unknown routes, bad methods) keep their
			// status; anything uncaught becomes a generic 500 with the
			// detail only in the server log.
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg),
	}))

	// The window counter lives in memory by default. With Redis configured
	// the ceiling holds across replicas.
	if cfg.IsProduction() {
		var limiter middleware.Limiter
		if cfg.Database.RedisAddr != "" {
			limiter = middleware.NewRedisLimiter(redis.NewClient(&redis.Options{
				Addr: cfg.Database.RedisAddr,
			}))
		} else {
			memLimiter := middleware.NewMemoryLimiter()
			limiter = memLimiter
			go func() {
				for range time.Tick(cfg.RateLimit.Window) {
					memLimiter.Cleanup()
				}
			}()
		}
		app.Use(middleware.RateLimit(limiter, cfg.RateLimit.Max, cfg.RateLimit.Window))
	}

	requireAuth := middleware.Auth(signer, db)
	setupRoutes(app, auth, payments, subscriptions, assets, health, requireAuth)

	expiryCron := appcron.StartSubscriptionExpiry(db, log)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("server starting")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	expiryCron.Stop()
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("database close failed")
	}
}

func corsOrigins(cfg *config.Config) string {
	if cfg.Server.AllowedOrigins != "" {
		return cfg.Server.AllowedOrigins
	}
	return "*"
}
