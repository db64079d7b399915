package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	BackendURL     string
	AllowedOrigins string
}

type DatabaseConfig struct {
	URL       string
	RedisAddr string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type GatewayConfig struct {
	AccessToken string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type EmailConfig struct {
	APIKey string
	From   string
}

type StorageConfig struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	DownloadTTL     time.Duration
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3001"),
			Env:            getEnv("APP_ENV", "development"),
			BackendURL:     getEnv("BACKEND_URL", "http://localhost:3001"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			URL:       getEnv("DATABASE_URL", ""),
			RedisAddr: getEnv("REDIS_ADDR", ""),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ExpiresIn: time.Duration(getEnvInt("JWT_EXPIRES_IN", 7)) * 24 * time.Hour,
		},
		Gateway: GatewayConfig{
			AccessToken: getEnv("MP_ACCESS_TOKEN", ""),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvInt("RATE_LIMIT_MAX", 100),
			Window: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,
		},
		Email: EmailConfig{
			APIKey: getEnv("RESEND_API_KEY", ""),
			From:   getEnv("EMAIL_FROM", "Galerium <noreply@galerium.app>"),
		},
		Storage: StorageConfig{
			Region:          getEnv("AWS_REGION", "sa-east-1"),
			Bucket:          getEnv("AWS_BUCKET_NAME", "galerium-assets"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			DownloadTTL:     time.Duration(getEnvInt("DOWNLOAD_URL_TTL_MINUTES", 15)) * time.Minute,
		},
	}
}

// IsProduction reports whether the server runs in production mode.
// Rate limiting and demo seeding depend on it.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
