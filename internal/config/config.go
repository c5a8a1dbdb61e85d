package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/quilltips/payments-service/internal/utils"
)

type Config struct {
	AppPort     string
	AppURL      string
	FrontendURL string

	DatabaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	AuthJWTSecret string

	SendgridAPIKey      string
	SendgridFromEmail   string
	SendgridSandboxMode bool

	ReminderCron string
}

// LoadConfig reads configuration from the environment, loading a local
// .env file first if one exists. Missing required values are fatal.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:     getEnvOrDefault("APP_PORT", "8080"),
		AppURL:      mustGetEnv("APP_URL"),
		FrontendURL: mustGetEnv("FRONTEND_URL"),

		DatabaseURL: mustGetEnv("DATABASE_URL"),

		StripeSecretKey:     mustGetEnv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: mustGetEnv("STRIPE_WEBHOOK_SECRET"),

		AuthJWTSecret: mustGetEnv("AUTH_JWT_SECRET"),

		SendgridAPIKey:      mustGetEnv("SENDGRID_API_KEY"),
		SendgridFromEmail:   mustGetEnv("SENDGRID_FROM_EMAIL"),
		SendgridSandboxMode: os.Getenv("SENDGRID_SANDBOX_MODE") == "true",

		ReminderCron: getEnvOrDefault("REMINDER_CRON", "0 * * * *"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		utils.Logger.Fatalf("missing required environment variable %s", key)
	}
	return val
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
