package config

import (
	"fmt"
	"os"
)

// Config holds all runtime configuration. It is loaded once at process
// start and treated as immutable afterwards.
type Config struct {
	Port        string
	Environment string // "development" or "production"
	SiteBaseURL string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisAddr     string
	RedisPassword string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	JWTSecret string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	GoogleBooksAPIKey string
}

// LoadConfig reads configuration from the environment. The webhook secret
// is mandatory outside development: an unverified webhook path is a
// development-only fallback and must not exist in production.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		SiteBaseURL: getEnv("SITE_BASE_URL", "http://localhost:8080"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Europe/London"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "gbp"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  getEnv("SMTP_PORT", "587"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		FromEmail: getEnv("DEFAULT_FROM_EMAIL", "noreply@talesandtails.example"),

		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("missing required Postgres environment variables")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StripeWebhookSecret == "" && cfg.Environment != "development" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required outside development")
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in a production-equivalent mode.
func (c *Config) IsProduction() bool {
	return c.Environment != "development"
}

// PostgresDSN builds the GORM Postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword,
		c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
