package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-inventory-ledger/internal/jobs"
)

type Config struct {
	Env     string
	Port    string
	BaseURL string

	DatabaseDSN string
	DBLogLevel  string

	JWTSecret         string
	JWTTTL            time.Duration
	AllowRegistration bool
	AdminUsername     string
	AdminPassword     string
	CORSOrigins       []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	GeminiAPIKey string
	GeminiModel  string

	LowStockSchedule string

	CompanyName    string
	CompanyAddress string

	LogLevel  string
	LogFormat string
}

// Development reports whether APP_ENV is development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads the environment (after godotenv populated it) and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Env:     envOr("APP_ENV", "development"),
		Port:    envOr("PORT", "8080"),
		BaseURL: os.Getenv("BASE_URL"),

		DatabaseDSN: os.Getenv("DB_DSN"),
		DBLogLevel:  envOr("DB_LOG_LEVEL", "warn"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		CORSOrigins:       splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash-001"),

		LowStockSchedule: envOr("LOW_STOCK_SCHEDULE", "@every 1m"),

		CompanyName:    envOr("COMPANY_NAME", "Your Company Name"),
		CompanyAddress: envOr("COMPANY_ADDRESS", "123 Business Street, City, State 12345"),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	var errs []error
	var err error
	if cfg.JWTTTL, err = envDuration("JWT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		if !c.Development() {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
		c.JWTSecret = "dev-only-secret-change-me"
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if err := jobs.ValidateSchedule(c.LowStockSchedule); err != nil {
		errs = append(errs, fmt.Errorf("LOW_STOCK_SCHEDULE: %w", err))
	}
	return errs
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
