package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-api/models"
)

type Config struct {
	Port     string
	AppEnv   string
	GinMode  string
	LogLevel string
	RunMode  string

	DBDriver string
	DBDSN    string

	JWTSecret []byte
	JWTTTL    time.Duration

	LoginMaxFailures   int
	LoginLockoutWindow time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	CounterBackend string
	CounterTable   string
	AWSRegion      string

	OrderEventsQueueURL string
	TelegramToken       string
	TelegramChatID      int64
}

// IsDevelopment reports whether internal error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "production"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		RunMode:  getEnv("RUN_MODE", "http"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "storefront.db"),

		JWTSecret: []byte(getEnv("JWT_SECRET", "storefront_dev_secret")),

		CounterBackend: getEnv("COUNTER_BACKEND", "memory"),
		CounterTable:   getEnv("COUNTER_TABLE", "storefront-counters"),
		AWSRegion:      getEnv("AWS_REGION", ""),

		OrderEventsQueueURL: getEnv("ORDER_EVENTS_QUEUE_URL", ""),
		TelegramToken:       getEnv("TELEGRAM_TOKEN", ""),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LoginMaxFailures, err = getInt("LOGIN_MAX_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.LoginLockoutWindow, err = getDuration("LOGIN_LOCKOUT_WINDOW", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	switch cfg.CounterBackend {
	case "memory", "dynamodb":
	default:
		return nil, fmt.Errorf("COUNTER_BACKEND must be memory or dynamodb, got %q", cfg.CounterBackend)
	}
	if !cfg.IsDevelopment() && string(cfg.JWTSecret) == "storefront_dev_secret" {
		log.Warn().Msg("JWT_SECRET is not set, using the development secret")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// OpenDB connects to the configured database.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Review{},
		&models.ReviewVote{},
		&models.Page{},
		&models.ContactMessage{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
