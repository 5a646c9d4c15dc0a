package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	// TaxRate is a percentage applied to bill subtotals.
	TaxRate          float64
	PaymentTolerance float64

	CORSOrigin         string
	RateLimitPerSecond float64
	RateLimitBurst     int

	AMQPURL        string
	PrintServerURL string

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using process environment")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DBDSN:              getEnv("DB_DSN", "restaurant.db"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		PrintServerURL:     os.Getenv("PRINT_SERVER_URL"),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@restaurant.local"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		PaymentTolerance:   0.01,
		RateLimitPerSecond: 20,
		RateLimitBurst:     40,
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TaxRate, err = strconv.ParseFloat(getEnv("TAX_RATE", "0"), 64); err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		if cfg.RateLimitPerSecond, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if cfg.RateLimitBurst, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TaxRate < 0 || c.TaxRate > 100 {
		return fmt.Errorf("TAX_RATE must be between 0 and 100, got %v", c.TaxRate)
	}
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.GinMode == "release" && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
