package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full configuration surface of the POS service.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	GoldFeed  GoldFeedConfig
	Archive   ArchiveConfig
	Shop      ShopConfig
	Seed      SeedConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port    string
	AppName string
}

// DatabaseConfig selects the gorm dialect. URL wins over the discrete fields.
type DatabaseConfig struct {
	Driver       string
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret   string
	TTLHours int

	// IdleTimeout ends a session when no heartbeat arrived for this long.
	IdleTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds the expiry of derived stock views.
type CacheConfig struct {
	TodayTTL   time.Duration
	HistoryTTL time.Duration
}

type SchedulerConfig struct {
	SnapshotCron  string
	GoldPriceCron string
	Timezone      string
}

// GoldFeedConfig points at an optional HTTP gold price source. Empty BaseURL disables it.
type GoldFeedConfig struct {
	BaseURL string
	APIKey  string
}

// ArchiveConfig holds the optional archive sinks used before purging old data.
type ArchiveConfig struct {
	MongoURI              string
	MongoDB               string
	SheetsCredentialsPath string
	SpreadsheetID         string
}

// ShopConfig is printed on receipts and invoices.
type ShopConfig struct {
	Name    string
	Address string
	Phone   string
}

// SeedConfig is the owner account created on first start.
type SeedConfig struct {
	OwnerEmail    string
	OwnerPassword string
	OwnerName     string
}

type LoggerConfig struct {
	Development bool
}

// Load reads environment variables, optionally from envFile, and validates them.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine when the environment is set directly
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getenvWithDefault("PORT", "3000"),
			AppName: getenvWithDefault("APP_NAME", "Jewelry POS v1.0"),
		},
		Database: DatabaseConfig{
			Driver:       getenvWithDefault("DB_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getenvWithDefault("DB_HOST", "localhost"),
			Port:         getenvWithDefault("DB_PORT", "5432"),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getenvWithDefault("DB_NAME", "jewelry_pos"),
			MaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns: getenvInt("DB_MAX_IDLE_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			TTLHours: getenvInt("JWT_TTL_HOURS", 24),

			IdleTimeout: getenvDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getenvBool("REDIS_ENABLED", false),
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TodayTTL:   getenvDuration("STOCK_CACHE_TODAY_TTL", 5*time.Minute),
			HistoryTTL: getenvDuration("STOCK_CACHE_HISTORY_TTL", 24*time.Hour),
		},
		Scheduler: SchedulerConfig{
			SnapshotCron:  getenvWithDefault("SNAPSHOT_CRON", "55 23 * * *"),
			GoldPriceCron: getenvWithDefault("GOLD_PRICE_CRON", "0 8 * * *"),
			Timezone:      getenvWithDefault("TIMEZONE", "Asia/Jakarta"),
		},
		GoldFeed: GoldFeedConfig{
			BaseURL: os.Getenv("GOLD_FEED_URL"),
			APIKey:  os.Getenv("GOLD_FEED_API_KEY"),
		},
		Archive: ArchiveConfig{
			MongoURI:              os.Getenv("ARCHIVE_MONGODB_URI"),
			MongoDB:               getenvWithDefault("ARCHIVE_MONGODB_DB", "jewelry_pos_archive"),
			SheetsCredentialsPath: os.Getenv("ARCHIVE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:         os.Getenv("ARCHIVE_SPREADSHEET_ID"),
		},
		Shop: ShopConfig{
			Name:    getenvWithDefault("SHOP_NAME", "Toko Perhiasan"),
			Address: os.Getenv("SHOP_ADDRESS"),
			Phone:   os.Getenv("SHOP_PHONE"),
		},
		Seed: SeedConfig{
			OwnerEmail:    getenvWithDefault("SEED_OWNER_EMAIL", "owner@example.com"),
			OwnerPassword: getenvWithDefault("SEED_OWNER_PASSWORD", "owner123"),
			OwnerName:     getenvWithDefault("SEED_OWNER_NAME", "Shop Owner"),
		},
		Logger: LoggerConfig{
			Development: getenvBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures required fields are populated and fills soft defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("PORT must be provided")
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported (postgres, mysql, sqlite)", c.Database.Driver)
	}

	if c.Database.Driver == "sqlite" && c.Database.URL == "" {
		return errors.New("DATABASE_URL must be provided for the sqlite driver")
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}

	if c.JWT.IdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}

	if c.Cache.TodayTTL <= 0 || c.Cache.HistoryTTL <= 0 {
		return errors.New("STOCK_CACHE_TODAY_TTL and STOCK_CACHE_HISTORY_TTL must be positive")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Scheduler.Timezone, err)
	}

	if c.Scheduler.SnapshotCron == "" {
		return errors.New("SNAPSHOT_CRON must be provided")
	}

	if c.Archive.SpreadsheetID != "" && c.Archive.SheetsCredentialsPath == "" {
		return errors.New("ARCHIVE_SHEETS_CREDENTIALS_PATH must be provided with ARCHIVE_SPREADSHEET_ID")
	}

	return nil
}

// Location returns the shop timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
