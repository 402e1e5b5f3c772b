package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"tvshow-catalog/internal/infrastructure/database"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Database   database.DBConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Pagination PaginationConfig
	Sync       SyncConfig
	CORS       CORSConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	// AdminAPIKey guards /admin routes; empty disables them
	AdminAPIKey string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// CacheConfig selects where cached pages live. The memory backend is
// per-process; use redis when several API replicas must share invalidation.
type CacheConfig struct {
	Backend           string
	SlidingExpiration time.Duration
	RefreshTimeout    time.Duration
	BuildTimeout      time.Duration
	SweepInterval     time.Duration
}

type PaginationConfig struct {
	MaxPageSize int
}

type SyncConfig struct {
	APIBaseURL           string
	EarliestPremiereDate string
	MaxExecutionTime     time.Duration
	RequestTimeout       time.Duration
	Cron                 string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	db, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "TV Show Catalog"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Database: *db,
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Backend:           strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
			SlidingExpiration: getEnvDuration("CACHE_SLIDING_EXPIRATION", 5*time.Minute),
			RefreshTimeout:    getEnvDuration("CACHE_REFRESH_TIMEOUT", 5*time.Second),
			BuildTimeout:      getEnvDuration("CACHE_BUILD_TIMEOUT", 30*time.Second),
			SweepInterval:     getEnvDuration("CACHE_SWEEP_INTERVAL", time.Minute),
		},
		Pagination: PaginationConfig{
			MaxPageSize: getEnvInt("PAGINATION_MAX_PAGE_SIZE", 0),
		},
		Sync: SyncConfig{
			APIBaseURL:           getEnv("SYNC_API_BASE_URL", "https://api.tvmaze.com"),
			EarliestPremiereDate: getEnv("SYNC_EARLIEST_PREMIERE_DATE", "2014-01-01"),
			MaxExecutionTime:     getEnvDuration("SYNC_MAX_EXECUTION_TIME", time.Minute),
			RequestTimeout:       getEnvDuration("SYNC_REQUEST_TIMEOUT", 15*time.Second),
			Cron:                 getEnv("SYNC_CRON", "0 3 * * *"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Pagination,
		validation.Field(&c.Pagination.MaxPageSize, validation.Required.Error("PAGINATION_MAX_PAGE_SIZE must be a positive integer"), validation.Min(1)),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.Cache,
		validation.Field(&c.Cache.Backend, validation.Required, validation.In(CacheBackendMemory, CacheBackendRedis)),
		validation.Field(&c.Cache.SlidingExpiration, validation.Required),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.Sync,
		validation.Field(&c.Sync.APIBaseURL, validation.Required, is.URL),
		validation.Field(&c.Sync.EarliestPremiereDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&c.Sync.MaxExecutionTime, validation.Required),
	); err != nil {
		return err
	}

	// Production environment phải có DB password
	if c.App.Environment == "production" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD must be set in production")
	}

	return nil
}

// EarliestPremiere returns the parsed SYNC_EARLIEST_PREMIERE_DATE.
func (s SyncConfig) EarliestPremiere() time.Time {
	t, _ := time.Parse("2006-01-02", s.EarliestPremiereDate)
	return t
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
