package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Weather    WeatherConfig
	Cache      CacheConfig
	Model      ModelConfig
	History    HistoryConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	StaticDir      string // frontend assets, served when the directory exists
}

// WeatherConfig holds the weather provider configuration
type WeatherConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	RateBurst    int
	CacheTTL     time.Duration
}

// CacheConfig holds the shared cache configuration
type CacheConfig struct {
	RedisURL string
}

// ModelConfig holds price model configuration
type ModelConfig struct {
	Path            string
	URL             string // download source used when Path is missing
	ServiceURL      string // remote predictor, takes precedence over the local artifact
	DownloadTimeout time.Duration
	RMSE            float64
	MAE             float64
}

// HistoryConfig holds limits for history and heatmap queries
type HistoryConfig struct {
	DefaultLimit      int
	MaxLimit          int
	HeatmapWindowDays int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Debug reports whether debug logging is enabled
func (l LoggingConfig) Debug() bool {
	return l.Level == "debug"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "crop_price_db"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			StaticDir:      getEnv("STATIC_DIR", "web"),
		},
		Weather: WeatherConfig{
			APIKey:       getEnv("OPENWEATHER_API_KEY", ""),
			BaseURL:      getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			Timeout:      getEnvAsDuration("WEATHER_TIMEOUT", 10*time.Second),
			RateLimitRPS: getEnvAsFloat("WEATHER_RATE_LIMIT_RPS", 1.0),
			RateBurst:    getEnvAsInt("WEATHER_RATE_LIMIT_BURST", 5),
			CacheTTL:     getEnvAsDuration("WEATHER_CACHE_TTL", 10*time.Minute),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
		},
		Model: ModelConfig{
			Path:            getEnv("MODEL_PATH", "ml/crop_price_model.json"),
			URL:             getEnv("MODEL_URL", ""),
			ServiceURL:      getEnv("ML_SERVICE_URL", ""),
			DownloadTimeout: getEnvAsDuration("MODEL_DOWNLOAD_TIMEOUT", 60*time.Second),
			RMSE:            getEnvAsFloat("MODEL_RMSE", 8.0),
			MAE:             getEnvAsFloat("MODEL_MAE", 6.0),
		},
		History: HistoryConfig{
			DefaultLimit:      getEnvAsInt("HISTORY_DEFAULT_LIMIT", 50),
			MaxLimit:          getEnvAsInt("HISTORY_MAX_LIMIT", 200),
			HeatmapWindowDays: getEnvAsInt("HEATMAP_WINDOW_DAYS", 7),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Model.RMSE < 0 {
		return nil, fmt.Errorf("MODEL_RMSE must not be negative, got %f", cfg.Model.RMSE)
	}
	if cfg.History.DefaultLimit <= 0 || cfg.History.MaxLimit < cfg.History.DefaultLimit {
		return nil, fmt.Errorf("invalid history limits: default %d, max %d", cfg.History.DefaultLimit, cfg.History.MaxLimit)
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s", "2m") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	secs, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
