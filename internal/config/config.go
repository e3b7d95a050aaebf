package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Token signing
	Auth AuthConfig

	// Text/image generation providers
	AI AIConfig

	// Public e-drug API used for catalog ingestion
	DrugAPI DrugAPIConfig

	// Optional Redis used for rate limiting AI routes
	Redis RedisConfig

	// Logging configuration
	Log LogConfig

	Bootstrap BootstrapConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MigrationsPath  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// AIConfig holds settings for the external generation providers
type AIConfig struct {
	Provider      string // "openai" or "gemini"
	APIKey        string
	BaseURL       string
	Model         string
	ImageModel    string
	GeminiAPIKey  string
	GeminiModel   string
	Timeout       time.Duration // summary generation
	SearchTimeout time.Duration // symptom keyword extraction
	ImageTimeout  time.Duration
	RateLimit     int // requests per minute per client on upstream-bound routes
}

// DrugAPIConfig holds settings for the e-drug open API
type DrugAPIConfig struct {
	BaseURL    string
	ServiceKey string
	PageSize   int
	Timeout    time.Duration
}

// RedisConfig holds Redis connection settings; an empty Addr disables Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// BootstrapConfig controls the catalog bootstrap
type BootstrapConfig struct {
	OnStart bool
}

// Load reads configuration from environment variables, after loading .env if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "mediguide"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("JWT_TTL", 24*time.Hour),
		},
		AI: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "openai"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("AI_MODEL", "gpt-4o-mini"),
			ImageModel:    getEnv("AI_IMAGE_MODEL", "dall-e-3"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			Timeout:       getDurationEnv("AI_TIMEOUT", 30*time.Second),
			SearchTimeout: getDurationEnv("AI_SEARCH_TIMEOUT", 15*time.Second),
			ImageTimeout:  getDurationEnv("AI_IMAGE_TIMEOUT", 60*time.Second),
			RateLimit:     getIntEnv("AI_RATE_LIMIT_PER_MIN", 10),
		},
		DrugAPI: DrugAPIConfig{
			BaseURL:    getEnv("DRUG_API_URL", "https://apis.data.go.kr/1471000/DrbEasyDrugInfoService/getDrbEasyDrugList"),
			ServiceKey: getEnv("E_DRUG_API_KEY", ""),
			PageSize:   getIntEnv("DRUG_API_PAGE_SIZE", 100),
			Timeout:    getDurationEnv("DRUG_API_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Bootstrap: BootstrapConfig{
			OnStart: getBoolEnv("BOOTSTRAP_ON_START", false),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return errors.New("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER must be one of: openai, gemini (got %q)", c.AI.Provider)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
