package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Secure      bool   // Send HSTS
	Environment string // "development", "production", "test"
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig is optional: with Enabled false the token cache and the
// shared API limiter are skipped.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	TokenTTL   time.Duration
	BcryptCost int
	// SessionCleanup is a cron spec for purging expired sessions.
	SessionCleanup string
}

// OAuthConfig holds the client ids of the enabled social providers. A blank
// id disables that provider.
type OAuthConfig struct {
	GoogleClientID   string
	FacebookClientID string
	AppURL           string
}

type RateLimitConfig struct {
	APIRequests  int
	APIWindow    time.Duration
	AuthRequests int
	AuthWindow   time.Duration
	AuthBurst    int

	// TrustedProxies lists CIDRs or addresses whose forwarding headers are honored.
	TrustedProxies []string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LoadDotEnv reads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			Secure:      getEnvBool("SERVER_SECURE", false),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "watchtogether"),
			Password: getEnv("DB_PASSWORD", "watchtogether"),
			DBName:   getEnv("DB_NAME", "watchtogether"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenTTL:       getEnvDuration("AUTH_TOKEN_TTL", 30*24*time.Hour),
			BcryptCost:     getEnvInt("AUTH_BCRYPT_COST", 12),
			SessionCleanup: getEnv("AUTH_SESSION_CLEANUP", "@every 1h"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
			FacebookClientID: getEnv("FACEBOOK_CLIENT_ID", ""),
			AppURL:           strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		},
		RateLimit: RateLimitConfig{
			APIRequests:    getEnvInt("RATE_LIMIT_API_REQUESTS", 120),
			APIWindow:      getEnvDuration("RATE_LIMIT_API_WINDOW", time.Minute),
			AuthRequests:   getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindow:     getEnvDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			AuthBurst:      getEnvInt("RATE_LIMIT_AUTH_BURST", 5),
			TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	if c.RateLimit.APIRequests <= 0 || c.RateLimit.AuthRequests <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.Server.Environment == "production" && c.Database.SSLMode == "disable" {
		return errors.New("DB_SSLMODE must not be disable in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
